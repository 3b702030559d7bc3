package comms

import "context"

// Messenger delivers outbound text to a chat room. Implementations must be
// safe for concurrent use; the handler calls SendText from one goroutine per
// inbound message.
type Messenger interface {
	// SendText sends one message to room. Delivery is not confirmed; an error
	// only means the message could not be handed to the transport.
	SendText(ctx context.Context, room, text string) error
}

// MessengerFunc adapts a function to the Messenger interface.
type MessengerFunc func(ctx context.Context, room, text string) error

// SendText calls f(ctx, room, text).
func (f MessengerFunc) SendText(ctx context.Context, room, text string) error {
	return f(ctx, room, text)
}
