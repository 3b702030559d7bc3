// Package comms turns inbound chat messages into task summaries and command
// replies. It knows nothing about the transport beyond Event and Messenger.
package comms

import (
	"context"

	"github.com/gcibot/gcibot/internal/tasks"
)

// Event is one message posted to a room.
type Event struct {
	Sender string // raw sender, e.g. "alice!~alice@host"
	Room   string // room the message was posted to; replies go here
	Text   string
}

// TaskSource resolves task references and fetches task records.
type TaskSource interface {
	Resolve(ctx context.Context, ref tasks.Reference) (string, error)
	FetchRecord(ctx context.Context, id string) (*tasks.TaskRecord, error)
}

// OutcomeStatus is the result of processing one task reference.
type OutcomeStatus int

const (
	OutcomeSent OutcomeStatus = iota
	OutcomeDuplicate
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSent:
		return "sent"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome records what happened to one reference of a message.
type Outcome struct {
	Ref     tasks.Reference
	TaskID  string // canonical ID, empty if resolution failed
	Status  OutcomeStatus
	Summary string // the reply text when Status is OutcomeSent
	Err     error  // set when Status is OutcomeFailed
}
