// Package supervisor keeps the bot connected to its chat server and present
// in its rooms, reconnecting whenever the connection is lost.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gcibot/gcibot/internal/comms"
	"github.com/gcibot/gcibot/internal/logging"
)

// ErrFatal marks errors that must not be retried, such as a rejected
// password. Dialers and sessions wrap it.
var ErrFatal = errors.New("fatal transport error")

// ErrNotConnected is returned by SendText while no session is joined.
var ErrNotConnected = errors.New("not connected")

// Session is one live, registered connection to the chat server.
type Session interface {
	// Join enters a room.
	Join(ctx context.Context, room string) error
	// SendText posts text to a room.
	SendText(ctx context.Context, room, text string) error
	// Run reads from the connection and calls onEvent for every room message
	// until the connection is lost or ctx is done.
	Run(ctx context.Context, onEvent func(comms.Event)) error
	// Close tears the connection down.
	Close() error
}

// Dialer opens and registers a new Session.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// EventFunc receives room messages from the current session.
type EventFunc func(ctx context.Context, ev comms.Event)

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithPolicy sets the reconnect policy. Zero durations keep the defaults.
func WithPolicy(p *Policy) Option {
	return func(s *Supervisor) {
		if p == nil {
			return
		}
		s.policy = p.withDefaults()
	}
}

// WithStateHook registers a function called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(s *Supervisor) {
		s.onState = fn
	}
}

// Supervisor owns the transport connection. It implements comms.Messenger
// by forwarding to the current session.
type Supervisor struct {
	dialer  Dialer
	rooms   []string
	policy  *Policy
	onState func(State)
	log     *slog.Logger

	mu      sync.RWMutex
	state   State
	session Session
}

var _ comms.Messenger = (*Supervisor)(nil)

// New creates a Supervisor that keeps the bot in rooms. Duplicate room names
// are dropped; order is kept.
func New(dialer Dialer, rooms []string, opts ...Option) *Supervisor {
	s := &Supervisor{
		dialer: dialer,
		rooms:  uniqueRooms(rooms),
		policy: DefaultPolicy(),
		log:    logging.WithComponent("supervisor"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Rooms returns the rooms joined on every connect.
func (s *Supervisor) Rooms() []string {
	return append([]string(nil), s.rooms...)
}

// State returns the current connection state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SendText posts text through the current session.
func (s *Supervisor) SendText(ctx context.Context, room, text string) error {
	s.mu.RLock()
	sess := s.session
	s.mu.RUnlock()
	if sess == nil {
		return ErrNotConnected
	}
	return sess.SendText(ctx, room, text)
}

// Run connects, joins every room and delivers events to onEvent, reconnecting
// whenever the session ends. It returns nil when ctx is cancelled and an
// error wrapping ErrFatal on a non-retryable failure.
func (s *Supervisor) Run(ctx context.Context, onEvent EventFunc) error {
	defer s.setState(StateDisconnected)

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			s.log.Info("Supervisor shutting down", slog.Any("reason", err))
			return nil
		}

		s.setState(StateConnecting)
		sess, err := s.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrFatal) {
				s.log.Error("Connection refused permanently", slog.Any("error", err))
				return err
			}
			failures++
			delay := s.policy.dialDelay(failures)
			s.log.Warn("Connect failed, retrying",
				slog.Any("error", err),
				slog.Int("attempt", failures),
				slog.Duration("backoff", delay))
			s.setState(StateDisconnected)
			if !sleep(ctx, delay) {
				return nil
			}
			continue
		}

		failures = 0
		err = s.serve(ctx, sess, onEvent)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrFatal) {
			s.log.Error("Connection closed permanently", slog.Any("error", err))
			return err
		}

		delay := s.policy.lostDelay()
		s.log.Warn("Connection lost, reconnecting",
			slog.Any("error", err),
			slog.Duration("backoff", delay))
		if !sleep(ctx, delay) {
			return nil
		}
	}
}

// serve joins the rooms on sess and runs it until it ends.
func (s *Supervisor) serve(ctx context.Context, sess Session, onEvent EventFunc) error {
	defer func() {
		s.mu.Lock()
		s.session = nil
		s.state = StateDisconnected
		s.mu.Unlock()
		s.notify(StateDisconnected)
		_ = sess.Close()
	}()

	for _, room := range s.rooms {
		if err := sess.Join(ctx, room); err != nil {
			return fmt.Errorf("join %s: %w", room, err)
		}
	}

	s.mu.Lock()
	s.session = sess
	s.state = StateJoined
	s.mu.Unlock()
	s.notify(StateJoined)
	s.log.Info("Joined rooms", slog.String("rooms", strings.Join(s.rooms, ",")))

	return sess.Run(ctx, func(ev comms.Event) {
		if onEvent != nil {
			onEvent(ctx, ev)
		}
	})
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.mu.Unlock()
	if changed {
		s.notify(st)
	}
}

func (s *Supervisor) notify(st State) {
	s.log.Debug("State changed", slog.String("state", st.String()))
	if s.onState != nil {
		s.onState(st)
	}
}

// sleep waits for d or until ctx is cancelled. It reports whether the wait
// completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func uniqueRooms(rooms []string) []string {
	seen := make(map[string]bool, len(rooms))
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		r = strings.TrimSpace(r)
		key := strings.ToLower(r)
		if r == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
