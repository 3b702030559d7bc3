// Package irc connects the bot to an IRC network, over TCP/TLS or an IRCv3
// WebSocket gateway.
package irc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	irclib "gopkg.in/irc.v4"

	"github.com/gcibot/gcibot/internal/comms"
	"github.com/gcibot/gcibot/internal/logging"
	"github.com/gcibot/gcibot/internal/supervisor"
)

var _ supervisor.Session = (*Session)(nil)

// Session is one registered IRC connection.
type Session struct {
	conn lineConn
	cfg  *Config

	writeMu sync.Mutex
	limiter *rateLimiter

	mu    sync.RWMutex
	nick  string
	rooms map[string]bool // rooms we asked to join, for rejoin after KICK

	log *slog.Logger
}

func newSession(conn lineConn, cfg *Config) *Session {
	return &Session{
		conn:    conn,
		cfg:     cfg,
		limiter: newRateLimiter(cfg.Flood),
		nick:    cfg.Nick,
		rooms:   make(map[string]bool),
		log:     logging.WithComponent("irc.session"),
	}
}

// Nick returns the nick the server knows us by.
func (s *Session) Nick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nick
}

func (s *Session) setNick(nick string) {
	s.mu.Lock()
	s.nick = nick
	s.mu.Unlock()
}

func (s *Session) write(command string, params ...string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(&irclib.Message{Command: command, Params: params})
}

func (s *Session) setDeadline(t time.Time) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetDeadline(t)
}

// register sends the connection registration and waits for RPL_WELCOME.
func (s *Session) register(ctx context.Context) error {
	if dl, ok := ctx.Deadline(); ok {
		s.setDeadline(dl)
		defer s.setDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() { s.setDeadline(time.Now()) })
	defer stop()

	if s.cfg.Password != "" {
		if err := s.write("PASS", s.cfg.Password); err != nil {
			return fmt.Errorf("send PASS: %w", err)
		}
	}
	nick := s.Nick()
	if err := s.write("NICK", nick); err != nil {
		return fmt.Errorf("send NICK: %w", err)
	}
	if err := s.write("USER", s.cfg.User, "0", "*", s.cfg.RealName); err != nil {
		return fmt.Errorf("send USER: %w", err)
	}

	for {
		m, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("registration: %w", ctx.Err())
			}
			return fmt.Errorf("registration: %w", err)
		}

		switch m.Command {
		case "PING":
			if err := s.write("PONG", m.Trailing()); err != nil {
				return fmt.Errorf("send PONG: %w", err)
			}
		case rplWelcome:
			if confirmed := m.Param(0); confirmed != "" {
				s.setNick(confirmed)
			}
			s.log.Info("Registered", slog.String("nick", s.Nick()))
			return nil
		case errNicknameInUse, errErroneousNick:
			nick += "_"
			s.setNick(nick)
			s.log.Warn("Nick unavailable, trying another", slog.String("nick", nick))
			if err := s.write("NICK", nick); err != nil {
				return fmt.Errorf("send NICK: %w", err)
			}
		case errPasswdMismatch, errYoureBannedCreep:
			return fmt.Errorf("%w: %s %s", supervisor.ErrFatal, m.Command, m.Trailing())
		case "ERROR":
			if strings.Contains(strings.ToLower(m.Trailing()), "bad password") {
				return fmt.Errorf("%w: %s", supervisor.ErrFatal, m.Trailing())
			}
			return fmt.Errorf("server closed link: %s", m.Trailing())
		}
	}
}

// Join enters room.
func (s *Session) Join(ctx context.Context, room string) error {
	s.mu.Lock()
	s.rooms[strings.ToLower(room)] = true
	s.mu.Unlock()
	return s.write("JOIN", room)
}

// SendText sends text to room, one PRIVMSG per line. CR, LF and NUL all end
// a line and never reach the wire. Lines longer than the protocol allows are
// split. Lines are paced by the flood limiter.
func (s *Session) SendText(ctx context.Context, room, text string) error {
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		for _, chunk := range splitText(line, maxTextLength) {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("send PRIVMSG: %w", err)
			}
			if err := s.write("PRIVMSG", room, chunk); err != nil {
				return fmt.Errorf("send PRIVMSG: %w", err)
			}
		}
	}
	return nil
}

// Run reads until the connection fails or ctx is done, answering PINGs and
// passing room messages to onEvent.
func (s *Session) Run(ctx context.Context, onEvent func(comms.Event)) error {
	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	for {
		m, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		switch m.Command {
		case "PING":
			if err := s.write("PONG", m.Trailing()); err != nil {
				return fmt.Errorf("send PONG: %w", err)
			}
		case "ERROR":
			return fmt.Errorf("server closed link: %s", m.Trailing())
		case "NICK":
			if s.fromSelf(m) {
				s.setNick(m.Trailing())
			}
		case "JOIN":
			if s.fromSelf(m) {
				s.log.Info("Joined room", slog.String("room", m.Param(0)))
			}
		case "KICK":
			s.handleKick(m)
		case "PRIVMSG":
			if ev, ok := s.event(m); ok {
				onEvent(ev)
			}
		}
	}
}

// Close says goodbye and closes the connection.
func (s *Session) Close() error {
	s.writeMu.Lock()
	_ = s.conn.SetDeadline(time.Now().Add(2 * time.Second))
	_ = s.conn.WriteMessage(&irclib.Message{Command: "QUIT", Params: []string{"bye"}})
	s.writeMu.Unlock()
	return s.conn.Close()
}

func (s *Session) fromSelf(m *irclib.Message) bool {
	return m.Prefix != nil && strings.EqualFold(m.Prefix.Name, s.Nick())
}

func (s *Session) handleKick(m *irclib.Message) {
	room, target := m.Param(0), m.Param(1)
	if !strings.EqualFold(target, s.Nick()) {
		return
	}
	s.mu.RLock()
	wanted := s.rooms[strings.ToLower(room)]
	s.mu.RUnlock()

	s.log.Warn("Kicked from room", slog.String("room", room), slog.String("reason", m.Trailing()))
	if wanted {
		if err := s.write("JOIN", room); err != nil {
			s.log.Warn("Rejoin failed", slog.String("room", room), slog.Any("error", err))
		}
	}
}

// event converts a PRIVMSG into a comms.Event. Our own messages and CTCP
// requests are dropped. Private messages are answered to the sender.
func (s *Session) event(m *irclib.Message) (comms.Event, bool) {
	if m.Prefix == nil || len(m.Params) < 2 {
		return comms.Event{}, false
	}
	if strings.EqualFold(m.Prefix.Name, s.Nick()) {
		return comms.Event{}, false
	}
	text := m.Trailing()
	if strings.HasPrefix(text, "\x01") {
		return comms.Event{}, false
	}

	room := m.Param(0)
	if !isChannel(room) {
		room = m.Prefix.Name
	}
	return comms.Event{
		Sender: m.Prefix.String(),
		Room:   room,
		Text:   text,
	}, true
}

func isLineBreak(r rune) bool {
	return r == '\r' || r == '\n' || r == 0
}

func isChannel(target string) bool {
	return target != "" && strings.ContainsRune("#&+!", rune(target[0]))
}

// splitText cuts text into pieces of at most max bytes, preferring spaces and
// never splitting a UTF-8 sequence.
func splitText(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	var out []string
	for len(text) > max {
		cut := max
		for cut > 0 && !isRuneStart(text[cut]) {
			cut--
		}
		if i := strings.LastIndexByte(text[:cut], ' '); i > max/2 {
			cut = i
		}
		out = append(out, text[:cut])
		text = strings.TrimLeft(text[cut:], " ")
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
