// Package announce posts canned messages to rooms on a cron schedule, such as
// contest timeline reminders.
package announce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gcibot/gcibot/internal/comms"
	"github.com/gcibot/gcibot/internal/logging"
	"github.com/gcibot/gcibot/internal/supervisor"
)

// Config describes one scheduled announcement.
type Config struct {
	Name     string   `yaml:"name"`
	Schedule string   `yaml:"schedule"` // standard 5-field cron expression
	Timezone string   `yaml:"timezone"` // IANA name; empty means local time
	Rooms    []string `yaml:"rooms"`    // empty means every joined room
	Text     string   `yaml:"text"`
}

// Validate checks the schedule, timezone and text.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("announcement %q: text is required", c.Name)
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf("announcement %q: invalid schedule %q: %w", c.Name, c.Schedule, err)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("announcement %q: invalid timezone %q: %w", c.Name, c.Timezone, err)
		}
	}
	return nil
}

// spec returns the cron spec, carrying the timezone when one is set.
func (c *Config) spec() string {
	if c.Timezone == "" {
		return c.Schedule
	}
	return "CRON_TZ=" + c.Timezone + " " + c.Schedule
}

// Result is the delivery result for one room.
type Result struct {
	Room    string
	Success bool
	Skipped bool // not connected at the time
	Error   error
}

// Scheduler manages scheduled announcements.
type Scheduler struct {
	messenger     comms.Messenger
	announcements []*Config
	defaultRooms  func() []string
	cron          *cron.Cron
	mu            sync.Mutex
	running       bool
	entries       map[string]cron.EntryID
	logger        *slog.Logger
}

// NewScheduler creates a scheduler delivering through messenger. defaultRooms
// supplies the rooms for announcements that name none.
func NewScheduler(messenger comms.Messenger, announcements []*Config, defaultRooms func() []string) *Scheduler {
	return &Scheduler{
		messenger:     messenger,
		announcements: announcements,
		defaultRooms:  defaultRooms,
		cron:          cron.New(),
		entries:       make(map[string]cron.EntryID),
		logger:        logging.WithComponent("announce"),
	}
}

// Start registers every announcement and starts the cron loop. It is a no-op
// when there is nothing to schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if len(s.announcements) == 0 {
		s.logger.Debug("No announcements configured")
		return nil
	}

	for i, a := range s.announcements {
		if err := a.Validate(); err != nil {
			return err
		}
		a := a
		id, err := s.cron.AddFunc(a.spec(), func() {
			s.announce(ctx, a)
		})
		if err != nil {
			return fmt.Errorf("schedule announcement %q: %w", a.Name, err)
		}
		s.entries[entryKey(a, i)] = id
	}

	s.cron.Start()
	s.running = true

	for key, id := range s.entries {
		s.logger.Info("Announcement scheduled",
			slog.String("name", key),
			slog.Time("next_run", s.cron.Entry(id).Next))
	}
	return nil
}

// Stop stops the scheduler and waits for running deliveries.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("Announcement scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next run of the named announcement, or the zero time.
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok || !s.running {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Deliver sends a to its rooms now and returns one Result per room.
func (s *Scheduler) Deliver(ctx context.Context, a *Config) []Result {
	rooms := a.Rooms
	if len(rooms) == 0 && s.defaultRooms != nil {
		rooms = s.defaultRooms()
	}

	results := make([]Result, 0, len(rooms))
	for _, room := range rooms {
		err := s.messenger.SendText(ctx, room, a.Text)
		switch {
		case err == nil:
			results = append(results, Result{Room: room, Success: true})
		case errors.Is(err, supervisor.ErrNotConnected):
			results = append(results, Result{Room: room, Skipped: true, Error: err})
		default:
			results = append(results, Result{Room: room, Error: err})
		}
	}
	return results
}

func (s *Scheduler) announce(ctx context.Context, a *Config) {
	for _, r := range s.Deliver(ctx, a) {
		switch {
		case r.Success:
			s.logger.Info("Announcement sent", slog.String("name", a.Name), slog.String("room", r.Room))
		case r.Skipped:
			s.logger.Warn("Announcement skipped while disconnected", slog.String("name", a.Name), slog.String("room", r.Room))
		default:
			s.logger.Error("Announcement failed", slog.String("name", a.Name), slog.String("room", r.Room), slog.Any("error", r.Error))
		}
	}
}

func entryKey(a *Config, i int) string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("announcement-%d", i+1)
}
