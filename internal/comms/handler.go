package comms

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/gcibot/gcibot/internal/logging"
	"github.com/gcibot/gcibot/internal/tasks"
)

// Defaults for HandlerConfig.
const (
	DefaultFetchTimeout  = 10 * time.Second
	DefaultMaxConcurrent = 16
)

// HandlerConfig holds configuration for creating a Handler.
type HandlerConfig struct {
	Messenger Messenger
	Tasks     TaskSource
	Extractor *tasks.Extractor
	// Nick is the bot's own nick: messages from it are ignored and commands
	// must be addressed to it.
	Nick    string
	Replies *Replies
	// FetchTimeout bounds each resolve and fetch call.
	FetchTimeout time.Duration
	// MaxConcurrent bounds the messages processed at once by Dispatch.
	MaxConcurrent int
	Log           *slog.Logger
}

// Handler runs the reference pipeline and command replies for every message.
type Handler struct {
	messenger    Messenger
	tasks        TaskSource
	extractor    *tasks.Extractor
	commands     *CommandHandler
	nick         string
	fetchTimeout time.Duration
	sem          *semaphore.Weighted
	wg           sync.WaitGroup
	log          *slog.Logger
}

// NewHandler creates a Handler from the given config.
func NewHandler(cfg *HandlerConfig) *Handler {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = tasks.NewExtractor("")
	}
	lg := cfg.Log
	if lg == nil {
		lg = logging.WithComponent("comms.handler")
	}

	return &Handler{
		messenger:    cfg.Messenger,
		tasks:        cfg.Tasks,
		extractor:    extractor,
		commands:     NewCommandHandler(cfg.Messenger, cfg.Nick, cfg.Replies),
		nick:         cfg.Nick,
		fetchTimeout: timeout,
		sem:          semaphore.NewWeighted(int64(limit)),
		log:          lg,
	}
}

// Dispatch processes ev on its own goroutine and returns at once. At most
// MaxConcurrent messages are processed at a time; the rest wait their turn.
func (h *Handler) Dispatch(ctx context.Context, ev Event) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer h.sem.Release(1)
		h.HandleMessage(ctx, ev)
	}()
}

// Wait blocks until every dispatched message has been processed.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// HandleMessage processes one message synchronously: a summary for every
// task it links, then command replies. It returns one Outcome per reference.
func (h *Handler) HandleMessage(ctx context.Context, ev Event) []Outcome {
	user := Nick(ev.Sender)
	if ev.Text == "" || ev.Room == "" || strings.EqualFold(user, h.nick) {
		return nil
	}

	ctx = logging.ContextWithRoom(ctx, ev.Room)
	ctx = logging.ContextWithCorrelationID(ctx, uuid.NewString())
	log := logging.FromContext(ctx, h.log)

	refs := h.extractor.Extract(ev.Text)
	if len(refs) > 0 {
		log.Debug("Task references found",
			slog.String("user", user),
			slog.Int("count", len(refs)),
			slog.String("text", TruncateText(ev.Text, 80)))
	}

	seen := make(seenSet)
	outcomes := make([]Outcome, 0, len(refs))
	for _, ref := range refs {
		out := h.processReference(ctx, ev.Room, ref, seen)
		h.logOutcome(log, out)
		outcomes = append(outcomes, out)
	}

	h.commands.HandleCommand(ctx, ev.Room, user, ev.Text)

	return outcomes
}

// processReference resolves, fetches and answers one reference. Failures are
// returned in the Outcome and never stop the caller.
func (h *Handler) processReference(ctx context.Context, room string, ref tasks.Reference, seen seenSet) Outcome {
	out := Outcome{Ref: ref}

	id, err := h.resolve(ctx, ref)
	if err != nil {
		out.Status = OutcomeFailed
		out.Err = err
		return out
	}
	out.TaskID = id

	if seen.has(id) {
		out.Status = OutcomeDuplicate
		return out
	}

	rec, err := h.fetch(ctx, id)
	if err != nil {
		out.Status = OutcomeFailed
		out.Err = err
		return out
	}

	seen.add(id)

	out.Summary = tasks.FormatSummary(rec)
	if err := h.messenger.SendText(ctx, room, out.Summary); err != nil {
		out.Status = OutcomeFailed
		out.Err = err
		return out
	}
	out.Status = OutcomeSent
	return out
}

func (h *Handler) resolve(ctx context.Context, ref tasks.Reference) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
	defer cancel()
	return h.tasks.Resolve(callCtx, ref)
}

func (h *Handler) fetch(ctx context.Context, id string) (*tasks.TaskRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
	defer cancel()
	return h.tasks.FetchRecord(callCtx, id)
}

func (h *Handler) logOutcome(log *slog.Logger, out Outcome) {
	attrs := []any{
		slog.String("reference", out.Ref.String()),
		slog.String("task_id", out.TaskID),
		slog.String("status", out.Status.String()),
	}

	switch out.Status {
	case OutcomeSent:
		log.Info("Task summary sent", attrs...)
	case OutcomeDuplicate:
		log.Debug("Duplicate task reference skipped", attrs...)
	case OutcomeFailed:
		kind := tasks.Kind(out.Err)
		if kind == "unknown" {
			kind = "send"
		}
		attrs = append(attrs, slog.String("kind", kind), slog.Any("error", out.Err))
		log.Warn("Task reference failed", attrs...)
	}
}
