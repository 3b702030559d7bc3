package comms

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gcibot/gcibot/internal/logging"
)

// Keywords are the commands the bot answers, in the order replies are sent.
var Keywords = []string{"ping", "about", "rules", "guide", "faq", "timeline"}

// addressDelimiters may follow the bot's nick to address it.
const addressDelimiters = ":, "

// Replies holds the canned answers for keyword commands. "ping" always
// answers "pong".
type Replies struct {
	About    string `yaml:"about"`
	Rules    string `yaml:"rules"`
	Guide    string `yaml:"guide"`
	FAQ      string `yaml:"faq"`
	Timeline string `yaml:"timeline"`
}

// DefaultReplies returns the built-in command answers.
func DefaultReplies() *Replies {
	return &Replies{
		About:    "I post a summary of every Google Code-in task linked in this channel.",
		Rules:    "contest rules: https://developers.google.com/open-source/gci/resources/contest-rules",
		Guide:    "getting started: https://developers.google.com/open-source/gci/resources/getting-started",
		FAQ:      "frequently asked questions: https://developers.google.com/open-source/gci/faq",
		Timeline: "contest timeline: https://developers.google.com/open-source/gci/timeline",
	}
}

// CommandHandler answers keyword commands addressed to the bot.
type CommandHandler struct {
	messenger Messenger
	nick      string
	replies   map[string]string
	log       *slog.Logger
}

// NewCommandHandler creates a command handler for the bot called nick. Empty
// fields of replies keep their default answer.
func NewCommandHandler(messenger Messenger, nick string, replies *Replies) *CommandHandler {
	def := DefaultReplies()
	if replies == nil {
		replies = def
	}
	pick := func(v, fallback string) string {
		if v != "" {
			return v
		}
		return fallback
	}

	return &CommandHandler{
		messenger: messenger,
		nick:      nick,
		replies: map[string]string{
			"ping":     "pong",
			"about":    pick(replies.About, def.About),
			"rules":    pick(replies.Rules, def.Rules),
			"guide":    pick(replies.Guide, def.Guide),
			"faq":      pick(replies.FAQ, def.FAQ),
			"timeline": pick(replies.Timeline, def.Timeline),
		},
		log: logging.WithComponent("comms.commands"),
	}
}

// addressed reports whether text starts with the bot's nick followed by an
// address delimiter, and returns the rest of the text.
func (c *CommandHandler) addressed(text string) (string, bool) {
	n := len(c.nick)
	if c.nick == "" || len(text) <= n {
		return "", false
	}
	if !strings.EqualFold(text[:n], c.nick) {
		return "", false
	}
	if !strings.ContainsRune(addressDelimiters, rune(text[n])) {
		return "", false
	}
	return text[n+1:], true
}

// Responses returns the replies owed to user for text. Every keyword found
// in an addressed message produces one reply.
func (c *CommandHandler) Responses(user, text string) []string {
	rest, ok := c.addressed(text)
	if !ok {
		return nil
	}
	rest = strings.ToLower(rest)

	var out []string
	for _, kw := range Keywords {
		if strings.Contains(rest, kw) {
			out = append(out, user+", "+c.replies[kw])
		}
	}
	return out
}

// HandleCommand sends the replies for text to room and returns how many were
// sent.
func (c *CommandHandler) HandleCommand(ctx context.Context, room, user, text string) int {
	sent := 0
	for _, reply := range c.Responses(user, text) {
		if err := c.messenger.SendText(ctx, room, reply); err != nil {
			logging.FromContext(ctx, c.log).Warn("Failed to send command reply",
				slog.String("room", room),
				slog.Any("error", err))
			continue
		}
		sent++
	}
	return sent
}
