package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gcibot/gcibot/internal/comms"
	"github.com/gcibot/gcibot/internal/logging"
	"github.com/gcibot/gcibot/internal/tasks"
)

var (
	idStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	okMarkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <url|id>...",
		Short: "Print the summary the bot would post for task links",
		Long: `Run the same pipeline the bot runs for a chat message and print the
results. Arguments are task URLs (either shape) or bare task IDs.

Examples:
  gcibot lookup 5732462179106816
  gcibot lookup https://codein.withgoogle.com/dashboard/task-instances/4871226658717696/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}

			client := tasks.NewClient(cfg.Tasks)
			host := tasks.DefaultHost
			if cfg.Tasks != nil && cfg.Tasks.Host != "" {
				host = cfg.Tasks.Host
			}

			failed := lookup(cmd.Context(), cmd.OutOrStdout(), client, host, args)
			if failed > 0 {
				return fmt.Errorf("%d of the task references could not be looked up", failed)
			}
			return nil
		},
	}
}

// lookup feeds args through the message handler as one message and prints a
// line per reference. It returns the number of failed references.
func lookup(ctx context.Context, w io.Writer, client *tasks.Client, host string, args []string) int {
	handler := comms.NewHandler(&comms.HandlerConfig{
		Messenger: comms.MessengerFunc(func(context.Context, string, string) error { return nil }),
		Tasks:     client,
		Extractor: client.Extractor(),
		Nick:      "gcibot",
	})

	text := lookupText(host, args)
	outcomes := handler.HandleMessage(ctx, comms.Event{
		Sender: "terminal",
		Room:   "terminal",
		Text:   text,
	})

	if len(outcomes) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no task links found"))
		return len(args)
	}

	failed := 0
	for _, out := range outcomes {
		switch out.Status {
		case comms.OutcomeSent:
			fmt.Fprintf(w, "%s %s  %s\n", okMarkStyle.Render("✓"), idStyle.Render(out.TaskID), out.Summary)
		case comms.OutcomeDuplicate:
			fmt.Fprintf(w, "%s %s  %s\n", dimStyle.Render("·"), idStyle.Render(out.TaskID), dimStyle.Render("duplicate of an earlier link"))
		case comms.OutcomeFailed:
			failed++
			fmt.Fprintf(w, "%s %s  %s: %v\n", errMarkStyle.Render("✗"), out.Ref, tasks.Kind(out.Err), out.Err)
		}
	}
	return failed
}

// lookupText turns bare task IDs into canonical links so the extractor sees
// every argument.
func lookupText(host string, args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if isDigits(arg) {
			arg = fmt.Sprintf("https://%s/tasks/%s/", host, arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
