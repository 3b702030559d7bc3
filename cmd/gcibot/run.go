package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gcibot/gcibot/internal/adapters/irc"
	"github.com/gcibot/gcibot/internal/announce"
	"github.com/gcibot/gcibot/internal/banner"
	"github.com/gcibot/gcibot/internal/comms"
	"github.com/gcibot/gcibot/internal/config"
	"github.com/gcibot/gcibot/internal/logging"
	"github.com/gcibot/gcibot/internal/supervisor"
	"github.com/gcibot/gcibot/internal/tasks"
)

type runOptions struct {
	server    string
	websocket string
	nick      string
	plaintext bool
	noBanner  bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [rooms...]",
		Short: "Connect to IRC and answer task links",
		Long: `Connect to the configured IRC network, join the rooms and post a summary
for every Google Code-in task linked there. Rooms given as arguments replace
irc.rooms from the config file.

Examples:
  gcibot run "#gci" "#kde-gci"
  gcibot run --server irc.example.org:6697 "#gci"
  gcibot run --websocket wss://irc.example.org/webirc "#gci"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyRunOptions(cfg, &opts, args)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := logging.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}

			if !opts.noBanner {
				server := cfg.IRC.Server
				if cfg.IRC.WebSocketURL != "" {
					server = cfg.IRC.WebSocketURL
				}
				banner.StartupBanner(cmd.OutOrStdout(), version, server, cfg.IRC.Rooms)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runBot(ctx, cfg, irc.NewDialer(cfg.IRC))
		},
	}

	cmd.Flags().StringVarP(&opts.server, "server", "s", "", "IRC server host:port (overrides irc.server)")
	cmd.Flags().StringVar(&opts.websocket, "websocket", "", "IRC WebSocket gateway URL (overrides irc.websocket_url)")
	cmd.Flags().StringVarP(&opts.nick, "nick", "n", "", "nick to use (overrides irc.nick)")
	cmd.Flags().BoolVar(&opts.plaintext, "plaintext", false, "connect without TLS")
	cmd.Flags().BoolVar(&opts.noBanner, "no-banner", false, "do not print the startup banner")

	return cmd
}

// applyRunOptions lays command line overrides over cfg.
func applyRunOptions(cfg *config.Config, opts *runOptions, rooms []string) {
	if cfg.IRC == nil {
		cfg.IRC = irc.DefaultConfig()
	}
	if opts.server != "" {
		cfg.IRC.Server = opts.server
		cfg.IRC.WebSocketURL = ""
	}
	if opts.websocket != "" {
		cfg.IRC.WebSocketURL = opts.websocket
	}
	if opts.nick != "" {
		cfg.IRC.Nick = opts.nick
	}
	if opts.plaintext {
		cfg.IRC.TLS = false
	}
	if len(rooms) > 0 {
		cfg.IRC.Rooms = rooms
	}
}

// runBot wires the task client, handler, supervisor and announcements
// together and runs until ctx is cancelled or the transport fails for good.
func runBot(ctx context.Context, cfg *config.Config, dialer supervisor.Dialer) error {
	log := logging.WithComponent("run")

	client := tasks.NewClient(cfg.Tasks)

	sup := supervisor.New(dialer, cfg.IRC.Rooms,
		supervisor.WithPolicy(cfg.Reconnect),
		supervisor.WithStateHook(func(s supervisor.State) {
			log.Debug("Connection state", slog.String("state", s.String()))
		}),
	)

	fetchTimeout := tasks.DefaultTimeout
	if cfg.Tasks != nil && cfg.Tasks.FetchTimeout > 0 {
		fetchTimeout = cfg.Tasks.FetchTimeout
	}
	handler := comms.NewHandler(&comms.HandlerConfig{
		Messenger:     sup,
		Tasks:         client,
		Extractor:     client.Extractor(),
		Nick:          cfg.IRC.Nick,
		Replies:       cfg.Commands,
		FetchTimeout:  fetchTimeout,
		MaxConcurrent: cfg.MaxConcurrentMessages(),
	})

	scheduler := announce.NewScheduler(sup, cfg.Announcements, sup.Rooms)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sup.Run(gctx, handler.Dispatch)
	})
	g.Go(func() error {
		if err := scheduler.Start(gctx); err != nil {
			return fmt.Errorf("start announcements: %w", err)
		}
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})

	err := g.Wait()
	handler.Wait()

	if err != nil {
		if errors.Is(err, supervisor.ErrFatal) {
			log.Error("Giving up on the IRC connection", slog.Any("error", err))
		}
		return err
	}
	log.Info("Shut down")
	return nil
}
