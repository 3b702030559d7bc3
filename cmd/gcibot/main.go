package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gcibot/gcibot/internal/config"
	"github.com/gcibot/gcibot/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile  string
	logLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gcibot",
		Short: "IRC bot that summarizes Google Code-in tasks",
		Long: `gcibot sits in IRC channels and answers every Google Code-in task link
with a one-line summary of the task. It also answers a few keyword commands
addressed to it, such as "gcibot: rules".`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ~/.gcibot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCmd(),
		newRunCmd(),
		newLookupCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig loads the config file named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if cfg.Logging == nil {
			cfg.Logging = logging.DefaultConfig()
		}
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show gcibot version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gcibot v%s\n", version)
		},
	}
}
