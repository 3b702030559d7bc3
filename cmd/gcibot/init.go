package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gcibot/gcibot/internal/banner"
	"github.com/gcibot/gcibot/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to ~/.gcibot/config.yaml, or to the file
named by --config. An existing file is left alone unless --force is given,
in which case it is backed up to <file>.bak first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			configPath := cfgFile
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}

			if _, err := os.Stat(configPath); err == nil {
				if !force {
					fmt.Fprintf(out, "Config already exists: %s\n", configPath)
					fmt.Fprintln(out, "Use --force to reinitialize (the current file is backed up).")
					return nil
				}
				backupPath := configPath + ".bak"
				if err := os.Rename(configPath, backupPath); err != nil {
					return fmt.Errorf("failed to back up config: %w", err)
				}
				fmt.Fprintf(out, "Backed up existing config to %s\n", backupPath)
			}

			if err := config.Save(config.DefaultConfig(), configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			banner.PrintWithVersion(out, version)
			fmt.Fprintf(out, "   Config: %s\n\n", configPath)
			fmt.Fprintln(out, "   Next steps:")
			fmt.Fprintln(out, "   1. Set irc.rooms (and irc.password if the network needs one)")
			fmt.Fprintln(out, "   2. Run 'gcibot doctor'")
			fmt.Fprintln(out, "   3. Run 'gcibot run'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "reinitialize config (backs up existing to .bak)")

	return cmd
}
