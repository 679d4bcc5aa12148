package service

import (
	"fmt"

	"inkwell/config"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0"

// RootOptions holds global flags and the configuration they resolve to.
type RootOptions struct {
	ConfigPath string
	Config     *config.Config
}

// NewRootCommand creates the root command of the inkwell CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "inkwell",
		Short:         "Blog post and comment backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if err := cfg.Log.Apply(); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default ./config.yaml or ./config/config.yaml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewDBCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand prints the CLI version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inkwell version %s\n", Version)
		},
	}
}
