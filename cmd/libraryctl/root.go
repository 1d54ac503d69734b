package main

import (
	"github.com/spf13/cobra"

	"libraryapi/internal/config"
)

// rootOptions is shared by every subcommand. cfg is populated before any
// subcommand runs.
type rootOptions struct {
	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Administrative tasks for the library API",
		Long:          "Run database migrations, load sample data and mint admin tokens for the library API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}
