package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a timeline database",
		Long: `Initialize a cadence timeline database.

Creates the SQLite database (including the fixed first beat) and seeds
the default beat duration from config. Safe to run on an existing
database: the schema is migrated in place and existing data is kept.

Example:
  cadence init --db ./show.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmdContext(cmd)

	// Seed the configured default only when the database carries no
	// material yet; re-running init never rewrites existing durations.
	beats, err := s.Engine.Beats(ctx)
	if err != nil {
		return reportEngineError(s.Formatter, err)
	}
	if len(beats) == 1 { // sentinel only
		if _, err := s.Engine.ApplyDefaultBeatDuration(ctx, s.Config.DefaultBeatDuration); err != nil {
			return reportEngineError(s.Formatter, err)
		}
	}

	return s.Formatter.Success(fmt.Sprintf("initialized %s", s.Config.DatabasePath))
}
