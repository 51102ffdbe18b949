package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/score"
)

// NewScoreCommand creates the score command group.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Work with CUE score files",
	}
	cmd.AddCommand(newScoreApplyCommand(rootOpts))
	cmd.AddCommand(newScoreCheckCommand(rootOpts))
	return cmd
}

func newScoreApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var ghost bool

	cmd := &cobra.Command{
		Use:   "apply <score.cue|dir>",
		Short: "Materialize a score onto the timeline",
		Long: `Load a CUE score and append its tempo groups to the timeline in
order. Each group is its own atomic unit: a failure stops at the
offending group and keeps what came before it.

Example:
  cadence score apply ./shows/opener.cue
  cadence score apply ./shows/opener --ghost`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := score.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load score", err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmdContext(cmd)

			results, err := s.Engine.MaterializeScore(ctx, sc.Groups)
			if err != nil {
				// Earlier groups stayed committed; say how far we got.
				s.Formatter.VerboseLog("%d of %d group(s) applied before failure",
					len(results), len(sc.Groups))
				return reportEngineError(s.Formatter, err)
			}

			if ghost {
				if _, _, err := s.Engine.EnsureTrailingGhost(ctx); err != nil {
					return reportEngineError(s.Formatter, err)
				}
			}

			if s.Formatter.Format == "json" {
				return s.Formatter.Success(results)
			}
			beats, measures := 0, 0
			for _, r := range results {
				beats += len(r.Beats)
				measures += len(r.Measures)
			}
			return s.Formatter.Success(fmt.Sprintf(
				"applied score %q: %d group(s), %d beat(s), %d measure(s)",
				sc.Name, len(results), beats, measures))
		},
	}

	cmd.Flags().BoolVar(&ghost, "ghost", false, "ensure a trailing ghost measure afterwards")

	return cmd
}

func newScoreCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <score.cue|dir>",
		Short: "Validate a score without touching the timeline",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			sc, err := score.Load(args[0])
			if err != nil {
				_ = formatter.Error("SCORE_INVALID", err.Error(), nil)
				return WrapExitError(ExitFailure, "score invalid", err)
			}

			total := 0
			for _, g := range sc.Groups {
				total += g.TotalBeats()
			}
			if formatter.Format == "json" {
				return formatter.Success(sc)
			}
			return formatter.Success(fmt.Sprintf(
				"score %q ok: %d group(s), %d beat(s) when applied",
				sc.Name, len(sc.Groups), total))
		},
	}
	return cmd
}
