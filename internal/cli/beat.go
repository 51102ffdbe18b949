package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/timeline"
)

// NewBeatCommand creates the beat command group.
func NewBeatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beat",
		Short: "Manage timeline beats",
	}
	cmd.AddCommand(newBeatAddCommand(rootOpts))
	cmd.AddCommand(newBeatListCommand(rootOpts))
	cmd.AddCommand(newBeatRemoveCommand(rootOpts))
	cmd.AddCommand(newBeatShiftCommand(rootOpts))
	cmd.AddCommand(newBeatFlattenCommand(rootOpts))
	cmd.AddCommand(newBeatSetDurationCommand(rootOpts))
	return cmd
}

type beatAddOptions struct {
	Count    int
	Duration float64
	At       int
	Notes    string
}

func newBeatAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &beatAddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add beats to the timeline",
		Long: `Add one or more beats in a single atomic batch.

Beats append at the end unless --at gives an explicit starting position.
The whole batch either commits or nothing does, and it records exactly
one history entry.

Example:
  cadence beat add -n 8 -d 0.5
  cadence beat add -n 4 -d 0.75 --at 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBeatAdd(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of beats to add")
	cmd.Flags().Float64VarP(&opts.Duration, "duration", "d", 0.5, "duration in seconds for each beat")
	cmd.Flags().IntVar(&opts.At, "at", 0, "starting position (0 means append)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "notes attached to each beat")

	return cmd
}

func runBeatAdd(rootOpts *RootOptions, opts *beatAddOptions, cmd *cobra.Command) error {
	if opts.Count < 1 {
		return WrapExitError(ExitCommandError, "count must be at least 1", nil)
	}

	s, err := openSession(rootOpts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	newBeats := make([]timeline.NewBeat, opts.Count)
	for i := range newBeats {
		nb := timeline.NewBeat{Duration: opts.Duration, IncludeInMeasure: true}
		if opts.Notes != "" {
			notes := opts.Notes
			nb.Notes = &notes
		}
		newBeats[i] = nb
	}

	var at *int
	if opts.At != 0 {
		at = &opts.At
	}

	created, err := s.Engine.CreateBeats(cmdContext(cmd), newBeats, at)
	if err != nil {
		return reportEngineError(s.Formatter, err)
	}

	if s.Formatter.Format == "json" {
		return s.Formatter.Success(created)
	}
	return s.Formatter.Success(fmt.Sprintf("added %d beat(s) at positions %s",
		len(created), positionRange(created)))
}

func newBeatListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List beats in position order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmdContext(cmd)

			beats, err := s.Engine.Beats(ctx)
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(beats)
			}
			measures, err := s.Engine.Measures(ctx)
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			return RenderTimeline(s.Formatter.Writer, beats, measures)
		},
	}
	return cmd
}

func newBeatRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove beats by identity",
		Long: `Remove beats by identity in a single atomic batch.

Measures anchored on a removed beat are removed with it. The fixed
first beat (id 0) cannot be removed and is skipped if listed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseBeatIDs(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid beat id", err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := s.Engine.DeleteBeats(cmdContext(cmd), ids)
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(deleted)
			}
			return s.Formatter.Success(fmt.Sprintf("removed %d beat(s)", len(deleted)))
		},
	}
	return cmd
}

func newBeatShiftCommand(rootOpts *RootOptions) *cobra.Command {
	var at, by int

	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Shift beats at or after a position",
		Long: `Shift every beat at or after --at by --by positions.

Positive --by opens a gap; negative --by closes one. The shift is
validated before any write: the pivot must be above 0 and no beat may
land below position 1. A rejected shift changes nothing.

Example:
  cadence beat shift --at 2 --by 2
  cadence beat shift --at 5 --by -2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			shifted, err := s.Engine.ShiftBeats(cmdContext(cmd), at, by)
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(shifted)
			}
			return s.Formatter.Success(fmt.Sprintf("shifted %d beat(s) by %d", len(shifted), by))
		},
	}

	cmd.Flags().IntVar(&at, "at", 0, "starting position of the shift (required)")
	cmd.Flags().IntVar(&by, "by", 0, "signed shift amount (required)")
	_ = cmd.MarkFlagRequired("at")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func newBeatFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Compact beat positions to a dense sequence",
		Long: `Renumber all beats to the dense sequence 1..N, preserving their
relative order. Useful after removals have left gaps.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			moved, err := s.Engine.FlattenOrder(cmdContext(cmd))
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(moved)
			}
			return s.Formatter.Success(fmt.Sprintf("moved %d beat(s)", len(moved)))
		},
	}
	return cmd
}

func newBeatSetDurationCommand(rootOpts *RootOptions) *cobra.Command {
	var applyDefault bool

	cmd := &cobra.Command{
		Use:   "set-duration <seconds>",
		Short: "Set the duration of every beat",
		Long: `Set the duration of every beat (except the fixed first beat) in one
atomic batch.

With --default the value is also stored as the default for new
databases, and beats are only overwritten while the timeline is still a
uniform grid (no measures yet).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid duration", err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmdContext(cmd)

			var updated []timeline.Beat
			if applyDefault {
				updated, err = s.Engine.ApplyDefaultBeatDuration(ctx, duration)
			} else {
				updated, err = s.Engine.UpdateAllBeatDurations(ctx, duration)
			}
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(updated)
			}
			return s.Formatter.Success(fmt.Sprintf("updated %d beat(s)", len(updated)))
		},
	}

	cmd.Flags().BoolVar(&applyDefault, "default", false, "also store as the configured default")

	return cmd
}

// parseBeatIDs converts CLI args into beat identities.
func parseBeatIDs(args []string) ([]timeline.BeatID, error) {
	ids := make([]timeline.BeatID, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a beat id", a)
		}
		ids = append(ids, timeline.BeatID(n))
	}
	return ids, nil
}

// positionRange summarizes created positions, e.g. "1-8" or "3".
func positionRange(beats []timeline.Beat) string {
	if len(beats) == 0 {
		return "none"
	}
	first := beats[0].Position
	last := beats[len(beats)-1].Position
	if first == last {
		return strconv.Itoa(first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}
