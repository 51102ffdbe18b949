package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/timeline"
)

// NewMeasureCommand creates the measure command group.
func NewMeasureCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Manage measures",
	}
	cmd.AddCommand(newMeasureAddCommand(rootOpts))
	cmd.AddCommand(newMeasureListCommand(rootOpts))
	cmd.AddCommand(newMeasureSetCommand(rootOpts))
	cmd.AddCommand(newMeasureRemoveCommand(rootOpts))
	cmd.AddCommand(newMeasureGhostCommand(rootOpts))
	return cmd
}

func newMeasureAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		startBeat int64
		mark      string
		notes     string
		ghost     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a measure anchored on a beat",
		Long: `Add a measure starting on an existing beat.

A measure covers the beats from its start beat up to the next measure's
start beat; coverage follows the anchors and is never stored.

Example:
  cadence measure add --start-beat 5 --mark A`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			nm := timeline.NewMeasure{
				StartBeat: timeline.BeatID(startBeat),
				IsGhost:   ghost,
			}
			if mark != "" {
				nm.RehearsalMark = &mark
			}
			if notes != "" {
				nm.Notes = &notes
			}

			created, err := s.Engine.CreateMeasures(cmdContext(cmd), []timeline.NewMeasure{nm})
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(created)
			}
			return s.Formatter.Success(fmt.Sprintf("added measure %d starting at beat %d",
				created[0].ID, created[0].StartBeat))
		},
	}

	cmd.Flags().Int64Var(&startBeat, "start-beat", 0, "identity of the starting beat (required)")
	cmd.Flags().StringVar(&mark, "mark", "", "rehearsal mark")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&ghost, "ghost", false, "mark as a ghost measure")
	_ = cmd.MarkFlagRequired("start-beat")

	return cmd
}

func newMeasureListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List measures in timeline order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			measures, err := s.Engine.Measures(cmdContext(cmd))
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(measures)
			}
			for _, m := range measures {
				line := fmt.Sprintf("measure %d: start beat %d", m.ID, m.StartBeat)
				if m.RehearsalMark != nil {
					line += fmt.Sprintf(" [%s]", *m.RehearsalMark)
				}
				if m.IsGhost {
					line += " (ghost)"
				}
				fmt.Fprintln(s.Formatter.Writer, line)
			}
			fmt.Fprintf(s.Formatter.Writer, "%d measure(s)\n", len(measures))
			return nil
		},
	}
	return cmd
}

func newMeasureSetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		startBeat int64
		mark      string
		clearMark bool
		notes     string
		clearNote bool
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update fields of a measure",
		Long: `Update a measure in place. Only the given flags change; everything
else is left as it is. Targeting a missing measure is an error and
nothing is written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid measure id", err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u := timeline.MeasureUpdate{
				ID:                 timeline.MeasureID(id),
				ClearRehearsalMark: clearMark,
				ClearNotes:         clearNote,
			}
			if cmd.Flags().Changed("start-beat") {
				sb := timeline.BeatID(startBeat)
				u.StartBeat = &sb
			}
			if cmd.Flags().Changed("mark") {
				u.RehearsalMark = &mark
			}
			if cmd.Flags().Changed("notes") {
				u.Notes = &notes
			}

			updated, err := s.Engine.UpdateMeasures(cmdContext(cmd), []timeline.MeasureUpdate{u})
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(updated)
			}
			return s.Formatter.Success(fmt.Sprintf("updated measure %d", updated[0].ID))
		},
	}

	cmd.Flags().Int64Var(&startBeat, "start-beat", 0, "rebase onto this beat identity")
	cmd.Flags().StringVar(&mark, "mark", "", "rehearsal mark")
	cmd.Flags().BoolVar(&clearMark, "clear-mark", false, "remove the rehearsal mark")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().BoolVar(&clearNote, "clear-notes", false, "remove the notes")

	return cmd
}

func newMeasureRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rm <id>...",
		Short:         "Remove measures by identity",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]timeline.MeasureID, 0, len(args))
			for _, a := range args {
				n, err := strconv.ParseInt(a, 10, 64)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid measure id", err)
				}
				ids = append(ids, timeline.MeasureID(n))
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := s.Engine.DeleteMeasures(cmdContext(cmd), ids)
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(deleted)
			}
			return s.Formatter.Success(fmt.Sprintf("removed %d measure(s)", len(deleted)))
		},
	}
	return cmd
}

func newMeasureGhostCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghost",
		Short: "Ensure the trailing ghost measure is in place",
		Long: `Ensure a ghost measure marks the open end of the timeline, creating
or relocating it so it starts on the last beat.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ghost, found, err := s.Engine.EnsureTrailingGhost(cmdContext(cmd))
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if !found {
				return s.Formatter.Success("timeline has no beats, nothing to mark")
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(ghost)
			}
			return s.Formatter.Success(fmt.Sprintf("ghost measure %d starts at beat %d",
				ghost.ID, ghost.StartBeat))
		},
	}
	return cmd
}
