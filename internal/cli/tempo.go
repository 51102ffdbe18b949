package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cadence/internal/timeline"
)

// NewTempoCommand creates the tempo command group.
func NewTempoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tempo",
		Short: "Materialize tempo groups onto the timeline",
	}
	cmd.AddCommand(newTempoAddCommand(rootOpts))
	return cmd
}

func newTempoAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		tempo   float64
		perBar  int
		repeats int
		at      int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a tempo group",
		Long: `Insert a block of uniform-tempo beats and the measures delimiting it.

A group at T bpm with B beats per measure repeated R times inserts B*R
beats of 60/T seconds each and R measures. The block appends at the end
unless --at gives a position; inserting mid-timeline shifts what
follows out of the way first. The whole insertion is one atomic unit.

Example:
  cadence tempo add --bpm 180 --beats 5 --repeats 5 --at 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var pos *int
			if cmd.Flags().Changed("at") {
				pos = &at
			}

			res, err := s.Engine.MaterializeTempoGroup(cmdContext(cmd), timeline.TempoGroup{
				Tempo:              tempo,
				BigBeatsPerMeasure: perBar,
				NumOfRepeats:       repeats,
			}, pos)
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if s.Formatter.Format == "json" {
				return s.Formatter.Success(res)
			}
			return s.Formatter.Success(fmt.Sprintf(
				"inserted %d beat(s) and %d measure(s) starting at position %d",
				len(res.Beats), len(res.Measures), res.Beats[0].Position))
		},
	}

	cmd.Flags().Float64Var(&tempo, "bpm", 0, "tempo in beats per minute (required)")
	cmd.Flags().IntVar(&perBar, "beats", 0, "beats per measure (required)")
	cmd.Flags().IntVar(&repeats, "repeats", 1, "number of measures to generate")
	cmd.Flags().IntVar(&at, "at", 0, "insertion position (omit to append)")
	_ = cmd.MarkFlagRequired("bpm")
	_ = cmd.MarkFlagRequired("beats")

	return cmd
}
