package cli

import (
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the timeline",
		Long: `Render the full timeline: beats in position order with measure
starts annotated inline. The fixed first beat is shown as id 0*.`,
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
			measures, err := s.Engine.Measures(ctx)
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}

			if s.Formatter.Format == "json" {
				return s.Formatter.Success(map[string]interface{}{
					"beats":    beats,
					"measures": measures,
				})
			}
			return RenderTimeline(s.Formatter.Writer, beats, measures)
		},
	}
	return cmd
}
