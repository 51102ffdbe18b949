package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded operations",
		Long: `List the history ledger: one entry per user-level operation that
changed the timeline, newest last. Operations that changed nothing
never appear.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.Engine.History().Entries(cmdContext(cmd))
			if err != nil {
				return reportEngineError(s.Formatter, err)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			if s.Formatter.Format == "json" {
				return s.Formatter.Success(entries)
			}
			for _, e := range entries {
				fmt.Fprintf(s.Formatter.Writer, "#%d %s (%d change(s)) %s\n",
					e.Seq, e.Label, e.ChangeCount, e.Token)
			}
			fmt.Fprintf(s.Formatter.Writer, "%d entr(ies)\n", len(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show only the most recent N entries")

	return cmd
}
