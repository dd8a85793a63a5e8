package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/status"
	"github.com/abhisek/utntracker/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show status changes, or progress snapshots with --snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		subject, _ := cmd.Flags().GetString("subject")
		snapshots, _ := cmd.Flags().GetBool("snapshots")

		_, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

		if snapshots {
			snaps, err := st.SnapshotRepo().List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "WHEN\tSEQ\tAPPROVED\tPROGRESS\tAVERAGE")
			for _, s := range snaps {
				r := s.Data.Stats
				fmt.Fprintf(tw, "%s\t%d\t%d/%d\t%d%%\t%s\n",
					s.Timestamp.Local().Format("2006-01-02 15:04"), s.Sequence,
					r.ApprovedSubjects, r.TotalSubjects, r.ProgressPercent, r.AverageLabel())
			}
			return tw.Flush()
		}

		events, err := st.EventRepo().QueryStatusEvents(cmd.Context(), store.QueryOpts{
			Limit:   limit,
			Subject: strings.ToUpper(subject),
		})
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No status changes yet.")
			return nil
		}
		fmt.Fprintln(tw, "SEQ\tWHEN\tSUBJECT\tFROM\tTO\tTRIGGER\tUNLOCKED")
		for _, ev := range events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				ev.Sequence,
				ev.Timestamp.Local().Format("2006-01-02 15:04"),
				ev.SubjectCode,
				status.Tag(ev.From).Label(),
				status.Tag(ev.To).Label(),
				ev.Trigger,
				strings.Join(ev.Unlocked, ", "))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of entries (0 = all)")
	historyCmd.Flags().String("subject", "", "Only changes of this subject code")
	historyCmd.Flags().Bool("snapshots", false, "Show progress snapshots instead of status changes")
}
