package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rep, err := svc.Stats(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		fmt.Fprintf(out, "Plan:            %s\n", svc.Plan().Title)
		fmt.Fprintf(out, "Aprobadas:       %d/%d (%d%%)\n", rep.ApprovedSubjects, rep.TotalSubjects, rep.ProgressPercent)
		fmt.Fprintf(out, "Promocionadas:   %d\n", rep.PromotedSubjects)
		fmt.Fprintf(out, "Regularizadas:   %d\n", rep.RegularizedSubjects)
		fmt.Fprintf(out, "Cursando:        %d\n", rep.InProgressSubjects)
		fmt.Fprintf(out, "Disponibles:     %d\n", rep.AvailableSubjects)
		fmt.Fprintf(out, "Horas semanales: %d\n", rep.WeeklyHours)
		fmt.Fprintf(out, "Promedio:        %s\n", rep.AverageLabel())
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the report as JSON")
}
