package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/board"
)

var electivesCmd = &cobra.Command{
	Use:   "electives",
	Short: "Manage the electives placed on the board",
}

var electivesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the elective catalogue and where each elective is placed",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		state, err := svc.Load(cmd.Context())
		if err != nil {
			return err
		}
		columns := state.Columns()
		placed := make(map[string]int)
		for _, p := range state.Placements() {
			placed[p.Code] = p.Column
		}

		catalogue := svc.Plan().Electives()
		if len(catalogue) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "This plan has no electives.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tNAME\tHOURS\tPLACED ON\tMISSING")
		for _, e := range catalogue {
			where := ""
			if col, ok := placed[e.Code]; ok && len(columns) > 0 {
				where = columns[min(max(col, 0), len(columns)-1)].Module.Name
			}
			var missing []string
			for _, r := range board.MissingCursarRequirements(e, state.Lookup().Effective()) {
				missing = append(missing, r.ID)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.Code, e.Name, e.WeekHours, where, strings.Join(missing, ", "))
		}
		fmt.Fprintf(tw, "\n%d electives, %d slots\n", len(catalogue), svc.Plan().ElectiveSlots())
		return tw.Flush()
	},
}

var electivesAddCmd = &cobra.Command{
	Use:   "add CODE",
	Short: "Place an elective on a board column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, _ := cmd.Flags().GetInt("col")
		force, _ := cmd.Flags().GetBool("force")

		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := svc.PlaceElective(cmd.Context(), strings.ToUpper(args[0]), col, force)
		if err != nil {
			return err
		}
		reportResult(cmd, res)
		return nil
	},
}

var electivesRemoveCmd = &cobra.Command{
	Use:   "remove CODE",
	Short: "Take an elective off the board (its grades are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := svc.RemoveElective(cmd.Context(), strings.ToUpper(args[0]))
		if err != nil {
			return err
		}
		reportResult(cmd, res)
		return nil
	},
}

func init() {
	electivesAddCmd.Flags().Int("col", 0, "Board column (0-based module index)")
	electivesAddCmd.Flags().Bool("force", false, "Place the elective even if its requirements are not met")

	electivesCmd.AddCommand(electivesListCmd)
	electivesCmd.AddCommand(electivesAddCmd)
	electivesCmd.AddCommand(electivesRemoveCmd)
}
