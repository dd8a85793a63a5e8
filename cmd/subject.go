package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/status"
	"github.com/abhisek/utntracker/internal/tracker"
)

var startCmd = &cobra.Command{
	Use:   "start CODE",
	Short: "Start an available subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := svc.Start(cmd.Context(), strings.ToUpper(args[0]))
		if err != nil {
			return err
		}
		reportResult(cmd, res)
		return nil
	},
}

var gradesCmd = &cobra.Command{
	Use:   "grades CODE",
	Short: "Record exam grades of a started subject",
	Long: `Record exam grades of a started subject and recompute its status.

Each flag may be repeated, one value per attempt in order:

  utntracker grades AM1 --p1 4 --p1 7 --p2 "6,5" --final 8

Attempts not given keep their stored value unless --clear is set.
An empty value ("") erases that attempt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := strings.ToUpper(args[0])
		p1, _ := cmd.Flags().GetStringArray("p1")
		p2, _ := cmd.Flags().GetStringArray("p2")
		finals, _ := cmd.Flags().GetStringArray("final")
		fresh, _ := cmd.Flags().GetBool("clear")

		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		board, err := svc.Load(cmd.Context())
		if err != nil {
			return err
		}
		var base status.AttemptSet
		if rec, ok := board.Record(code); ok && !fresh {
			base = rec.Attempts
		}
		attempts, err := mergeAttempts(base, p1, p2, finals)
		if err != nil {
			return err
		}

		res, err := svc.SaveGrades(cmd.Context(), code, attempts)
		if err != nil {
			return err
		}
		reportResult(cmd, res)
		printAttempts(cmd.OutOrStdout(), attempts)
		return nil
	},
}

var overrideCmd = &cobra.Command{
	Use:   "override CODE [STATUS]",
	Short: "Force the status of a started subject",
	Long: fmt.Sprintf(`Force the status of a started subject, or drop the forced status with --clear.

Valid statuses: %s.`, tagList()),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := strings.ToUpper(args[0])
		drop, _ := cmd.Flags().GetBool("clear")
		if drop == (len(args) > 1) {
			return fmt.Errorf("give either a STATUS or --clear")
		}

		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		var res *tracker.Result
		if drop {
			res, err = svc.ClearOverride(cmd.Context(), code)
		} else {
			tag, perr := status.ParseTag(strings.Join(args[1:], " "))
			if perr != nil {
				return fmt.Errorf("%w (valid: %s)", perr, tagList())
			}
			res, err = svc.SetOverride(cmd.Context(), code, tag)
		}
		if err != nil {
			return err
		}
		reportResult(cmd, res)
		return nil
	},
}

var withdrawCmd = &cobra.Command{
	Use:     "withdraw CODE",
	Aliases: []string{"recursar"},
	Short:   "Drop a started subject, or retake a failed one",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := svc.Withdraw(cmd.Context(), strings.ToUpper(args[0]))
		if err != nil {
			return err
		}
		reportResult(cmd, res)
		return nil
	},
}

func init() {
	gradesCmd.Flags().StringArray("p1", nil, "Parcial 1 attempts, in order (repeatable)")
	gradesCmd.Flags().StringArray("p2", nil, "Parcial 2 attempts, in order (repeatable)")
	gradesCmd.Flags().StringArray("final", nil, "Final exam attempts, in order (repeatable)")
	gradesCmd.Flags().Bool("clear", false, "Start from empty attempts instead of the stored ones")

	overrideCmd.Flags().Bool("clear", false, "Remove the forced status")
}

// mergeAttempts overlays the given values on base, attempt by attempt.
func mergeAttempts(base status.AttemptSet, p1, p2, finals []string) (status.AttemptSet, error) {
	if len(p1) > status.ParcialAttempts || len(p2) > status.ParcialAttempts {
		return base, fmt.Errorf("a parcial has at most %d attempts", status.ParcialAttempts)
	}
	if len(finals) > status.FinalAttempts {
		return base, fmt.Errorf("there are at most %d final attempts", status.FinalAttempts)
	}
	out := base
	for i, v := range p1 {
		out.SetParcial(status.Parcial1, i, strings.TrimSpace(v))
	}
	for i, v := range p2 {
		out.SetParcial(status.Parcial2, i, strings.TrimSpace(v))
	}
	for i, v := range finals {
		out.Finals[i] = strings.TrimSpace(v)
	}
	return out, nil
}

// reportResult prints a transition, what it unlocked and any warning.
func reportResult(cmd *cobra.Command, res *tracker.Result) {
	writeResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
}

func writeResult(out, errOut io.Writer, res *tracker.Result) {
	fmt.Fprintln(out, res.Transition.String())
	if len(res.Unlocked) > 0 {
		fmt.Fprintf(out, "Nuevas disponibles: %s\n", strings.Join(res.Unlocked, ", "))
	}
	if res.Warning != "" {
		fmt.Fprintln(errOut, "warning:", res.Warning)
	}
}

// printAttempts shows the fields the status engine reveals for a.
func printAttempts(w io.Writer, a status.AttemptSet) {
	view := status.Compute(a)
	for _, p := range []status.Parcial{status.Parcial1, status.Parcial2} {
		vals := make([]string, view.Visible.Parcial(p))
		for i := range vals {
			vals[i] = displayValue(a.Parcial(p, i))
		}
		line := fmt.Sprintf("  Parcial %d: %s", p, strings.Join(vals, " | "))
		if h := view.Hint(p); h != status.HintNone {
			line += "  (" + string(h) + ")"
		}
		fmt.Fprintln(w, line)
	}
	if view.Visible.Finals > 0 {
		vals := make([]string, view.Visible.Finals)
		for i := range vals {
			vals[i] = displayValue(a.Final(i))
		}
		fmt.Fprintf(w, "  Finales:   %s\n", strings.Join(vals, " | "))
	}
}

func displayValue(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func tagList() string {
	tags := status.AllTags()
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
