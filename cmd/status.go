package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/grade"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/stats"
)

var statusCmd = &cobra.Command{
	Use:   "status [CODE]",
	Short: "Show the board, or the detail of one subject",
	Args:  cobra.MaximumNArgs(1),
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
		if len(args) == 1 {
			return printSubject(cmd.OutOrStdout(), state, strings.ToUpper(args[0]))
		}
		return printBoard(cmd.OutOrStdout(), state)
	},
}

func availabilityLabel(st *board.State, code string) string {
	switch st.Classify(code) {
	case board.Available:
		return "Disponible"
	case board.Started:
		tag, _ := st.Effective(code)
		return tag.Icon() + " " + tag.Label()
	}
	return "Bloqueada"
}

func printBoard(w io.Writer, st *board.State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, col := range st.Columns() {
		fmt.Fprintf(tw, "\n%s\n", strings.ToUpper(col.Module.Name))
		for _, s := range col.Subjects {
			g := ""
			if rec, ok := st.Record(s.Code); ok {
				if v, ok := stats.Grade(rec); ok {
					g = grade.Format(v)
				}
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", s.Code, s.Name, availabilityLabel(st, s.Code), g)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	rep := stats.ForBoard(st)
	fmt.Fprintf(w, "\n%d/%d aprobadas, %d%% completado, %d horas semanales\n",
		rep.ApprovedSubjects, rep.TotalSubjects, rep.ProgressPercent, rep.WeeklyHours)
	return nil
}

func printSubject(w io.Writer, st *board.State, code string) error {
	subj, ok := st.Subject(code)
	if !ok {
		return fmt.Errorf("%s is not on the board", code)
	}
	fmt.Fprintf(w, "%s  %s (%d hs semanales)\n", subj.Code, subj.Name, subj.WeekHours)
	fmt.Fprintf(w, "Estado: %s\n", availabilityLabel(st, code))

	if rec, ok := st.Record(code); ok {
		if rec.Override != nil {
			fmt.Fprintf(w, "Forzado (calculado: %s)\n", rec.Status.Label())
		}
		printAttempts(w, rec.Attempts)
	}

	lookup := st.Lookup().Effective()
	printReqs := func(title string, reqs []plan.Requirement) {
		if len(reqs) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s:\n", title)
		for _, r := range reqs {
			mark := "○"
			if board.Satisfies(r, lookup) {
				mark = "●"
			}
			fmt.Fprintf(w, "  %s %s (%s)\n", mark, r.ID, r.Type)
		}
	}
	printReqs("Para cursar", subj.Requirements.Cursar)
	printReqs("Para aprobar", subj.Requirements.Aprobar)

	if missing := st.MissingRequirements(code); len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, r := range missing {
			ids[i] = r.ID
		}
		fmt.Fprintf(w, "\nFalta para cursar: %s\n", strings.Join(ids, ", "))
	}

	if deps := st.Dependents(code); len(deps) > 0 {
		fmt.Fprintln(w, "\nHabilita:")
		for _, d := range deps {
			fmt.Fprintf(w, "  → %s (%s, %s)\n", d.DependentID, d.Relation, d.Type)
		}
	}
	return nil
}
