package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/plan"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Browse and validate curriculum plans",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-16s  %-8s  %8s  %s\n", "NAME", "VERSION", "SUBJECTS", "TITLE")
		fmt.Fprintln(out, strings.Repeat("─", 72))

		names := plan.Names()
		for _, name := range names {
			p, err := plan.Builtin(name)
			if err != nil {
				return err
			}
			marker := " "
			if name == cfg.Plan {
				marker = "*"
			}
			fmt.Fprintf(out, "%-16s  %-8s  %8d  %s %s\n",
				name, p.Version, len(p.Subjects()), p.Title, marker)
		}

		fmt.Fprintf(out, "\n%d plans\n", len(names))
		return nil
	},
}

var plansValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a plan file against the schema and its requirement graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s v%s, %d modules, %d subjects, %d electives)\n",
			args[0], p.Title, strings.TrimPrefix(p.Version, "v"),
			len(p.Modules), len(p.Subjects()), len(p.Electives()))
		return nil
	},
}

func init() {
	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansValidateCmd)
}
