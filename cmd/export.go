package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board and stats to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		state, err := svc.Load(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := export.Write(f, state); err != nil {
			f.Close()
			return fmt.Errorf("write workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "utntracker.xlsx", "Output file")
}
