package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/app"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the terminal board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	boardCmd.Flags().Bool("no-welcome", false, "Open the board without the welcome screen")
}

// runApp opens the store, builds the tracker, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	svc, st, err := openTracker(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	skip, _ := cmd.Flags().GetBool("no-welcome")
	return app.Run(svc, app.Options{
		Events:      st.EventRepo(),
		SkipWelcome: skip,
	})
}
