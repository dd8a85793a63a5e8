package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/platform/config"
	"github.com/abhisek/utntracker/internal/platform/logging"
	"github.com/abhisek/utntracker/internal/store"
	"github.com/abhisek/utntracker/internal/tracker"
)

// cfg is loaded once before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "utntracker",
	Short: "Track your UTN degree progress",
	Long:  "utntracker: a terminal board of your UTN curriculum. Record exam grades, see what each subject unlocks and share your progress.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if p, _ := cmd.Flags().GetString("plan"); p != "" {
			c.Plan = p
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format, "text")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides UTNT_DB env var)")
	rootCmd.PersistentFlags().String("plan", "", "Built-in plan name or path to a plan file (overrides UTNT_PLAN env var)")
	rootCmd.Flags().Bool("no-welcome", false, "Open the board without the welcome screen")

	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(gradesCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(electivesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then UTNT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openTracker resolves the plan and the local store and wires a tracker over
// them. The caller closes the store.
func openTracker(cmd *cobra.Command) (*tracker.Service, *store.Store, error) {
	p, err := plan.Resolve(cfg.Plan)
	if err != nil {
		return nil, nil, fmt.Errorf("load plan: %w", err)
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return tracker.ForStore(p, st), st, nil
}
