package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/profile"
	"github.com/abhisek/utntracker/internal/server"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Publish your board as a shared profile",
}

var sharePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Write the local board to the configured profile store",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, _ := cmd.Flags().GetString("uid")
		public, _ := cmd.Flags().GetBool("public")
		year, _ := cmd.Flags().GetInt("year")

		if uid == "" {
			uid = profile.NewUID()
		}
		if !profile.ValidUID(uid) {
			return fmt.Errorf("invalid uid %q", uid)
		}

		svc, st, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		state, err := svc.Load(cmd.Context())
		if err != nil {
			return err
		}

		p, err := profile.FromBoard(uid, svc.Plan().Name, state)
		if err != nil {
			return err
		}
		p.Public = public
		if year > 0 {
			p.YearStarted = &year
		}

		b, err := openBackends(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.repo.Put(cmd.Context(), p); err != nil {
			return fmt.Errorf("publish profile: %w", err)
		}
		if b.cache != nil {
			if err := b.cache.Delete(cmd.Context(), server.CacheKey(uid)); err != nil {
				slog.Warn("stats cache invalidation failed", "uid", uid, "error", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), uid)
		if !public {
			fmt.Fprintln(cmd.ErrOrStderr(), "Profile is private; pass --public to let the stats endpoint serve it.")
		}
		return nil
	},
}

func init() {
	sharePublishCmd.Flags().String("uid", "", "Profile id (a new one is generated when empty)")
	sharePublishCmd.Flags().Bool("public", false, "Mark the profile as public")
	sharePublishCmd.Flags().Int("year", 0, "Year you started the degree")

	shareCmd.AddCommand(sharePublishCmd)
}
