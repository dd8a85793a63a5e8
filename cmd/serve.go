package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/utntracker/internal/platform/logging"
	"github.com/abhisek/utntracker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve shared profile stats over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format, "json")

		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}

		// Graceful shutdown on SIGTERM/SIGINT.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		b, err := openBackends(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		opts := server.Options{CacheTTL: cfg.Cache.TTL, Checks: b.checks}
		if b.cache != nil {
			opts.Cache = b.cache
		}

		srv := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      server.New(b.repo, opts).Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			slog.Info("server starting", "addr", srv.Addr, "profiles", cfg.Profiles.Source)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "Listen port (overrides UTNT_SERVER_PORT)")
}
