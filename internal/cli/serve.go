package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/villegasmiguelangel268-maker/listify/internal/config"
	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and WebSocket live view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = app.cfg.Port
			}
			if err := config.ValidatePort(port); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			backupMgr := app.backupManager(sess)
			if err := backupMgr.Start(ctx); err != nil {
				return err
			}
			defer backupMgr.Stop()

			srv := server.New(sess.mgr, grocery.DefaultRegistry(), backupMgr, server.Options{
				RateLimit:      app.cfg.RateLimit,
				AllowedOrigins: app.cfg.AllowedOrigins,
				TrustedProxies: app.cfg.TrustedProxies,
			}, app.logger)
			defer srv.Close()
			if rl := srv.RateLimiter(); rl != nil {
				go rl.RunCleanup(ctx)
			}

			httpServer := &http.Server{
				Addr:              ":" + port,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 5 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.logger.Info("listify running", "addr", "http://localhost:"+port, "items", len(sess.mgr.Items()), "db", app.cfg.DBPath)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			app.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&port, "port", config.DefaultPort, "HTTP listen port (overrides LISTIFY_PORT)")
	return cmd
}
