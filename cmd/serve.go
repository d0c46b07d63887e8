package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jacobsenj/canto-fal/pkg/db"
	"github.com/jacobsenj/canto-fal/router"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		drivers, err := a.factory(ctx)
		if err != nil {
			return err
		}

		a.log.Info("Setting up router...")
		ginEngine, err := router.SetupRouter(router.Deps{
			Logger:  a.log,
			API:     a.cfg.API,
			Drivers: drivers,
			TempDir: a.cfg.TempDir,
			Health:  health,
		})
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              a.cfg.Host + ":" + a.cfg.Port,
			Handler:           ginEngine,
			ReadHeaderTimeout: time.Duration(a.cfg.RequestTimeout) * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			a.log.Infof("Server started on %s:%s", a.cfg.Host, a.cfg.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
			a.log.Info("Received shutdown signal")
		case err := <-serveErr:
			if err != nil {
				return err
			}
		}

		a.log.Info("Shutting down server...")
		shutdownTimeout := time.Duration(a.cfg.ShutdownTimeout) * time.Second
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.WithError(err).Error("Server shutdown error")
		}
		a.log.Info("Shutdown complete")
		return nil
	},
}

// health reports the database state when one is connected
func health(ctx context.Context) error {
	if err := db.Health(ctx); err != nil && !errors.Is(err, db.ErrNotInitialized) {
		return err
	}
	return nil
}
