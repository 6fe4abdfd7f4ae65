package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpapi "vehicle-ticket-service/internal/http"
	"vehicle-ticket-service/internal/jobs"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", true, "Apply database migrations before serving")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled comparison jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required to serve")
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := runMigrate(a, log); err != nil {
			return err
		}
	}

	loc, _ := cfg.Reconcile.Location()

	var scheduler *jobs.Scheduler
	if cfg.Reconcile.Enabled {
		runner := jobs.NewRunner(a.reconcile, a.captures, jobs.RunnerConfig{
			RetentionDays: cfg.Capture.RetentionDays,
		}, log.With().Str("component", "jobs").Logger())
		scheduler, err = jobs.NewScheduler(runner, jobs.Schedules{
			Compare: cfg.Reconcile.Schedule,
			Cleanup: cfg.Reconcile.CleanupSchedule,
		}, loc, log)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httpapi.NewHandler(a.tickets, a.captures, a.history, a.reconcile, a.staff, httpapi.Options{
		DefaultSourceModel: cfg.Capture.DefaultSourceModel,
		Location:           loc,
	}, log.With().Str("component", "http").Logger())
	router := httpapi.NewRouter(httpapi.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}, handler, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
