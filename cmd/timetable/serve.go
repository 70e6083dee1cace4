package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/handler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API",
	Long: `Serve the timetable API used by the UI shell.

On android the widget sync worker and the live widget stream are started as
well. On native platforms expired share files are swept periodically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApplication(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer app.Close()

		app.widget.Start(ctx)
		if app.cfg.IsNative() {
			go app.exports.RunCleanup(ctx, app.cfg.Export.CleanupInterval)
		}
		if err := app.homework.Reload(ctx); err != nil {
			app.logger.Warn("initial homework load failed", zap.Error(err))
		}

		router := handler.NewRouter(app.cfg, app.logger, app.metrics, handler.Handlers{
			Subjects: handler.NewSubjectHandler(app.timetable),
			Homework: handler.NewHomeworkHandler(app.homework),
			Settings: handler.NewSettingsHandler(app.timetable),
			Transfer: handler.NewTransferHandler(app.exports, app.imports),
			Widget:   handler.NewWidgetHandler(app.widget, app.timetable, app.hub),
			Metrics:  handler.NewMetricsHandler(app.metrics, app.db),
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", app.cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			app.logger.Sugar().Infow("server starting", "addr", srv.Addr, "env", app.cfg.Env, "platform", app.cfg.Platform)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
		}

		app.logger.Info("server shutting down")
		if app.hub != nil {
			app.hub.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
