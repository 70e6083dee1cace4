package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/handler"
	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/repository"
	"github.com/noah-isme/timetable-organizer/internal/service"
	"github.com/noah-isme/timetable-organizer/pkg/cache"
	"github.com/noah-isme/timetable-organizer/pkg/config"
	"github.com/noah-isme/timetable-organizer/pkg/database"
	"github.com/noah-isme/timetable-organizer/pkg/logger"
	"github.com/noah-isme/timetable-organizer/pkg/storage"
)

// application holds the wired services shared by every command.
type application struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	redis   *redis.Client
	metrics *service.MetricsService

	hub       *handler.WidgetHub
	widget    *service.WidgetBridge
	timetable *service.TimetableService
	homework  *service.HomeworkService
	exports   *service.ExportService
	imports   *service.ImportService
}

// newApplication opens storage and builds the services. withHub attaches the
// websocket widget stream, which only the server needs.
func newApplication(ctx context.Context, cfg *config.Config, withHub bool) (*application, error) {
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	app := &application{cfg: cfg, logger: logr}

	app.db, err = database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, app.db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	widgetEnabled := cfg.Widget.Enabled && cfg.Platform == config.PlatformAndroid
	if widgetEnabled {
		app.redis, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("widget store unavailable", zap.Error(err))
		}
	}

	if withHub {
		app.metrics = service.NewMetricsService()
	}
	validate := service.NewValidator()

	var sinks []service.WidgetSink
	if withHub && widgetEnabled {
		app.hub = handler.NewWidgetHub(cfg.CORS.AllowedOrigins, app.metrics, logr)
		sinks = append(sinks, app.hub)
	}
	var widgetStore service.WidgetStore
	if app.redis != nil {
		widgetStore = repository.NewWidgetRepository(app.redis, cfg.Widget.RedisKey)
	}
	app.widget = service.NewWidgetBridge(service.WidgetConfig{
		Enabled:    widgetEnabled,
		QueueSize:  cfg.Widget.QueueSize,
		MaxRetries: cfg.Widget.MaxRetries,
		RetryDelay: cfg.Widget.RetryDelay,
		MaxDelay:   cfg.Widget.MaxDelay,
	}, widgetStore, app.metrics, logr, sinks...)

	snapshots := service.NewSnapshotStore(repository.NewSnapshotRepository(app.db), app.metrics, logr)
	app.timetable = service.NewTimetableService(snapshots, app.widget, validate, app.metrics, logr)
	app.timetable.Subscribe(func(snap models.Snapshot) {
		app.metrics.SetSubjects(len(snap.Subjects))
	})
	app.homework = service.NewHomeworkService(repository.NewHomeworkRepository(app.db), app.timetable, validate, app.metrics, logr)

	var (
		shareStore *storage.LocalStorage
		signer     *storage.SignedURLSigner
	)
	if cfg.IsNative() {
		shareStore, err = storage.NewLocalStorage(cfg.Export.CacheDir)
		if err != nil {
			logr.Warn("share cache unavailable", zap.Error(err))
		}
		signer = storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
	}
	exportCfg := service.ExportConfig{Native: cfg.IsNative(), APIPrefix: cfg.APIPrefix, CacheTTL: cfg.Export.CacheTTL}
	if shareStore != nil {
		app.exports = service.NewExportService(app.timetable, shareStore, signer, exportCfg, app.metrics, logr)
	} else {
		app.exports = service.NewExportService(app.timetable, nil, signer, exportCfg, app.metrics, logr)
	}
	app.imports = service.NewImportService(app.timetable, logr)

	app.timetable.Load(ctx)
	return app, nil
}

// Close releases connections in reverse order of acquisition.
func (a *application) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.widget != nil {
		a.widget.Stop()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.logger.Sync()
}
