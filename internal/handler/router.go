package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-organizer/internal/middleware"
	"github.com/noah-isme/timetable-organizer/internal/service"
	"github.com/noah-isme/timetable-organizer/pkg/config"
	"github.com/noah-isme/timetable-organizer/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-organizer/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-organizer/pkg/middleware/requestid"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Subjects *SubjectHandler
	Homework *HomeworkHandler
	Settings *SettingsHandler
	Transfer *TransferHandler
	Widget   *WidgetHandler
	Metrics  *MetricsHandler
}

// NewRouter builds the gin engine with the shared middleware chain and all
// API routes under cfg.APIPrefix.
func NewRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	subjects := api.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.POST("", h.Subjects.Create)
	subjects.GET("/:id", h.Subjects.Get)
	subjects.PUT("/:id", h.Subjects.Update)
	subjects.DELETE("/:id", h.Subjects.Delete)

	homework := api.Group("/homework")
	homework.GET("", h.Homework.List)
	homework.POST("", h.Homework.Create)
	homework.POST("/reload", h.Homework.Reload)
	homework.PATCH("/:id", h.Homework.Update)
	homework.DELETE("/:id", h.Homework.Delete)
	homework.POST("/:id/toggle", h.Homework.Toggle)

	api.GET("/settings", h.Settings.Get)
	api.PATCH("/settings", h.Settings.Update)
	api.GET("/stats", h.Settings.Stats)

	api.GET("/export", h.Transfer.Export)
	api.GET("/share/:token", h.Transfer.Share)
	api.POST("/import", h.Transfer.Import)

	widget := api.Group("/widget")
	widget.GET("/subjects", h.Widget.Subjects)
	widget.GET("/preview", h.Widget.Preview)
	widget.GET("/stream", h.Widget.Stream)

	return r
}
