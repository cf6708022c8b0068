package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/middleware"
	"github.com/tkmproject/tkm-api/internal/service"
	"github.com/tkmproject/tkm-api/pkg/logger"
	corsmiddleware "github.com/tkmproject/tkm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tkmproject/tkm-api/pkg/middleware/requestid"
)

// RouterParams groups everything the HTTP surface needs.
type RouterParams struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator

	Programs    *ProgramHandler
	Submissions *SubmissionHandler
	Drafts      *DraftHandler
	Auth        *AuthHandler
	Dashboard   *DashboardHandler
	Exports     *ExportHandler
	Ops         *MetricsHandler
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(p RouterParams) *gin.Engine {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.APIPrefix == "" {
		p.APIPrefix = "/api/v1"
	}
	if p.Ops == nil {
		p.Ops = NewMetricsHandler(p.Metrics, nil)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(p.Logger))
	r.Use(corsmiddleware.New(p.AllowedOrigins))
	r.Use(middleware.Metrics(p.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", p.Ops.Health)
	r.GET("/ready", p.Ops.Ready)
	r.GET("/metrics", p.Ops.Prometheus)
	if p.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(p.APIPrefix)
	if p.Programs != nil {
		api.GET("/programs", p.Programs.List)
	}
	if p.Submissions != nil {
		api.POST("/registrations/students", p.Submissions.Student)
		api.POST("/registrations/teachers", p.Submissions.Teacher)
		api.POST("/contact", p.Submissions.Contact)
	}
	if p.Drafts != nil {
		drafts := api.Group("/drafts")
		// gin needs one wildcard name per segment, so create reads the form from :id.
		drafts.POST("/:id", p.Drafts.Create)
		drafts.GET("/:id", p.Drafts.Get)
		drafts.DELETE("/:id", p.Drafts.Discard)
		drafts.PATCH("/:id/fields", p.Drafts.UpdateField)
		drafts.POST("/:id/classes", p.Drafts.SelectClass)
		drafts.POST("/:id/instruments", p.Drafts.ToggleInstrument)
		drafts.POST("/:id/submit", p.Drafts.Submit)
	}
	if p.Exports != nil {
		api.GET("/export/:token", p.Exports.Serve)
	}

	admin := api.Group("/admin")
	if p.Auth != nil {
		admin.POST("/auth/login", p.Auth.Login)
	}
	if p.Tokens == nil {
		return r
	}
	secured := admin.Group("")
	secured.Use(middleware.JWT(p.Tokens))
	if p.Auth != nil {
		secured.GET("/auth/me", p.Auth.Me)
	}
	if p.Dashboard != nil {
		secured.GET("/dashboard", p.Dashboard.Get)
		secured.GET("/dashboard/stream", p.Dashboard.Stream)
	}
	if p.Exports != nil {
		secured.GET("/exports/:view", p.Exports.Download)
		secured.POST("/exports", p.Exports.Create)
	}
	return r
}
