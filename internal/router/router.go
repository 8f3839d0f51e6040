package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/signoffhq/signoff/docs"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/metrics"
	"github.com/signoffhq/signoff/internal/middleware"
	"github.com/signoffhq/signoff/internal/modules/handler"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config             *config.Config
	Log                *zap.Logger
	ProjectHandler     *handler.ProjectHandler
	AssetHandler       *handler.AssetHandler
	StakeholderHandler *handler.StakeholderHandler
	CommentHandler     *handler.CommentHandler
	ReviewHandler      *handler.ReviewHandler
	EventsHandler      *handler.EventsHandler
	GuestLimiter       *middleware.RateLimiter
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Add OpenTelemetry middleware if enabled (using configuration system)
	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// guest review links, no login
	review := v1.Group("/review/:project_id/:token")
	{
		review.Use(d.GuestLimiter.Middleware())

		review.GET("", d.ReviewHandler.GetReview)
		review.POST("/feedback", d.ReviewHandler.SubmitFeedback)
		review.GET("/assets/:asset_id/download", d.ReviewHandler.DownloadReviewAsset)
		review.GET("/events", d.EventsHandler.ReviewEvents)
	}

	projects := v1.Group("/projects")
	{
		projects.Use(middleware.AgencyAuth(d.Config))

		projects.POST("", d.ProjectHandler.CreateProject)
		projects.GET("", d.ProjectHandler.ListProjects)
		projects.GET("/:project_id", d.ProjectHandler.GetProject)
		projects.PUT("/:project_id/status", d.ProjectHandler.UpdateProjectStatus)
		projects.GET("/:project_id/events", d.EventsHandler.ProjectEvents)

		stakeholders := projects.Group("/:project_id/stakeholders")
		{
			stakeholders.POST("", d.StakeholderHandler.CreateStakeholder)
			stakeholders.GET("", d.StakeholderHandler.ListStakeholders)
		}

		assets := projects.Group("/:project_id/assets")
		{
			assets.POST("", d.AssetHandler.UploadAsset)
			assets.GET("/:asset_id/download", d.AssetHandler.DownloadAsset)
			assets.POST("/:asset_id/comments", d.CommentHandler.CreateComment)
		}
	}
	return r
}
