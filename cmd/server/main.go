package main

//	@title			Signoff API
//	@version		1.0
//	@description	Client approval workflow: agencies share projects and assets, external reviewers approve them through review links.
//	@schemes		http https
//	@BasePath		/api/v1

//  Bearer at agency level
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Agency session token (e.g., "Bearer eyJhbGciOi...")

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/signoffhq/signoff/internal/bootstrap"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/infra/cache"
	dbpkg "github.com/signoffhq/signoff/internal/infra/db"
	"github.com/signoffhq/signoff/internal/infra/queue"
	"github.com/signoffhq/signoff/internal/middleware"
	"github.com/signoffhq/signoff/internal/modules/handler"
	"github.com/signoffhq/signoff/internal/router"
	"github.com/signoffhq/signoff/internal/telemetry"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	db := do.MustInvoke[*gorm.DB](inj)
	rdb := do.MustInvoke[*redis.Client](inj)

	if cfg.Review.TokenPepper == "" {
		log.Sugar().Fatalw("review.tokenPepper must be set")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Sugar().Warnw("auth.jwtSecret is empty, agency routes will reject every request")
	}

	// Setup OpenTelemetry tracing (using configuration system)
	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()

		// Register GORM OpenTelemetry plugin after tracer provider is set
		if err := dbpkg.RegisterOpenTelemetryPlugin(db); err != nil {
			log.Sugar().Warnw("failed to register GORM OpenTelemetry plugin, continuing without database tracing", "err", err)
		}

		// Register Redis OpenTelemetry plugin after tracer provider is set
		if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
			log.Sugar().Warnw("failed to register Redis OpenTelemetry plugin, continuing without Redis tracing", "err", err)
		}
	}

	// init gin
	gin.SetMode(cfg.App.Env)

	// drop idle guest rate-limit buckets until shutdown
	limiter := do.MustInvoke[*middleware.RateLimiter](inj)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go limiter.Run(sweepCtx, time.Minute, 10*time.Minute)

	engine := router.NewRouter(router.RouterDeps{
		Config:             cfg,
		Log:                log,
		ProjectHandler:     do.MustInvoke[*handler.ProjectHandler](inj),
		AssetHandler:       do.MustInvoke[*handler.AssetHandler](inj),
		StakeholderHandler: do.MustInvoke[*handler.StakeholderHandler](inj),
		CommentHandler:     do.MustInvoke[*handler.CommentHandler](inj),
		ReviewHandler:      do.MustInvoke[*handler.ReviewHandler](inj),
		EventsHandler:      do.MustInvoke[*handler.EventsHandler](inj),
		GuestLimiter:       limiter,
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr)
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	if cfg.RabbitMQ.URL != "" {
		if pub, err := do.Invoke[*queue.Publisher](inj); err == nil {
			_ = pub.Close()
		}
	}
	_ = rdb.Close()
	log.Sugar().Info("server exited")
}
