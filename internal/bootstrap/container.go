package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/infra/blob"
	"github.com/signoffhq/signoff/internal/infra/cache"
	"github.com/signoffhq/signoff/internal/infra/db"
	"github.com/signoffhq/signoff/internal/infra/httpclient"
	"github.com/signoffhq/signoff/internal/infra/logger"
	"github.com/signoffhq/signoff/internal/infra/queue"
	"github.com/signoffhq/signoff/internal/middleware"
	"github.com/signoffhq/signoff/internal/modules/handler"
	"github.com/signoffhq/signoff/internal/modules/repo"
	"github.com/signoffhq/signoff/internal/modules/service"
	"github.com/signoffhq/signoff/internal/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg), nil
	})
	do.Provide(inj, func(i *do.Injector) (*cache.ProjectSnapshots, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.NewProjectSnapshots(do.MustInvoke[*redis.Client](i), cfg.SnapshotTTL()), nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return amqp.Dial(cfg.RabbitMQ.URL)
	})
	do.Provide(inj, func(i *do.Injector) (*queue.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return queue.NewPublisher(do.MustInvoke[*amqp.Connection](i), cfg.RabbitMQ.Queue, do.MustInvoke[*zap.Logger](i))
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// change notifications: redis always, the queue and webhook when configured
	do.Provide(inj, func(i *do.Injector) (realtime.Notifier, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)

		sinks := []realtime.Notifier{
			realtime.NewRedisNotifier(do.MustInvoke[*redis.Client](i), do.MustInvoke[*cache.ProjectSnapshots](i)),
		}
		if cfg.RabbitMQ.URL != "" {
			pub, err := do.Invoke[*queue.Publisher](i)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, realtime.NewQueueNotifier(pub))
		}
		if cfg.Webhook.URL != "" {
			sinks = append(sinks, realtime.NewWebhookNotifier(httpclient.NewWebhookClient(cfg, log)))
		}
		return realtime.NewFanout(log, sinks...), nil
	})
	do.Provide(inj, func(i *do.Injector) (realtime.Subscriber, error) {
		return realtime.NewRedisSubscriber(do.MustInvoke[*redis.Client](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.AssetRepo, error) {
		return repo.NewAssetRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.StakeholderRepo, error) {
		return repo.NewStakeholderRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.FeedbackRepo, error) {
		return repo.NewFeedbackRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[realtime.Notifier](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.StakeholderService, error) {
		return service.NewStakeholderService(
			do.MustInvoke[repo.StakeholderRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[realtime.Notifier](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReviewService, error) {
		return service.NewReviewService(
			do.MustInvoke[service.StakeholderService](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[*cache.ProjectSnapshots](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.FeedbackService, error) {
		return service.NewFeedbackService(
			do.MustInvoke[repo.FeedbackRepo](i),
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[service.StakeholderService](i),
			do.MustInvoke[realtime.Notifier](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AssetService, error) {
		return service.NewAssetService(
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[realtime.Notifier](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.CommentService, error) {
		return service.NewCommentService(
			do.MustInvoke[repo.FeedbackRepo](i),
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[realtime.Notifier](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AssetHandler, error) {
		return handler.NewAssetHandler(do.MustInvoke[service.AssetService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.StakeholderHandler, error) {
		return handler.NewStakeholderHandler(do.MustInvoke[service.StakeholderService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.CommentHandler, error) {
		return handler.NewCommentHandler(do.MustInvoke[service.CommentService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ReviewHandler, error) {
		return handler.NewReviewHandler(
			do.MustInvoke[service.ReviewService](i),
			do.MustInvoke[service.FeedbackService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.EventsHandler, error) {
		return handler.NewEventsHandler(
			do.MustInvoke[realtime.Subscriber](i),
			do.MustInvoke[service.StakeholderService](i),
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*middleware.RateLimiter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst), nil
	})

	return inj
}
