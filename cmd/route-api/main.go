package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rutar-app/backend/internal/api"
	"github.com/rutar-app/backend/internal/billing"
	"github.com/rutar-app/backend/internal/delivery"
	"github.com/rutar-app/backend/internal/user"
	"github.com/rutar-app/backend/pkg/config"
	"github.com/rutar-app/backend/pkg/httpserver"
	"github.com/rutar-app/backend/pkg/logger"
	"github.com/rutar-app/backend/pkg/mongo"
	"github.com/rutar-app/backend/pkg/redis"
)

func main() {
	var (
		logCfg      logger.Config
		mongoCfg    mongo.Config
		serverCfg   httpserver.Config
		userCfg     user.Config
		providerCfg billing.ProviderConfig
		cacheCfg    billing.CacheConfig
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&serverCfg)
	config.MustLoad(&userCfg)
	config.MustLoad(&providerCfg)
	config.MustLoad(&cacheCfg)

	log := logger.NewFromConfig(logCfg)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mongoClient, err := mongo.New(ctx, mongoCfg)
	if err != nil {
		log.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()
	db := mongoClient.Database(mongoCfg.Database)

	userStore := user.NewMongoStore(db)
	if err := userStore.EnsureIndexes(ctx); err != nil {
		log.Error("failed to ensure user indexes", "error", err)
		os.Exit(1)
	}
	deliveryStore := delivery.NewMongoStore(db)
	if err := deliveryStore.EnsureIndexes(ctx); err != nil {
		log.Error("failed to ensure delivery indexes", "error", err)
		os.Exit(1)
	}

	loc := time.Local
	if userCfg.Timezone != "" && userCfg.Timezone != "Local" {
		loc, err = time.LoadLocation(userCfg.Timezone)
		if err != nil {
			log.Error("invalid quota timezone", "timezone", userCfg.Timezone, "error", err)
			os.Exit(1)
		}
	}

	users := user.NewService(userStore, log,
		user.WithFreeDailyLimit(userCfg.FreeDailyLimit),
		user.WithLocation(loc),
	)
	deliveries := delivery.NewService(deliveryStore, userStore, log)

	provider := billing.NewMercadoPagoClient(providerCfg)

	checks := []api.HealthCheck{mongo.Healthcheck(mongoClient)}
	processorOpts := []billing.ProcessorOption{}
	if cacheCfg.Enabled {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()

		processorOpts = append(processorOpts,
			billing.WithRecordCache(billing.NewRedisRecordCache(redisClient, cacheCfg.TTL)))
		checks = append(checks, redis.Healthcheck(redisClient))
	}

	processor := billing.NewProcessor(provider, users, log, processorOpts...)

	handler := api.NewHandler(users, deliveries, processor, log, checks...)

	srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, handler.Router()); err != nil {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
