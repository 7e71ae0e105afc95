package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillbridge/platform/internal/api"
	"github.com/skillbridge/platform/internal/core/service"
	"github.com/skillbridge/platform/internal/infrastructure/config"
	mongodb "github.com/skillbridge/platform/internal/infrastructure/db/mongo"
	redisdb "github.com/skillbridge/platform/internal/infrastructure/db/redis"
	"github.com/skillbridge/platform/internal/realtime"
	"github.com/skillbridge/platform/pkg/logger"
)

// @title           Skillbridge Identity API
// @version         1.0
// @description     Identity and session-security core: token issuance, path authorization, realtime presence.
// @BasePath        /
func main() {
	log := logger.Init(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("ENV") == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration failed")
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	// --- Core services ---
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	principals := mongodb.NewPrincipalRepository(db)
	auth := service.NewAuthService(principals, tokens)

	// --- Realtime: hub fans out locally, redis fans out to other instances ---
	hub := realtime.NewHub(log)
	publisher := redisdb.NewPresencePublisher(rdb, log)
	registry := realtime.NewRegistry(realtime.MultiBroadcaster{hub, publisher})
	go hub.Run(ctx)

	wsHandler := realtime.NewHandler(hub, registry, tokens, log)

	e := api.NewRouter(api.Deps{
		Log:      log,
		Mongo:    db,
		Redis:    rdb,
		Tokens:   tokens,
		Auth:     auth,
		Presence: registry,
		Realtime: wsHandler.Handle,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("identity service started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}
