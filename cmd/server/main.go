package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasklight/backend/api/handler"
	"github.com/tasklight/backend/internal/config"
	"github.com/tasklight/backend/internal/infrastructure/buffer"
	"github.com/tasklight/backend/internal/infrastructure/monitor"
	pgInfra "github.com/tasklight/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tasklight/backend/internal/infrastructure/redis"
	"github.com/tasklight/backend/internal/middleware"
	"github.com/tasklight/backend/internal/router"
	"github.com/tasklight/backend/internal/services"
	"github.com/tasklight/backend/internal/services/lifecycle"
	"github.com/tasklight/backend/pkg/httpcontext"
	"github.com/tasklight/backend/pkg/logger"
	boltRepo "github.com/tasklight/backend/repository/bolt"
	"github.com/tasklight/backend/repository/postgres"
	redisRepo "github.com/tasklight/backend/repository/redis"
	authUC "github.com/tasklight/backend/usecase/auth"
	settingsStore "github.com/tasklight/backend/usecase/settings"
	tagStore "github.com/tasklight/backend/usecase/tag"
	taskStore "github.com/tasklight/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	// Local state: the authoritative store. Loaded once below, written
	// back asynchronously on every mutation.
	stateRepo, err := boltRepo.Open(cfg.State.Path)
	if err != nil {
		zapLogger.Fatal("failed to open state store", zap.Error(err))
	}
	manager.Register("state_store", func(ctx context.Context) error {
		return stateRepo.Close()
	})

	stateWriter := services.NewStateWriter(stateRepo, zapLogger)
	stateWriter.Start()
	manager.Register("state_writer", func(ctx context.Context) error {
		stateWriter.Stop(ctx)
		return nil
	})

	// Remote mirror: Postgres documents plus Redis sessions.
	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.State.BufferPath, "sync")
	if err != nil {
		zapLogger.Fatal("failed to open sync buffer", zap.Error(err))
	}
	manager.Register("sync_buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	syncProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		taskRepo,
		tagRepo,
		cfg.Owner.UserID,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Sync.Interval,
			BatchSize:  cfg.Sync.BatchSize,
			MaxRetries: cfg.Sync.MaxRetry,
			Retention:  cfg.Sync.Retention,
		},
	)
	if cfg.Sync.Enabled {
		syncProcessor.Start()
		manager.Register("sync_processor", func(ctx context.Context) error {
			syncProcessor.Stop(ctx)
			return nil
		})
	}

	syncBridge := services.NewBufferBridge(syncProcessor)

	tasks, err := taskStore.NewStore(stateRepo, stateWriter, syncBridge, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to load tasks", zap.Error(err))
	}
	tags, err := tagStore.NewStore(stateRepo, tasks, stateWriter, syncBridge, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to load tags", zap.Error(err))
	}
	settings, err := settingsStore.NewStore(stateRepo, stateWriter, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to load settings", zap.Error(err))
	}

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Task:     apiHandler.NewTaskHandler(tasks, ctxAdapter, zapLogger),
		Tag:      apiHandler.NewTagHandler(tags, ctxAdapter, zapLogger),
		Settings: apiHandler.NewSettingsHandler(settings, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
