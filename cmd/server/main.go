package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskvault/backend/api/handler"
	"github.com/taskvault/backend/internal/auth"
	"github.com/taskvault/backend/internal/config"
	"github.com/taskvault/backend/internal/infrastructure/audit"
	"github.com/taskvault/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskvault/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskvault/backend/internal/infrastructure/redis"
	"github.com/taskvault/backend/internal/middleware"
	"github.com/taskvault/backend/internal/router"
	"github.com/taskvault/backend/internal/services"
	"github.com/taskvault/backend/internal/services/lifecycle"
	"github.com/taskvault/backend/pkg/httpcontext"
	"github.com/taskvault/backend/pkg/logger"
	"github.com/taskvault/backend/repository/postgres"
	redisRepo "github.com/taskvault/backend/repository/redis"
	accountUC "github.com/taskvault/backend/usecase/account"
	profileUC "github.com/taskvault/backend/usecase/profile"
	taskUC "github.com/taskvault/backend/usecase/task"
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

	tokenService, err := auth.NewTokenService(auth.Config{
		SigningKey:    cfg.Auth.SigningKey,
		Issuer:        cfg.Auth.Issuer,
		Audience:      cfg.Auth.Audience,
		TokenLifetime: cfg.Auth.TokenLifetime,
		ClockSkew:     cfg.Auth.ClockSkew,
	})
	if err != nil {
		zapLogger.Fatal("token service init failed", zap.Error(err))
	}

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

	journal, err := audit.Open(cfg.Audit.Path, "audit")
	if err != nil {
		zapLogger.Fatal("failed to open audit journal", zap.Error(err))
	}
	manager.Register("audit_journal", func(ctx context.Context) error {
		return journal.Close()
	})

	mon := monitor.New(pool, redisClient, journal, cfg.Context.RequestTimeout*2, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	recorder := services.NewAuditRecorder(journal, zapLogger, services.RecorderConfig{
		QueueSize:       cfg.Audit.QueueSize,
		Retention:       cfg.Audit.Retention,
		CleanupInterval: cfg.Audit.CleanupInterval,
	})
	recorder.Start()
	manager.Register("audit_recorder", func(ctx context.Context) error {
		recorder.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	taskCache := redisRepo.NewTaskListCache(redisClient, cfg.Cache.TaskListTTL, zapLogger)

	accountUseCase := accountUC.New(userRepo, tokenService, recorder, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, taskCache, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(accountUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(tokenService, zapLogger)
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
