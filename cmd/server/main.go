package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/soundofguitara/parma/config"
	"github.com/soundofguitara/parma/internal/api/handler"
	"github.com/soundofguitara/parma/internal/api/router"
	"github.com/soundofguitara/parma/internal/repository"
	"github.com/soundofguitara/parma/internal/service"
	"github.com/soundofguitara/parma/pkg/database"
	"github.com/soundofguitara/parma/pkg/jwt"
	applogger "github.com/soundofguitara/parma/pkg/logger"
	"github.com/soundofguitara/parma/pkg/metrics"
	"github.com/soundofguitara/parma/pkg/redis"
	"github.com/soundofguitara/parma/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// .env is optional, real environment variables win
	_ = godotenv.Load()

	// 1. configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("report_timezone", cfg.Report.Location().String()),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// 4. Redis is optional: without it there is no cache, no token
	// blacklist and no login rate limit
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without cache and token blacklist", zap.Error(err))
		rdb = nil
	}

	// 5. report archive
	archive, err := storage.NewArchive(&cfg.Storage, logger)
	if err != nil {
		logger.Warn("report archive unavailable, reports will not be archived", zap.Error(err))
		archive = nil
	}

	m := metrics.New()
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. wiring: repository -> service -> handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, service.Deps{
		Redis:   rdb,
		Archive: archive,
		Metrics: m,
	}, logger)
	h := handler.NewHandler(cfg, svc)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(cfg, h, router.Deps{
		JWT:     jwtMgr,
		Redis:   rdb,
		Metrics: m,
		DB:      database.HealthCheck{DB: sqlDB},
	}, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// report generation can take a while on large windows
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database failed", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
