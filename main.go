package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sales_backend/api"
	"sales_backend/internal/config"
	"sales_backend/internal/database"
	"sales_backend/internal/events"
	"sales_backend/internal/metrics"
	"sales_backend/internal/sales"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("error creating logger: %v", err))
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	var storage sales.Storage
	if cfg.DBDriver == config.DriverMemory {
		storage = sales.NewLocalStorage()
	} else {
		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)
		storage = sales.NewGormStorage(db)
	}

	var publisher sales.Publisher
	if cfg.EventsEnabled() {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
	}

	var reg *metrics.Registry
	if cfg.MetricsEnabled {
		reg = metrics.NewRegistry()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())

	salesService := sales.NewService(storage, publisher, logger)
	api.InitRoutes(r, salesService, logger, reg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.DBDriver),
			zap.Bool("events", cfg.EventsEnabled()),
			zap.Bool("metrics", cfg.MetricsEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("error trying to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
