package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cloud-ru/rentability-go/internal/api"
	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/internal/config"
	"github.com/cloud-ru/rentability-go/internal/logger"
	"github.com/cloud-ru/rentability-go/internal/service"
	"github.com/cloud-ru/rentability-go/internal/tools"
	"github.com/cloud-ru/rentability-go/internal/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.LogLevel)

	shutdownTracing, err := tracing.InitTracing(cfg.OTELServiceName, cfg.OTELEndpoint, calculations.CalculationVersion)
	if err != nil {
		logger.L.Error("failed to init tracing", zap.Error(err))
		os.Exit(1)
	}

	svc := service.New(cfg, tracing.Tracer, cfg.CacheTTL)
	router := api.NewRouter(svc, tools.Registry(svc, tracing.Tracer), api.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L.Info("server starting", zap.Int("port", cfg.Port), zap.String("calculation_version", calculations.CalculationVersion))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.L.Error("tracing shutdown failed", zap.Error(err))
	}
	logger.L.Info("server stopped")
}
