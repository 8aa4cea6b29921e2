package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"shopcart/internal/bootstrap"
	"shopcart/internal/config"
	ginserver "shopcart/internal/infrastructure/http/gin"
	"shopcart/internal/interfaces/http/handler"
	"shopcart/internal/interfaces/http/router"
	"shopcart/pkg/logger"
	"shopcart/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	appLog, err := logger.NewZapLoggerWithOptions(logger.Options{Env: cfg.App.Env, File: cfg.App.LogFile})
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to start", logger.Error(err))
	}
	defer app.Close(context.Background())

	if status := app.Service.Status(); status != "" {
		appLog.Info("Snapshots restored", logger.String("status", status))
	}

	engine := ginserver.NewEngine(appLog)
	router.RegisterRoutes(engine, handler.NewCartHandler(app.Service, appLog), metrics.HandlerFor(app.Registry))

	server := ginserver.NewServer(cfg.Server, engine, appLog)
	if err := server.Run(ctx); err != nil {
		appLog.Fatal("Server run failed", logger.Error(err))
	}
}
