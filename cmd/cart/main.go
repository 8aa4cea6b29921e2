package main

import (
	"context"
	"fmt"
	"os"

	"shopcart/internal/bootstrap"
	"shopcart/internal/config"
	"shopcart/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	// stdout carries command output, so logs go to stderr
	appLog, err := logger.NewZapLoggerWithOptions(logger.Options{
		Env:    cfg.App.Env,
		File:   cfg.App.LogFile,
		Output: "stderr",
		Level:  "warn",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer appLog.Sync()

	ctx := context.Background()
	app, err := bootstrap.NewApp(ctx, cfg, appLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	defer app.Close(ctx)

	if err := run(ctx, app.Service, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
