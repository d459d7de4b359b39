package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/BartekS5/hubdb-sync/internal/cli"
	"github.com/BartekS5/hubdb-sync/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Errorf("hubdb-sync: %v", err)
		stop()
		os.Exit(1)
	}
}
