package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"league-standings-service/internal/config"
	"league-standings-service/internal/logging"
	"league-standings-service/internal/server"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg := config.Load()
	logger := logging.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	srv.Run(ctx, stop)
}
