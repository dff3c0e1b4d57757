package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"visitr/internal/engine/notify"
	"visitr/internal/pkg/logger"
	"visitr/internal/platform/config"
	"visitr/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *once); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}
}

func run(ctx context.Context, cfg *config.Config, once bool) error {
	dispatcher := notify.NewDispatcher(cfg.Notifications)
	if !dispatcher.Enabled() {
		return errors.New("notifications.security_webhook_url is not set")
	}

	stores, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	sweeper := notify.NewSweeper(stores.Guests, dispatcher, cfg.Notifications.BatchSize)

	if once {
		sent, err := sweeper.Sweep(ctx)
		log.Info().Int("notified", sent).Msg("sweep finished")
		return err
	}

	interval := cfg.Notifications.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	sweeper.Run(ctx, interval)
	return nil
}
