package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/devsphere/devsphere/internal/app"
	"github.com/devsphere/devsphere/internal/platform/config"
)

func main() {
	log.SetPrefix("[DEVSPHERE] ")

	cfg, err := app.LoadConfigFromEnv()
	if err != nil {
		config.Exitf("load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, log.Default()); err != nil && !errors.Is(err, context.Canceled) {
		config.Exitf("serve: %v", err)
	}
}
