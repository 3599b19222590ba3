package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"tokenlens/internal/config"
)

// Run assembles the container, starts it, waits for the signal and stops
func Run(cfg *config.Config) error {
	ctxBuild, cancelBuild := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBuild()

	container, cleanup := Build(ctxBuild, cfg)
	defer cleanup()

	if err := container.Start(); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	return container.Stop()
}
