package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/safetravel/internal/drill"
	"github.com/okian/safetravel/pkg/logger"
)

const runTimeout = 5 * time.Minute

func main() {
	cfg, err := drill.ParseFlags(os.Args[0], os.Args[1:])
	if errors.Is(err, drill.ErrHelp) {
		return
	}
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if _, err := drill.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "drill failed", logger.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}
