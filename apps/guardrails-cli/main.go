package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SecureAI-Team/aiguardrails/apps/guardrails-cli/internal/cli"
	"github.com/SecureAI-Team/aiguardrails/internal/observability/tracing"
)

const serviceName = "aiguardrails-cli"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := tracing.Init(ctx, serviceName)
	if err != nil {
		slog.Warn("tracing disabled", slog.Any("error", err))
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", slog.Any("error", err))
		}
	}()

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
