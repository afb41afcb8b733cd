package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidbz/markl/internal/http"
	"github.com/davidbz/markl/internal/observability"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	container, err := buildContainer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return container.Invoke(func(server *http.Server, bus *observability.EventBus) error {
		alerts, unsubscribe := bus.Subscribe(0)
		defer unsubscribe()
		go logAlerts(ctx, alerts)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	})
}

// logAlerts surfaces spend alerts until ctx ends or the subscription closes.
func logAlerts(ctx context.Context, alerts <-chan observability.Event) {
	logger := observability.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-alerts:
			if !ok {
				return
			}
			logger.Warn("spend alert",
				observability.String("alert", event.Type),
				observability.Any("data", event.Data),
				observability.Time("occurred_at", event.OccurredAt))
		}
	}
}
