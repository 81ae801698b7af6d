package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/canteen-orders/internal/app/api"
	ordernotify "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/notify"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/canteen-orders/internal/platform/observability"
	notifyactivities "github.com/Apurer/canteen-orders/internal/platform/temporal/activities/notifications"
	notifyworkflows "github.com/Apurer/canteen-orders/internal/platform/temporal/workflows/notifications"
)

func main() {
	ctx := context.Background()
	const serviceName = "canteen-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	sink, closeSink := buildSink(cfg.RabbitMQURL, logger)
	defer closeSink()
	activities := notifyactivities.NewActivities(sink)

	// The worker always needs Temporal, even when the API logs notifications.
	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, notifyworkflows.NotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(notifyworkflows.NotificationWorkflow, workflow.RegisterOptions{Name: notifyworkflows.NotificationWorkflowName})
	w.RegisterActivityWithOptions(activities.DeliverNotification, activity.RegisterOptions{Name: notifyactivities.DeliverNotificationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", notifyworkflows.NotificationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// buildSink hands delivered notifications to RabbitMQ for the chat layer, or
// logs them when no broker is configured.
func buildSink(url string, logger *slog.Logger) (orderports.Notifier, func()) {
	if url == "" {
		logger.Warn("RABBITMQ_URL not set, worker logs notifications")
		return ordernotify.NewLogNotifier(logger), func() {}
	}
	n, err := ordernotify.DialAMQP(url)
	if err != nil {
		logger.Warn("worker failed to reach rabbitmq (logging instead)", slog.String("error", err.Error()))
		return ordernotify.NewLogNotifier(logger), func() {}
	}
	return n, func() { _ = n.Close() }
}
