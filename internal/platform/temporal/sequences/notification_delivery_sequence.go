package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	notifyactivities "github.com/Apurer/canteen-orders/internal/platform/temporal/activities/notifications"
)

// RunNotificationDeliverySequence delivers a message with bounded retries.
// Notifications are best-effort, so exhausting the retries ends the sequence
// with the last error instead of blocking anything upstream.
func RunNotificationDeliverySequence(ctx workflow.Context, input notifyactivities.DeliveryInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("notification delivery sequence started", "recipient", input.Recipient)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    8,
		},
	}
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), notifyactivities.DeliverNotificationActivityName, input).Get(ctx, nil)
	if err != nil {
		logger.Error("notification delivery sequence failed", "recipient", input.Recipient, "error", err)
		return err
	}
	logger.Info("notification delivery sequence delivered", "recipient", input.Recipient)
	return nil
}
