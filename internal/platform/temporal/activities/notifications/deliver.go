package notifications

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

// DeliverNotificationActivityName hands one message to the configured sink.
const DeliverNotificationActivityName = "orders.activities.DeliverNotification"

// DeliveryInput is one message for one chat.
type DeliveryInput struct {
	Recipient int64
	Message   string
}

// Activities delivers order notifications on behalf of the workflow.
type Activities struct {
	sink orderports.Notifier
}

func NewActivities(sink orderports.Notifier) *Activities {
	return &Activities{sink: sink}
}

// DeliverNotification forwards the message. A heartbeat marks completion so a
// retried attempt after a lost ack does not deliver twice.
func (a *Activities) DeliverNotification(ctx context.Context, input DeliveryInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.sink == nil {
		logger.Error("notification activity not initialized", "recipient", input.Recipient)
		return errors.New("notification activity not initialized")
	}

	var hb deliveryHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Delivered {
		logger.Info("DeliverNotification already completed in prior attempt; skipping", "recipient", input.Recipient)
		return nil
	}

	logger.Info("DeliverNotification activity started", "recipient", input.Recipient)
	if err := a.sink.Notify(ctx, input.Recipient, input.Message); err != nil {
		logger.Error("DeliverNotification failed", "recipient", input.Recipient, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, deliveryHeartbeat{Delivered: true})
	logger.Info("DeliverNotification activity completed", "recipient", input.Recipient)
	return nil
}

type deliveryHeartbeat struct {
	Delivered bool
}
