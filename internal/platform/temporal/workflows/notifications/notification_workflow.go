package notifications

import (
	"go.temporal.io/sdk/workflow"

	notifyactivities "github.com/Apurer/canteen-orders/internal/platform/temporal/activities/notifications"
	"github.com/Apurer/canteen-orders/internal/platform/temporal/sequences"
)

const (
	// NotificationWorkflowName is the public identifier for registering the workflow.
	NotificationWorkflowName = "orders.workflows.Notify"
	// NotificationTaskQueue is the queue consumed by the worker delivering notifications.
	NotificationTaskQueue = "ORDER_NOTIFICATIONS"
)

// NotificationWorkflowInput carries one message for one chat.
type NotificationWorkflowInput struct {
	Recipient int64
	Message   string
	TraceID   string
}

// NotificationWorkflow delivers an order notification durably.
func NotificationWorkflow(ctx workflow.Context, input NotificationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("NotificationWorkflow started", withTraceID(input.TraceID, "recipient", input.Recipient)...)
	err := sequences.RunNotificationDeliverySequence(ctx, notifyactivities.DeliveryInput{
		Recipient: input.Recipient,
		Message:   input.Message,
	})
	if err != nil {
		logger.Error("NotificationWorkflow failed", withTraceID(input.TraceID, "recipient", input.Recipient, "error", err)...)
		return err
	}
	logger.Info("NotificationWorkflow completed", withTraceID(input.TraceID, "recipient", input.Recipient)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
