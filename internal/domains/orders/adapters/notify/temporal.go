package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
	notifyworkflows "github.com/Apurer/canteen-orders/internal/platform/temporal/workflows/notifications"
)

var _ ports.Notifier = (*TemporalNotifier)(nil)

type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalNotifier starts a delivery workflow per message and returns once
// the workflow is accepted. Retries happen in the worker. Workflows are started
// by their registered name, never by function value.
type TemporalNotifier struct {
	client    workflowStarter
	taskQueue string
}

func NewTemporalNotifier(c client.Client) *TemporalNotifier {
	return &TemporalNotifier{client: c, taskQueue: notifyworkflows.NotificationTaskQueue}
}

func (n *TemporalNotifier) Notify(ctx context.Context, recipient int64, message string) error {
	if n == nil || n.client == nil {
		return errors.New("temporal notifier not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("order-notification-%d-%s", recipient, uuid.NewString()),
		TaskQueue: n.taskQueue,
	}
	_, err := n.client.ExecuteWorkflow(ctx, options, notifyworkflows.NotificationWorkflowName, notifyworkflows.NotificationWorkflowInput{
		Recipient: recipient,
		Message:   message,
		TraceID:   traceID(ctx),
	})
	return err
}

func traceID(ctx context.Context) string {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
