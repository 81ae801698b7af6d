package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	notifyworkflows "github.com/Apurer/canteen-orders/internal/platform/temporal/workflows/notifications"
)

type capturedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakePublisher struct {
	published []capturedPublish
	err       error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.published = append(p.published, capturedPublish{exchange: exchange, key: key, msg: msg})
	return p.err
}

func TestAMQPNotifier_PublishesPersistentJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := newAMQPNotifier(pub, NotificationQueue)
	fixed := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	require.NoError(t, n.Notify(context.Background(), 42, "New order #3"))

	require.Len(t, pub.published, 1)
	got := pub.published[0]
	require.Equal(t, "", got.exchange)
	require.Equal(t, NotificationQueue, got.key)
	require.Equal(t, uint8(amqp.Persistent), got.msg.DeliveryMode)
	require.Equal(t, "application/json", got.msg.ContentType)

	var body Message
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	require.Equal(t, int64(42), body.Recipient)
	require.Equal(t, "New order #3", body.Text)
	require.True(t, fixed.Equal(body.CreatedAt))
	_, err := uuid.Parse(body.ID)
	require.NoError(t, err)
}

func TestAMQPNotifier_ReturnsPublishError(t *testing.T) {
	n := newAMQPNotifier(&fakePublisher{err: errors.New("channel closed")}, NotificationQueue)
	require.Error(t, n.Notify(context.Background(), 1, "x"))
}

type fakeStarter struct {
	options  client.StartWorkflowOptions
	workflow interface{}
	args     []interface{}
}

func (s *fakeStarter) ExecuteWorkflow(_ context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error) {
	s.options = options
	s.workflow = workflow
	s.args = args
	return nil, nil
}

func TestTemporalNotifier_StartsWorkflowOnTaskQueue(t *testing.T) {
	starter := &fakeStarter{}
	n := &TemporalNotifier{client: starter, taskQueue: notifyworkflows.NotificationTaskQueue}

	require.NoError(t, n.Notify(context.Background(), 7, "Your order #1 is now confirmed"))

	require.Equal(t, notifyworkflows.NotificationTaskQueue, starter.options.TaskQueue)
	require.Equal(t, notifyworkflows.NotificationWorkflowName, starter.workflow)
	require.Contains(t, starter.options.ID, "order-notification-7-")
	require.Equal(t, []interface{}{notifyworkflows.NotificationWorkflowInput{Recipient: 7, Message: "Your order #1 is now confirmed"}}, starter.args)
}
