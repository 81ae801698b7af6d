package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

// NotificationQueue is consumed by the chat layer, which delivers each message.
const NotificationQueue = "orders.notifications"

var _ ports.Notifier = (*AMQPNotifier)(nil)

// Message is the JSON body published for every notification.
type Message struct {
	ID        string    `json:"id"`
	Recipient int64     `json:"recipient"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes notifications to a durable RabbitMQ queue.
type AMQPNotifier struct {
	mu    sync.Mutex
	ch    publisher
	queue string
	close func() error
	now   func() time.Time
}

// DialAMQP connects to the broker and declares the notification queue.
func DialAMQP(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	n := newAMQPNotifier(ch, NotificationQueue)
	n.close = func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return n, nil
}

func newAMQPNotifier(ch publisher, queue string) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, queue: queue, now: time.Now}
}

// Notify publishes a persistent message. AMQP channels are not safe for
// concurrent use, so publishes are serialized.
func (n *AMQPNotifier) Notify(ctx context.Context, recipient int64, message string) error {
	body, err := json.Marshal(Message{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Text:      message,
		CreatedAt: n.now().UTC(),
	})
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.now().UTC(),
		Body:         body,
	})
}

func (n *AMQPNotifier) Close() error {
	if n.close == nil {
		return nil
	}
	return n.close()
}
