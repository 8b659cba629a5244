package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// package-level logger; can be replaced via SetLogger from main.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the queue package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Publisher publishes domain events to RabbitMQ.  It dials the broker
// per publish so the HTTP server never holds a broken connection; the
// event volume of the service is small.  Errors are logged and returned
// so callers can choose to ignore them.
type Publisher struct {
	URL string
}

// NewPublisher returns a Publisher for the given AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url}
}

// PublishInterestRecorded publishes ev to the interest.recorded queue.
func (p *Publisher) PublishInterestRecorded(ctx context.Context, ev InterestRecordedEvent) error {
	return p.publish(ctx, InterestRecordedQueue, ev)
}

// PublishUserModerated publishes ev to the user.moderated queue.
func (p *Publisher) PublishUserModerated(ctx context.Context, ev UserModeratedEvent) error {
	return p.publish(ctx, UserModeratedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("rabbitmq: marshal event failed", slog.String("queue", queueName), slog.Any("err", err))
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		logger.Warn("rabbitmq: dial failed", slog.String("queue", queueName), slog.Any("err", err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("rabbitmq: channel open failed", slog.Any("err", err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		logger.Warn("rabbitmq: queue declare failed", slog.String("queue", queueName), slog.Any("err", err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		logger.Warn("rabbitmq: publish failed", slog.String("queue", queueName), slog.Any("err", err))
		return err
	}
	logger.Debug("rabbitmq: published", slog.String("queue", queueName))
	return nil
}
