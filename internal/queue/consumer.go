package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer listens to the event queues and appends one line per event
// to an audit log file.
type Consumer struct {
	URL     string
	LogPath string
}

// NewConsumer returns a consumer writing to logDir/events.log.
func NewConsumer(url, logDir string) *Consumer {
	return &Consumer{URL: url, LogPath: filepath.Join(logDir, "events.log")}
}

// Run connects to RabbitMQ, declares both event queues (durable) and
// consumes them until ctx is cancelled.  Connection failures are retried
// with exponential backoff; a message that cannot be handled is
// rejected without requeue so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logger.Warn("event-consumer: failed to dial broker", slog.Any("err", err), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("event-consumer: consume loop ended; reconnecting", slog.Any("err", err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("event-consumer: set QoS failed", slog.Any("err", err))
	}

	interest, err := c.subscribe(ch, InterestRecordedQueue)
	if err != nil {
		return err
	}
	moderated, err := c.subscribe(ch, UserModeratedQueue)
	if err != nil {
		return err
	}

	for {
		var (
			d     amqp.Delivery
			ok    bool
			queue string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-interest:
			queue = InterestRecordedQueue
		case d, ok = <-moderated:
			queue = UserModeratedQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.handleMessage(queue, d.Body); err != nil {
			logger.Error("event-consumer: handle message failed", slog.String("queue", queue), slog.Any("err", err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

func (c *Consumer) subscribe(ch *amqp.Channel, queueName string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queueName, err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queueName, err)
	}
	return msgs, nil
}

func (c *Consumer) handleMessage(queueName string, body []byte) error {
	line, err := FormatEvent(queueName, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders a message body from queueName as a single
// human-friendly log line terminated by a newline.
func FormatEvent(queueName string, body []byte) (string, error) {
	switch queueName {
	case InterestRecordedQueue:
		var ev InterestRecordedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Interest recorded | interest_id=%s | request_id=%s | owner_id=%s | interested_by=%s | name=%q | from=%q | to=%q\n",
			ev.RecordedAt, ev.InterestID, ev.RequestID, ev.OwnerID, ev.InterestedBy, ev.InterestedName, ev.CurrentHostel, ev.DesiredHostel), nil
	case UserModeratedQueue:
		var ev UserModeratedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		until := "-"
		if ev.TimeoutUntil != "" {
			until = ev.TimeoutUntil
		}
		return fmt.Sprintf("[%s] User moderated | user_id=%s | admin_id=%s | action=%s | timeout_until=%s\n",
			ev.ModeratedAt, ev.UserID, ev.AdminID, ev.Action, until), nil
	default:
		return "", fmt.Errorf("unknown queue %q", queueName)
	}
}
