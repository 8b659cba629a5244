package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/shiftbuddy/hostel-swap/internal/queue"
)

// package-level logger used for best-effort side effects; set via SetLogger.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the service package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// EventPublisher sends domain events to the message broker.
// *queue.Publisher implements it.
type EventPublisher interface {
	PublishInterestRecorded(ctx context.Context, ev queue.InterestRecordedEvent) error
	PublishUserModerated(ctx context.Context, ev queue.UserModeratedEvent) error
}

var _ EventPublisher = (*queue.Publisher)(nil)

// nopPublisher drops every event.
type nopPublisher struct{}

func (nopPublisher) PublishInterestRecorded(context.Context, queue.InterestRecordedEvent) error {
	return nil
}

func (nopPublisher) PublishUserModerated(context.Context, queue.UserModeratedEvent) error {
	return nil
}

func orNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
