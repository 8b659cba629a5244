package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/queue"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// InterestResult tells whether Record stored a new interest.  Created is
// false when the caller had already shown interest in the request.
type InterestResult struct {
	Created bool
}

// InterestService records interests and notifies request owners.
type InterestService struct {
	Requests  repository.RequestStore
	Interests repository.InterestStore
	Events    EventPublisher
}

func NewInterestService(requests repository.RequestStore, interests repository.InterestStore, events EventPublisher) *InterestService {
	return &InterestService{Requests: requests, Interests: interests, Events: orNop(events)}
}

// Record stores the caller's interest in requestID and notifies the
// owner.  Repeated calls are idempotent: no second interest or
// notification is created.
func (s *InterestService) Record(ctx context.Context, sess *model.Session, requestID string) (InterestResult, error) {
	if sess == nil {
		return InterestResult{}, ErrUnauthenticated
	}
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return InterestResult{}, mapNotFound(err, "Request not found", "load request")
	}
	if req.UserID == sess.UserID {
		return InterestResult{}, newError(ErrInvalidOperation, "Cannot show interest in your own request")
	}
	exists, err := s.Interests.Exists(ctx, sess.UserID, requestID)
	if err != nil {
		return InterestResult{}, fmt.Errorf("check interest: %w", err)
	}
	if exists {
		return InterestResult{Created: false}, nil
	}

	name := sess.DisplayName("Someone")
	actor := sess.UserID
	interest := &model.Interest{UserID: sess.UserID, RequestID: requestID}
	note := &model.Notification{
		UserID:       req.UserID,
		Type:         model.NotificationTypeInterest,
		Message:      name + " showed interest in your request",
		RequestID:    &req.ID,
		InterestedBy: &actor,
	}
	if err := s.Interests.CreateWithNotification(ctx, interest, note); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return InterestResult{Created: false}, nil
		}
		return InterestResult{}, fmt.Errorf("record interest: %w", err)
	}

	ev := queue.InterestRecordedEvent{
		InterestID:     interest.ID,
		RequestID:      req.ID,
		OwnerID:        req.UserID,
		InterestedBy:   sess.UserID,
		InterestedName: name,
		CurrentHostel:  req.CurrentHostel,
		DesiredHostel:  req.DesiredHostel,
		RecordedAt:     interest.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.Events.PublishInterestRecorded(ctx, ev); err != nil {
		logger.Warn("publish interest event failed", slog.String("request_id", req.ID), slog.Any("err", err))
	}
	return InterestResult{Created: true}, nil
}
