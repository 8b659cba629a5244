package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

type FeedbackService struct {
	Feedback repository.FeedbackStore
}

func NewFeedbackService(f repository.FeedbackStore) *FeedbackService {
	return &FeedbackService{Feedback: f}
}

// Create stores feedback from the caller with status "new".
func (s *FeedbackService) Create(ctx context.Context, sess *model.Session, subject, message string) (model.Feedback, error) {
	if sess == nil {
		return model.Feedback{}, ErrUnauthenticated
	}
	subject, message = strings.TrimSpace(subject), strings.TrimSpace(message)
	if subject == "" || message == "" {
		return model.Feedback{}, newError(ErrValidation, "Subject and message are required")
	}
	if err := maxLen("subject", subject, 200); err != nil {
		return model.Feedback{}, err
	}
	f := &model.Feedback{
		UserID:  sess.UserID,
		Subject: subject,
		Message: message,
		Status:  model.FeedbackStatusNew,
	}
	if err := s.Feedback.Create(ctx, f); err != nil {
		return model.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return *f, nil
}

// List returns all feedback for admins and the caller's own otherwise.
func (s *FeedbackService) List(ctx context.Context, sess *model.Session) ([]model.FeedbackWithAuthor, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	owner := sess.UserID
	if sess.IsAdmin {
		owner = ""
	}
	items, err := s.Feedback.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// SetStatus moves feedback to one of new, read or resolved.
func (s *FeedbackService) SetStatus(ctx context.Context, sess *model.Session, id, status string) (model.Feedback, error) {
	if err := requireAdmin(sess); err != nil {
		return model.Feedback{}, err
	}
	if !model.ValidFeedbackStatus(status) {
		return model.Feedback{}, newError(ErrValidation, "Invalid status")
	}
	if err := s.Feedback.UpdateStatus(ctx, id, status); err != nil {
		return model.Feedback{}, mapNotFound(err, "Feedback not found", "update feedback")
	}
	f, err := s.Feedback.GetByID(ctx, id)
	if err != nil {
		return model.Feedback{}, mapNotFound(err, "Feedback not found", "load feedback")
	}
	return f, nil
}

// Delete removes feedback.
func (s *FeedbackService) Delete(ctx context.Context, sess *model.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.Feedback.Delete(ctx, id); err != nil {
		return mapNotFound(err, "Feedback not found", "delete feedback")
	}
	return nil
}
