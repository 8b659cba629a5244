package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// NotificationPageSize is the number of notifications List returns.
const NotificationPageSize = 20

// NotificationList is the caller's recent notifications plus the count
// of all unread ones.
type NotificationList struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unreadCount"`
}

type NotificationService struct {
	Notifications repository.NotificationStore
}

func NewNotificationService(n repository.NotificationStore) *NotificationService {
	return &NotificationService{Notifications: n}
}

// List returns the newest notifications of the caller.
func (s *NotificationService) List(ctx context.Context, sess *model.Session) (NotificationList, error) {
	if sess == nil {
		return NotificationList{}, ErrUnauthenticated
	}
	items, err := s.Notifications.ListByUser(ctx, sess.UserID, NotificationPageSize)
	if err != nil {
		return NotificationList{}, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.Notifications.CountUnread(ctx, sess.UserID)
	if err != nil {
		return NotificationList{}, fmt.Errorf("count unread: %w", err)
	}
	return NotificationList{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead marks one of the caller's notifications read.  Ids belonging
// to someone else are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, sess *model.Session, id string) error {
	if sess == nil {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(id) == "" {
		return newError(ErrValidation, "notificationId is required")
	}
	err := s.Notifications.MarkRead(ctx, id, sess.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller read.
func (s *NotificationService) MarkAllRead(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return ErrUnauthenticated
	}
	if _, err := s.Notifications.MarkAllRead(ctx, sess.UserID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}
