package repository

import (
	"context"
	"time"

	"github.com/shiftbuddy/hostel-swap/internal/model"
)

// Store interfaces consumed by the service layer.  The MySQL
// repositories in this package implement them; the mock package holds
// in-memory versions for tests.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByRegistrationNumber(ctx context.Context, reg string) (model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error
	SetModeration(ctx context.Context, id string, m ModerationUpdate) error
	Delete(ctx context.Context, id string) error
}

type RequestStore interface {
	ListOpen(ctx context.Context, limit int) ([]model.RequestWithOwner, error)
	ListAllWithOwner(ctx context.Context) ([]model.RequestWithOwner, error)
	ListByUser(ctx context.Context, userID string) ([]model.Request, error)
	CountOpenByUser(ctx context.Context, userID string) (int, error)
	CreateWithLimit(ctx context.Context, r *model.Request, limit int) error
	GetByID(ctx context.Context, id string) (model.Request, error)
	GetWithOwner(ctx context.Context, id string) (model.RequestWithOwner, error)
	Update(ctx context.Context, r *model.Request) error
	Delete(ctx context.Context, id string) error
}

type InterestStore interface {
	Exists(ctx context.Context, userID, requestID string) (bool, error)
	CreateWithNotification(ctx context.Context, i *model.Interest, n *model.Notification) error
}

type NotificationStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, f *model.Feedback) error
	List(ctx context.Context, userID string) ([]model.FeedbackWithAuthor, error)
	GetByID(ctx context.Context, id string) (model.Feedback, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

var (
	_ UserStore         = (*UserRepo)(nil)
	_ RequestStore      = (*RequestRepo)(nil)
	_ InterestStore     = (*InterestRepo)(nil)
	_ NotificationStore = (*NotificationRepo)(nil)
	_ FeedbackStore     = (*FeedbackRepo)(nil)
	_ TokenStore        = (*TokenRepo)(nil)
)

// ProfileUpdate lists the profile columns to change.  Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name               *string
	RegistrationNumber *string
	PhoneNumber        *string
}

// Empty reports whether the update would not change anything.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.RegistrationNumber == nil && p.PhoneNumber == nil
}

// ModerationUpdate describes a moderation change.  TimeoutUntil is
// always written (nil clears it); IsBanned is only written when set.
type ModerationUpdate struct {
	IsBanned     *bool
	TimeoutUntil *time.Time
}
