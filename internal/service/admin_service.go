package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/queue"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// Moderation actions accepted by ModerateUser.
const (
	ActionBan           = "ban"
	ActionUnban         = "unban"
	ActionTimeout       = "timeout"
	ActionRemoveTimeout = "removeTimeout"
	actionDelete        = "delete"
)

// Dashboard is the admin overview of every user and request.
type Dashboard struct {
	Users    []model.User             `json:"users"`
	Requests []model.RequestWithOwner `json:"requests"`
}

// AdminService implements the moderation operations.  Every method
// requires an admin session.
type AdminService struct {
	Users    repository.UserStore
	Requests repository.RequestStore
	Events   EventPublisher
	// Now is the clock used for timeouts.
	Now func() time.Time
}

func NewAdminService(users repository.UserStore, requests repository.RequestStore, events EventPublisher) *AdminService {
	return &AdminService{Users: users, Requests: requests, Events: orNop(events), Now: time.Now}
}

func requireAdmin(sess *model.Session) error {
	if sess == nil || !sess.IsAdmin {
		return newError(ErrUnauthorized, "Unauthorized")
	}
	return nil
}

// Dashboard lists all users and all requests, newest first.
func (s *AdminService) Dashboard(ctx context.Context, sess *model.Session) (Dashboard, error) {
	if err := requireAdmin(sess); err != nil {
		return Dashboard{}, err
	}
	users, err := s.Users.ListAll(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list users: %w", err)
	}
	requests, err := s.Requests.ListAllWithOwner(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list requests: %w", err)
	}
	return Dashboard{Users: users, Requests: requests}, nil
}

// ModerateUser applies action to targetID.  timeoutMinutes is only read
// for the timeout action.
func (s *AdminService) ModerateUser(ctx context.Context, sess *model.Session, targetID, action string, timeoutMinutes int) (model.User, error) {
	if err := requireAdmin(sess); err != nil {
		return model.User{}, err
	}
	if targetID == sess.UserID {
		return model.User{}, newError(ErrInvalidOperation, "Cannot modify your own account")
	}

	var upd repository.ModerationUpdate
	switch action {
	case ActionBan:
		upd.IsBanned = boolPtr(true)
	case ActionUnban:
		upd.IsBanned = boolPtr(false)
	case ActionTimeout:
		if timeoutMinutes <= 0 {
			return model.User{}, newError(ErrValidation, "Timeout duration required")
		}
		until := s.Now().UTC().Add(time.Duration(timeoutMinutes) * time.Minute).Truncate(time.Second)
		upd.IsBanned = boolPtr(false)
		upd.TimeoutUntil = &until
	case ActionRemoveTimeout:
	default:
		return model.User{}, newError(ErrValidation, "Invalid action")
	}

	if err := s.Users.SetModeration(ctx, targetID, upd); err != nil {
		return model.User{}, mapNotFound(err, "User not found", "moderate user")
	}
	u, err := s.Users.GetByID(ctx, targetID)
	if err != nil {
		return model.User{}, mapNotFound(err, "User not found", "load user")
	}
	s.publish(ctx, sess, targetID, action, upd.TimeoutUntil)
	return u, nil
}

// DeleteUser removes targetID and everything they own.
func (s *AdminService) DeleteUser(ctx context.Context, sess *model.Session, targetID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if targetID == sess.UserID {
		return newError(ErrInvalidOperation, "Cannot delete your own account")
	}
	if err := s.Users.Delete(ctx, targetID); err != nil {
		return mapNotFound(err, "User not found", "delete user")
	}
	s.publish(ctx, sess, targetID, actionDelete, nil)
	return nil
}

// UpdateRequest replaces the editable fields of any request.  Omitted
// optional fields are cleared; omitted hostels, room type and seater
// keep their values.
func (s *AdminService) UpdateRequest(ctx context.Context, sess *model.Session, id string, patch RequestPatch) (model.RequestWithOwner, error) {
	if err := requireAdmin(sess); err != nil {
		return model.RequestWithOwner{}, err
	}
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return model.RequestWithOwner{}, mapNotFound(err, "Request not found", "load request")
	}
	if err := applyPatch(&req, patch, true); err != nil {
		return model.RequestWithOwner{}, err
	}
	if err := s.Requests.Update(ctx, &req); err != nil {
		return model.RequestWithOwner{}, mapNotFound(err, "Request not found", "update request")
	}
	item, err := s.Requests.GetWithOwner(ctx, id)
	if err != nil {
		return model.RequestWithOwner{}, mapNotFound(err, "Request not found", "load request")
	}
	return item, nil
}

// DeleteRequest removes any request without an ownership check.
func (s *AdminService) DeleteRequest(ctx context.Context, sess *model.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.Requests.Delete(ctx, id); err != nil {
		return mapNotFound(err, "Request not found", "delete request")
	}
	return nil
}

func (s *AdminService) publish(ctx context.Context, sess *model.Session, targetID, action string, until *time.Time) {
	ev := queue.UserModeratedEvent{
		UserID:      targetID,
		AdminID:     sess.UserID,
		Action:      action,
		ModeratedAt: s.Now().UTC().Format(time.RFC3339),
	}
	if until != nil {
		ev.TimeoutUntil = until.Format(time.RFC3339)
	}
	if err := s.Events.PublishUserModerated(ctx, ev); err != nil {
		logger.Warn("publish moderation event failed", slog.String("user_id", targetID), slog.Any("err", err))
	}
}

func boolPtr(b bool) *bool { return &b }
