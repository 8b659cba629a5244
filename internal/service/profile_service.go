package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// ProfileInput holds the self-service profile fields.  Empty values
// leave the stored value untouched.
type ProfileInput struct {
	Name               string
	RegistrationNumber string
	PhoneNumber        string
}

type ProfileService struct {
	Users repository.UserStore
}

func NewProfileService(users repository.UserStore) *ProfileService {
	return &ProfileService{Users: users}
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, sess *model.Session) (model.UserProfile, error) {
	if sess == nil {
		return model.UserProfile{}, ErrUnauthenticated
	}
	u, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return model.UserProfile{}, mapNotFound(err, "User not found", "load profile")
	}
	return u.Profile(), nil
}

// Update writes the non-empty fields of in.  The registration number is
// upper-cased and must not belong to another user.
func (s *ProfileService) Update(ctx context.Context, sess *model.Session, in ProfileInput) (model.UserProfile, error) {
	if sess == nil {
		return model.UserProfile{}, ErrUnauthenticated
	}
	var upd repository.ProfileUpdate
	if v := strings.TrimSpace(in.Name); v != "" {
		upd.Name = &v
	}
	if v := strings.ToUpper(strings.TrimSpace(in.RegistrationNumber)); v != "" {
		upd.RegistrationNumber = &v
	}
	if v := strings.TrimSpace(in.PhoneNumber); v != "" {
		upd.PhoneNumber = &v
	}
	for _, f := range []struct {
		name string
		v    *string
		max  int
	}{
		{"name", upd.Name, 100},
		{"registrationNumber", upd.RegistrationNumber, 50},
		{"phoneNumber", upd.PhoneNumber, 30},
	} {
		if f.v == nil {
			continue
		}
		if err := maxLen(f.name, *f.v, f.max); err != nil {
			return model.UserProfile{}, err
		}
	}
	if err := s.Users.UpdateProfile(ctx, sess.UserID, upd); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.UserProfile{}, newError(ErrConflict, "Registration number already taken")
		}
		return model.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}
	return s.Get(ctx, sess)
}
