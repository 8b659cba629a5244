package model

import "time"

// Session is the authenticated identity of the caller for one HTTP
// request.  It is rebuilt from the users table on every request so that
// admin rights and moderation state are never taken from token claims.
type Session struct {
	UserID             string
	Name               *string
	RegistrationNumber *string
	PhoneNumber        *string
	IsAdmin            bool
	IsBanned           bool
	TimeoutUntil       *time.Time
}

// NewSession builds a session from a freshly loaded user row.
func NewSession(u User) *Session {
	return &Session{
		UserID:             u.ID,
		Name:               u.Name,
		RegistrationNumber: u.RegistrationNumber,
		PhoneNumber:        u.PhoneNumber,
		IsAdmin:            u.IsAdmin,
		IsBanned:           u.IsBanned,
		TimeoutUntil:       u.TimeoutUntil,
	}
}

// DisplayName returns the session user's name or fallback.
func (s *Session) DisplayName(fallback string) string {
	if s == nil || s.Name == nil || *s.Name == "" {
		return fallback
	}
	return *s.Name
}
