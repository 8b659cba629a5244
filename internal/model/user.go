package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Accounts are created either by credential
// registration (PasswordHash set) or by a first external sign-in, so
// every profile field except the ID is optional.
//
// Fields:
//  ID                 – UUID primary key.
//  Name               – display name.
//  Email              – unique, lower-cased email address.
//  RegistrationNumber – unique student registration number, upper-cased.
//  PhoneNumber        – contact number shown to interested students.
//  PasswordHash       – bcrypt hash for credential accounts.
//  IsAdmin            – grants access to the moderation endpoints.
//  IsBanned           – account is blocked from all authenticated routes.
//  TimeoutUntil       – while in the future the account is read-only.
//  CreatedAt          – timestamp of creation.
type User struct {
	ID                 string     `json:"id"`                 // users.id
	Name               *string    `json:"name"`               // users.name (nullable)
	Email              *string    `json:"email"`              // users.email (nullable, unique)
	RegistrationNumber *string    `json:"registrationNumber"` // users.registration_number (nullable, unique)
	PhoneNumber        *string    `json:"phoneNumber"`        // users.phone_number (nullable)
	PasswordHash       *string    `json:"-"`                  // users.password_hash (nullable)
	IsAdmin            bool       `json:"isAdmin"`            // users.is_admin
	IsBanned           bool       `json:"isBanned"`           // users.is_banned
	TimeoutUntil       *time.Time `json:"timeoutUntil"`       // users.timeout_until (nullable)
	CreatedAt          time.Time  `json:"createdAt"`          // users.created_at
}

// TimedOut reports whether the user is inside an active timeout at now.
func (u User) TimedOut(now time.Time) bool {
	return u.TimeoutUntil != nil && u.TimeoutUntil.After(now)
}

// UserProfile is the self-service projection returned by the profile
// endpoints.
type UserProfile struct {
	ID                 string  `json:"id"`
	Name               *string `json:"name"`
	Email              *string `json:"email,omitempty"`
	RegistrationNumber *string `json:"registrationNumber"`
	PhoneNumber        *string `json:"phoneNumber"`
}

// Profile projects a user onto the fields it may read about itself.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		RegistrationNumber: u.RegistrationNumber,
		PhoneNumber:        u.PhoneNumber,
	}
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is never stored, only its SHA‑256 hex digest.
type RefreshToken struct {
	ID        string     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
