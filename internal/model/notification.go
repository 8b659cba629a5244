package model

import "time"

// NotificationTypeInterest marks a notification created when someone
// shows interest in the recipient's request.
const NotificationTypeInterest = "interest"

// Notification is an in-app message for a single recipient.  It is only
// ever mutated by marking it read.
type Notification struct {
	ID           string    `json:"id"`           // notifications.id
	UserID       string    `json:"userId"`       // notifications.user_id (recipient)
	Type         string    `json:"type"`         // notifications.type
	Message      string    `json:"message"`      // notifications.message
	RequestID    *string   `json:"requestId"`    // notifications.request_id (nullable)
	InterestedBy *string   `json:"interestedBy"` // notifications.interested_by (nullable)
	IsRead       bool      `json:"isRead"`       // notifications.is_read
	CreatedAt    time.Time `json:"createdAt"`    // notifications.created_at
}

// Feedback statuses.
const (
	FeedbackStatusNew      = "new"
	FeedbackStatusRead     = "read"
	FeedbackStatusResolved = "resolved"
)

// ValidFeedbackStatus reports whether s is one of the accepted statuses.
func ValidFeedbackStatus(s string) bool {
	switch s {
	case FeedbackStatusNew, FeedbackStatusRead, FeedbackStatusResolved:
		return true
	}
	return false
}

// Feedback is a message from a user to the administrators.
type Feedback struct {
	ID        string    `json:"id"`        // feedback.id
	UserID    string    `json:"userId"`    // feedback.user_id
	Subject   string    `json:"subject"`   // feedback.subject
	Message   string    `json:"message"`   // feedback.message
	Status    string    `json:"status"`    // feedback.status
	CreatedAt time.Time `json:"createdAt"` // feedback.created_at
}

// FeedbackAuthor is the author projection attached to listed feedback.
type FeedbackAuthor struct {
	Name               *string `json:"name"`
	Email              *string `json:"email"`
	RegistrationNumber *string `json:"registrationNumber"`
}

// FeedbackWithAuthor joins feedback with its author projection.
type FeedbackWithAuthor struct {
	Feedback
	User FeedbackAuthor `json:"user"`
}
