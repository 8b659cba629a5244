// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Each event type has its own durable queue on the
// default exchange; the routing key is the queue name.
const (
	InterestRecordedQueue = "interest.recorded"
	UserModeratedQueue    = "user.moderated"
)

// InterestRecordedEvent is published after a user shows interest in a
// swap request and the owner's notification has been stored.  It
// carries enough context for consumers to log or notify without
// querying the primary database.
type InterestRecordedEvent struct {
	InterestID     string `json:"interest_id"`
	RequestID      string `json:"request_id"`
	OwnerID        string `json:"owner_id"`
	InterestedBy   string `json:"interested_by"`
	InterestedName string `json:"interested_name"`
	CurrentHostel  string `json:"current_hostel"`
	DesiredHostel  string `json:"desired_hostel"`
	RecordedAt     string `json:"recorded_at"`
}

// UserModeratedEvent is published when an admin bans, unbans, times
// out, un-times-out or deletes a user.
type UserModeratedEvent struct {
	UserID       string `json:"user_id"`
	AdminID      string `json:"admin_id"`
	Action       string `json:"action"`
	TimeoutUntil string `json:"timeout_until,omitempty"`
	ModeratedAt  string `json:"moderated_at"`
}
