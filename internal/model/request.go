package model

import "time"

// Request statuses.  Only RequestStatusOpen is ever written; the column
// is kept so the public feed can filter on it.
const (
	RequestStatusOpen = "open"
)

// Room types accepted for a swap request.
const (
	RoomTypeAC    = "AC"
	RoomTypeNonAC = "Non-AC"
)

// MaxOpenRequests is the number of open requests a single user may own.
const MaxOpenRequests = 2

// Request is a hostel room-swap request as stored in the `requests`
// table.  The owner describes where they live now and where they want
// to move; block, floor and room are optional on both sides.
type Request struct {
	ID            string    `json:"id"`            // requests.id
	UserID        string    `json:"userId"`        // requests.user_id
	CurrentHostel string    `json:"currentHostel"` // requests.current_hostel
	CurrentBlock  *string   `json:"currentBlock"`  // requests.current_block (nullable)
	CurrentFloor  *string   `json:"currentFloor"`  // requests.current_floor (nullable)
	CurrentRoom   *string   `json:"currentRoom"`   // requests.current_room (nullable)
	DesiredHostel string    `json:"desiredHostel"` // requests.desired_hostel
	DesiredBlock  *string   `json:"desiredBlock"`  // requests.desired_block (nullable)
	DesiredFloor  *string   `json:"desiredFloor"`  // requests.desired_floor (nullable)
	DesiredRoom   *string   `json:"desiredRoom"`   // requests.desired_room (nullable)
	RoomType      string    `json:"roomType"`      // requests.room_type
	Seater        int       `json:"seater"`        // requests.seater
	Message       *string   `json:"message"`       // requests.message (nullable)
	Status        string    `json:"status"`        // requests.status
	CreatedAt     time.Time `json:"createdAt"`     // requests.created_at
}

// RequestOwner is the minimal projection of a request's owner that is
// safe to show next to a request.  Email is only filled for admins.
type RequestOwner struct {
	ID                 string  `json:"id,omitempty"`
	Name               *string `json:"name"`
	Email              *string `json:"email,omitempty"`
	RegistrationNumber *string `json:"registrationNumber"`
	PhoneNumber        *string `json:"phoneNumber,omitempty"`
}

// RequestWithOwner is a request joined with its owner projection.
type RequestWithOwner struct {
	Request
	User RequestOwner `json:"user"`
}

// Interest records that a user wants to swap with a specific request.
// (user_id, request_id) is unique.
type Interest struct {
	ID        string    `json:"id"`        // interests.id
	UserID    string    `json:"userId"`    // interests.user_id
	RequestID string    `json:"requestId"` // interests.request_id
	CreatedAt time.Time `json:"createdAt"` // interests.created_at
}
