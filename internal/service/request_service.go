package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// FeedLimit caps the public feed of open requests.
const FeedLimit = 50

const (
	minSeater = 1
	maxSeater = 5
)

// Column widths of the requests table, in characters.
const (
	maxHostelLen   = 100
	maxLocationLen = 50
)

// RequestInput is the raw create payload.  Seater stays a string so
// that both JSON numbers and form values go through the same parsing.
type RequestInput struct {
	CurrentHostel string
	CurrentBlock  string
	CurrentFloor  string
	CurrentRoom   string
	DesiredHostel string
	DesiredBlock  string
	DesiredFloor  string
	DesiredRoom   string
	RoomType      string
	Seater        string
	Message       string
}

// RequestPatch carries the fields of an update.  A nil field was not
// sent by the client.
type RequestPatch struct {
	CurrentHostel *string
	CurrentBlock  *string
	CurrentFloor  *string
	CurrentRoom   *string
	DesiredHostel *string
	DesiredBlock  *string
	DesiredFloor  *string
	DesiredRoom   *string
	RoomType      *string
	Seater        *string
	Message       *string
}

// RequestService implements the swap request lifecycle.
type RequestService struct {
	Requests repository.RequestStore
}

func NewRequestService(requests repository.RequestStore) *RequestService {
	return &RequestService{Requests: requests}
}

// ListOpen returns the public feed: open requests, newest first.
func (s *RequestService) ListOpen(ctx context.Context) ([]model.RequestWithOwner, error) {
	items, err := s.Requests.ListOpen(ctx, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list open requests: %w", err)
	}
	for i := range items {
		items[i].User = publicOwner(items[i].User, true)
	}
	return items, nil
}

// ListMine returns every request owned by the caller.
func (s *RequestService) ListMine(ctx context.Context, sess *model.Session) ([]model.Request, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	items, err := s.Requests.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own requests: %w", err)
	}
	return items, nil
}

// Create validates in and stores a new open request owned by the caller.
func (s *RequestService) Create(ctx context.Context, sess *model.Session, in RequestInput) (model.RequestWithOwner, error) {
	if sess == nil {
		return model.RequestWithOwner{}, ErrUnauthenticated
	}
	if err := profileComplete(sess); err != nil {
		return model.RequestWithOwner{}, err
	}
	open, err := s.Requests.CountOpenByUser(ctx, sess.UserID)
	if err != nil {
		return model.RequestWithOwner{}, fmt.Errorf("count open requests: %w", err)
	}
	if open >= model.MaxOpenRequests {
		return model.RequestWithOwner{}, errLimit
	}

	current, desired := strings.TrimSpace(in.CurrentHostel), strings.TrimSpace(in.DesiredHostel)
	if current == "" || desired == "" {
		return model.RequestWithOwner{}, newError(ErrValidation, "currentHostel and desiredHostel are required")
	}
	if strings.TrimSpace(in.RoomType) == "" || strings.TrimSpace(in.Seater) == "" {
		return model.RequestWithOwner{}, newError(ErrValidation, "Room type and seater are required")
	}
	roomType, err := parseRoomType(in.RoomType)
	if err != nil {
		return model.RequestWithOwner{}, err
	}
	seater, err := parseSeater(in.Seater)
	if err != nil {
		return model.RequestWithOwner{}, err
	}

	req := &model.Request{
		UserID:        sess.UserID,
		CurrentHostel: current,
		CurrentBlock:  optional(in.CurrentBlock),
		CurrentFloor:  optional(in.CurrentFloor),
		CurrentRoom:   optional(in.CurrentRoom),
		DesiredHostel: desired,
		DesiredBlock:  optional(in.DesiredBlock),
		DesiredFloor:  optional(in.DesiredFloor),
		DesiredRoom:   optional(in.DesiredRoom),
		RoomType:      roomType,
		Seater:        seater,
		Message:       optional(in.Message),
		Status:        model.RequestStatusOpen,
	}
	if err := checkLengths(req); err != nil {
		return model.RequestWithOwner{}, err
	}
	if err := s.Requests.CreateWithLimit(ctx, req, model.MaxOpenRequests); err != nil {
		switch {
		case errors.Is(err, repository.ErrLimitReached):
			return model.RequestWithOwner{}, errLimit
		case errors.Is(err, repository.ErrNotFound):
			return model.RequestWithOwner{}, ErrUnauthenticated
		}
		return model.RequestWithOwner{}, fmt.Errorf("create request: %w", err)
	}
	return s.withOwner(ctx, req.ID)
}

// Update applies patch to a request owned by the caller.  Admins may
// update any request through this path as well.
func (s *RequestService) Update(ctx context.Context, sess *model.Session, id string, patch RequestPatch) (model.RequestWithOwner, error) {
	req, err := s.authorize(ctx, sess, id)
	if err != nil {
		return model.RequestWithOwner{}, err
	}
	if err := applyPatch(&req, patch, false); err != nil {
		return model.RequestWithOwner{}, err
	}
	if err := s.Requests.Update(ctx, &req); err != nil {
		return model.RequestWithOwner{}, mapNotFound(err, "Request not found", "update request")
	}
	return s.withOwner(ctx, id)
}

// Delete removes a request owned by the caller (or any request for an
// admin).
func (s *RequestService) Delete(ctx context.Context, sess *model.Session, id string) error {
	if _, err := s.authorize(ctx, sess, id); err != nil {
		return err
	}
	if err := s.Requests.Delete(ctx, id); err != nil {
		return mapNotFound(err, "Request not found", "delete request")
	}
	return nil
}

func (s *RequestService) authorize(ctx context.Context, sess *model.Session, id string) (model.Request, error) {
	if sess == nil {
		return model.Request{}, ErrUnauthenticated
	}
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return model.Request{}, mapNotFound(err, "Request not found", "load request")
	}
	if req.UserID != sess.UserID && !sess.IsAdmin {
		return model.Request{}, newError(ErrForbidden, "You can only modify your own requests")
	}
	return req, nil
}

func (s *RequestService) withOwner(ctx context.Context, id string) (model.RequestWithOwner, error) {
	item, err := s.Requests.GetWithOwner(ctx, id)
	if err != nil {
		return model.RequestWithOwner{}, mapNotFound(err, "Request not found", "load request")
	}
	item.User = publicOwner(item.User, false)
	return item, nil
}

var errLimit = newError(ErrLimitExceeded,
	"You can only have %d active requests at a time. Please delete one of your existing requests before creating a new one.",
	model.MaxOpenRequests)

func profileComplete(sess *model.Session) error {
	var missing []string
	if isBlank(sess.RegistrationNumber) {
		missing = append(missing, "registration number")
	}
	if isBlank(sess.PhoneNumber) {
		missing = append(missing, "phone number")
	}
	if len(missing) == 0 {
		return nil
	}
	return newError(ErrPreconditionFailed,
		"Please complete your profile with %s before posting a request.", strings.Join(missing, " and "))
}

// applyPatch normalises patch onto req.  With replace set, omitted
// optional fields are cleared instead of kept.
func applyPatch(req *model.Request, p RequestPatch, replace bool) error {
	if p.CurrentHostel != nil {
		v := strings.TrimSpace(*p.CurrentHostel)
		if v == "" {
			return newError(ErrValidation, "currentHostel cannot be empty")
		}
		req.CurrentHostel = v
	}
	if p.DesiredHostel != nil {
		v := strings.TrimSpace(*p.DesiredHostel)
		if v == "" {
			return newError(ErrValidation, "desiredHostel cannot be empty")
		}
		req.DesiredHostel = v
	}
	if p.RoomType != nil {
		v, err := parseRoomType(*p.RoomType)
		if err != nil {
			return err
		}
		req.RoomType = v
	}
	if p.Seater != nil {
		v, err := parseSeater(*p.Seater)
		if err != nil {
			return err
		}
		req.Seater = v
	}

	opt := func(dst **string, src *string) {
		switch {
		case src != nil:
			*dst = optional(*src)
		case replace:
			*dst = nil
		}
	}
	opt(&req.CurrentBlock, p.CurrentBlock)
	opt(&req.CurrentFloor, p.CurrentFloor)
	opt(&req.CurrentRoom, p.CurrentRoom)
	opt(&req.DesiredBlock, p.DesiredBlock)
	opt(&req.DesiredFloor, p.DesiredFloor)
	opt(&req.DesiredRoom, p.DesiredRoom)
	opt(&req.Message, p.Message)
	return checkLengths(req)
}

// checkLengths rejects values that do not fit their column.
func checkLengths(req *model.Request) error {
	if err := maxLen("currentHostel", req.CurrentHostel, maxHostelLen); err != nil {
		return err
	}
	if err := maxLen("desiredHostel", req.DesiredHostel, maxHostelLen); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"currentBlock", req.CurrentBlock},
		{"currentFloor", req.CurrentFloor},
		{"currentRoom", req.CurrentRoom},
		{"desiredBlock", req.DesiredBlock},
		{"desiredFloor", req.DesiredFloor},
		{"desiredRoom", req.DesiredRoom},
	} {
		if f.v == nil {
			continue
		}
		if err := maxLen(f.name, *f.v, maxLocationLen); err != nil {
			return err
		}
	}
	return nil
}

// maxLen counts characters, not bytes, as MySQL does for VARCHAR.
func maxLen(field, v string, n int) error {
	if utf8.RuneCountInString(v) > n {
		return newError(ErrValidation, "%s must be at most %d characters", field, n)
	}
	return nil
}

func parseSeater(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, newError(ErrValidation, "seater must be a whole number")
	}
	if n < minSeater || n > maxSeater {
		return 0, newError(ErrValidation, "seater must be between %d and %d", minSeater, maxSeater)
	}
	return n, nil
}

func parseRoomType(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ac":
		return model.RoomTypeAC, nil
	case "non-ac", "nonac", "non ac":
		return model.RoomTypeNonAC, nil
	case "":
		return "", newError(ErrValidation, "Room type and seater are required")
	}
	return "", newError(ErrValidation, "roomType must be %q or %q", model.RoomTypeAC, model.RoomTypeNonAC)
}

// optional trims s and maps the empty string to nil.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// publicOwner strips the owner projection down to what other students
// may see.  Email is never included.
func publicOwner(o model.RequestOwner, withPhone bool) model.RequestOwner {
	out := model.RequestOwner{
		ID:                 o.ID,
		Name:               o.Name,
		RegistrationNumber: o.RegistrationNumber,
	}
	if withPhone {
		out.PhoneNumber = o.PhoneNumber
	}
	return out
}

// mapNotFound turns repository.ErrNotFound into a NotFound error with
// msg and wraps anything else with op.
func mapNotFound(err error, msg, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "%s", msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}
