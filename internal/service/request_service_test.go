package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository/mock"
	"github.com/shiftbuddy/hostel-swap/internal/service"
)

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	_, sess := completeUser(m, "Alice", "CS101")

	in := validInput()
	in.CurrentBlock = "  A  "
	in.CurrentRoom = "   "
	in.Message = " swap please "
	item, err := svc.Create(ctx, sess, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Status != model.RequestStatusOpen || item.UserID != sess.UserID {
		t.Fatalf("unexpected item: %+v", item.Request)
	}
	if item.Seater != 2 || item.RoomType != model.RoomTypeAC {
		t.Fatalf("unexpected room fields: %+v", item.Request)
	}
	if item.CurrentBlock == nil || *item.CurrentBlock != "A" {
		t.Fatalf("block not trimmed: %v", item.CurrentBlock)
	}
	if item.CurrentRoom != nil {
		t.Fatalf("blank room should be nil, got %q", *item.CurrentRoom)
	}
	if item.Message == nil || *item.Message != "swap please" {
		t.Fatalf("message not trimmed: %v", item.Message)
	}
	if item.User.Name == nil || *item.User.Name != "Alice" || item.User.Email != nil {
		t.Fatalf("unexpected owner projection: %+v", item.User)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*service.RequestInput)
		wantMsg string
	}{
		{"non numeric seater", func(in *service.RequestInput) { in.Seater = "abc" }, "whole number"},
		{"seater out of range", func(in *service.RequestInput) { in.Seater = "6" }, "between 1 and 5"},
		{"missing seater", func(in *service.RequestInput) { in.Seater = "" }, "Room type and seater are required"},
		{"missing room type", func(in *service.RequestInput) { in.RoomType = " " }, "Room type and seater are required"},
		{"unknown room type", func(in *service.RequestInput) { in.RoomType = "Deluxe" }, "roomType must be"},
		{"missing current hostel", func(in *service.RequestInput) { in.CurrentHostel = "" }, "currentHostel and desiredHostel are required"},
		{"missing desired hostel", func(in *service.RequestInput) { in.DesiredHostel = "  " }, "currentHostel and desiredHostel are required"},
		{"hostel too long", func(in *service.RequestInput) { in.CurrentHostel = strings.Repeat("h", 101) }, "currentHostel must be at most 100"},
		{"room too long", func(in *service.RequestInput) { in.DesiredRoom = strings.Repeat("é", 51) }, "desiredRoom must be at most 50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.NewMocks()
			svc := service.NewRequestService(m.Requests)
			_, sess := completeUser(m, "Alice", "CS101")
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(ctx, sess, in)
			wantKind(t, err, service.ErrValidation)
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("message %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCreateRequestNormalisesRoomType(t *testing.T) {
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	_, sess := completeUser(m, "Alice", "CS101")
	in := validInput()
	in.RoomType = "non-ac"

	item, err := svc.Create(context.Background(), sess, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.RoomType != model.RoomTypeNonAC {
		t.Fatalf("expected %q, got %q", model.RoomTypeNonAC, item.RoomType)
	}
}

func TestCreateRequestProfileIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		reg     *string
		phone   *string
		wantMsg string
	}{
		{"both missing", nil, nil, "registration number and phone number"},
		{"registration missing", nil, strPtr("9000000000"), "with registration number before"},
		{"phone missing", strPtr("CS101"), nil, "with phone number before"},
		{"blank phone", strPtr("CS101"), strPtr("  "), "with phone number before"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.NewMocks()
			svc := service.NewRequestService(m.Requests)
			u := m.AddUser(model.User{RegistrationNumber: tt.reg, PhoneNumber: tt.phone})

			_, err := svc.Create(context.Background(), model.NewSession(u), validInput())
			wantKind(t, err, service.ErrPreconditionFailed)
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("message %q does not name %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCreateRequestUnauthenticated(t *testing.T) {
	svc := service.NewRequestService(mock.NewMocks().Requests)
	_, err := svc.Create(context.Background(), nil, validInput())
	wantKind(t, err, service.ErrUnauthenticated)
}

func TestOpenRequestLimit(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	_, sess := completeUser(m, "Alice", "CS101")

	for i := 0; i < model.MaxOpenRequests; i++ {
		if _, err := svc.Create(ctx, sess, validInput()); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	_, err := svc.Create(ctx, sess, validInput())
	wantKind(t, err, service.ErrLimitExceeded)

	n, _ := m.Requests.CountOpenByUser(ctx, sess.UserID)
	if n != model.MaxOpenRequests {
		t.Fatalf("expected %d open requests, got %d", model.MaxOpenRequests, n)
	}
}

func TestOpenRequestLimitConcurrent(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	_, sess := completeUser(m, "Alice", "CS101")

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Create(ctx, sess, validInput())
		}()
	}
	wg.Wait()

	n, _ := m.Requests.CountOpenByUser(ctx, sess.UserID)
	if n > model.MaxOpenRequests {
		t.Fatalf("limit exceeded under concurrency: %d open requests", n)
	}
}

func TestListOpenIsNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	owner, _ := completeUser(m, "Alice", "CS101")

	var last model.Request
	for i := 0; i < service.FeedLimit+5; i++ {
		last = m.AddRequest(model.Request{UserID: owner.ID, CurrentHostel: "A", DesiredHostel: "B", RoomType: "AC", Seater: 1})
	}
	items, err := svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != service.FeedLimit {
		t.Fatalf("expected %d items, got %d", service.FeedLimit, len(items))
	}
	if items[0].ID != last.ID {
		t.Fatalf("expected newest request first")
	}
	if items[0].User.PhoneNumber == nil || items[0].User.Email != nil {
		t.Fatalf("unexpected feed owner projection: %+v", items[0].User)
	}
}

func TestUpdateAndDeleteAuthorization(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string // owner, other or admin
		wantErr error
	}{
		{"owner", "owner", nil},
		{"admin on someone else's request", "admin", nil},
		{"other user", "other", service.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.NewMocks()
			svc := service.NewRequestService(m.Requests)
			owner, ownerSess := completeUser(m, "Alice", "CS101")
			_, otherSess := completeUser(m, "Bob", "CS102")
			_, adminSess := adminUser(m)
			sessions := map[string]*model.Session{"owner": ownerSess, "other": otherSess, "admin": adminSess}

			req := m.AddRequest(model.Request{UserID: owner.ID, CurrentHostel: "A", DesiredHostel: "B", RoomType: "AC", Seater: 2})

			updated, err := svc.Update(ctx, sessions[tt.actor], req.ID, service.RequestPatch{Message: strPtr(" hi ")})
			if tt.wantErr != nil {
				wantKind(t, err, tt.wantErr)
			} else if err != nil {
				t.Fatalf("update: %v", err)
			} else if updated.Message == nil || *updated.Message != "hi" {
				t.Fatalf("message not updated: %v", updated.Message)
			}

			err = svc.Delete(ctx, sessions[tt.actor], req.ID)
			if tt.wantErr != nil {
				wantKind(t, err, tt.wantErr)
				if _, err := m.Requests.GetByID(ctx, req.ID); err != nil {
					t.Fatalf("request should survive forbidden delete: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := m.Requests.GetByID(ctx, req.ID); err == nil {
				t.Fatal("request still present after delete")
			}
		})
	}
}

func TestUpdateRequestPatchSemantics(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	owner, sess := completeUser(m, "Alice", "CS101")
	req := m.AddRequest(model.Request{
		UserID: owner.ID, CurrentHostel: "A", DesiredHostel: "B", RoomType: "AC", Seater: 2,
		CurrentBlock: strPtr("X"), DesiredRoom: strPtr("101"), Message: strPtr("keep"),
	})

	item, err := svc.Update(ctx, sess, req.ID, service.RequestPatch{
		CurrentBlock: strPtr(""),
		Seater:       strPtr("3"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item.CurrentBlock != nil {
		t.Fatalf("empty optional should clear, got %q", *item.CurrentBlock)
	}
	if item.DesiredRoom == nil || *item.DesiredRoom != "101" || item.Message == nil || *item.Message != "keep" {
		t.Fatalf("omitted fields should be kept: %+v", item.Request)
	}
	if item.Seater != 3 || item.CurrentHostel != "A" {
		t.Fatalf("unexpected item: %+v", item.Request)
	}

	_, err = svc.Update(ctx, sess, req.ID, service.RequestPatch{CurrentHostel: strPtr(" ")})
	wantKind(t, err, service.ErrValidation)
	_, err = svc.Update(ctx, sess, req.ID, service.RequestPatch{Seater: strPtr("abc")})
	wantKind(t, err, service.ErrValidation)
	_, err = svc.Update(ctx, sess, "missing", service.RequestPatch{})
	wantKind(t, err, service.ErrNotFound)
}

func TestListMine(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	alice, aliceSess := completeUser(m, "Alice", "CS101")
	bob, _ := completeUser(m, "Bob", "CS102")
	m.AddRequest(model.Request{UserID: alice.ID, CurrentHostel: "A", DesiredHostel: "B", RoomType: "AC", Seater: 1})
	m.AddRequest(model.Request{UserID: bob.ID, CurrentHostel: "C", DesiredHostel: "D", RoomType: "AC", Seater: 1})

	items, err := svc.ListMine(ctx, aliceSess)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(items) != 1 || items[0].UserID != alice.ID {
		t.Fatalf("unexpected items: %+v", items)
	}
	_, err = svc.ListMine(ctx, nil)
	wantKind(t, err, service.ErrUnauthenticated)
}

func TestUpdateRequestRejectsOverlongFields(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewRequestService(m.Requests)
	_, sess := completeUser(m, "Alice", "CS101")
	item, err := svc.Create(ctx, sess, validInput())
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, sess, item.ID, service.RequestPatch{CurrentBlock: strPtr(strings.Repeat("b", 51))})
	wantKind(t, err, service.ErrValidation)

	// a value at the limit is accepted
	got, err := svc.Update(ctx, sess, item.ID, service.RequestPatch{CurrentBlock: strPtr(strings.Repeat("b", 50))})
	if err != nil || got.CurrentBlock == nil || len(*got.CurrentBlock) != 50 {
		t.Fatalf("update at limit: %+v %v", got.Request, err)
	}
}
