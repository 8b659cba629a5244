package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository/mock"
	"github.com/shiftbuddy/hostel-swap/internal/service"
)

func TestAdminRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewAdminService(m.Users, m.Requests, nil)
	_, user := completeUser(m, "Asha", "CS101")

	for _, sess := range []*model.Session{nil, user} {
		_, err := svc.Dashboard(ctx, sess)
		wantKind(t, err, service.ErrUnauthorized)
		_, err = svc.ModerateUser(ctx, sess, "x", service.ActionBan, 0)
		wantKind(t, err, service.ErrUnauthorized)
		wantKind(t, svc.DeleteUser(ctx, sess, "x"), service.ErrUnauthorized)
		_, err = svc.UpdateRequest(ctx, sess, "x", service.RequestPatch{})
		wantKind(t, err, service.ErrUnauthorized)
		wantKind(t, svc.DeleteRequest(ctx, sess, "x"), service.ErrUnauthorized)
	}
}

func TestAdminSelfModeration(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewAdminService(m.Users, m.Requests, nil)
	admin, sess := adminUser(m)

	for _, action := range []string{service.ActionBan, service.ActionUnban, service.ActionTimeout, service.ActionRemoveTimeout} {
		_, err := svc.ModerateUser(ctx, sess, admin.ID, action, 10)
		wantKind(t, err, service.ErrInvalidOperation)
	}
	wantKind(t, svc.DeleteUser(ctx, sess, admin.ID), service.ErrInvalidOperation)
}

func TestModerateUser(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	events := &recorder{}
	svc := service.NewAdminService(m.Users, m.Requests, events)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	_, sess := adminUser(m)
	target, _ := completeUser(m, "Asha", "CS101")

	u, err := svc.ModerateUser(ctx, sess, target.ID, service.ActionTimeout, 30)
	if err != nil {
		t.Fatalf("timeout: %v", err)
	}
	if u.IsBanned || u.TimeoutUntil == nil || !u.TimeoutUntil.Equal(now.Add(30*time.Minute)) {
		t.Fatalf("unexpected timeout state: banned=%v until=%v", u.IsBanned, u.TimeoutUntil)
	}

	u, err = svc.ModerateUser(ctx, sess, target.ID, service.ActionBan, 0)
	if err != nil {
		t.Fatalf("ban: %v", err)
	}
	if !u.IsBanned || u.TimeoutUntil != nil {
		t.Fatalf("ban should set banned and clear timeout: %+v", u)
	}

	u, err = svc.ModerateUser(ctx, sess, target.ID, service.ActionUnban, 0)
	if err != nil || u.IsBanned || u.TimeoutUntil != nil {
		t.Fatalf("unban: %+v %v", u, err)
	}

	if _, err = svc.ModerateUser(ctx, sess, target.ID, service.ActionTimeout, 5); err != nil {
		t.Fatalf("timeout: %v", err)
	}
	u, err = svc.ModerateUser(ctx, sess, target.ID, service.ActionRemoveTimeout, 0)
	if err != nil || u.TimeoutUntil != nil || u.IsBanned {
		t.Fatalf("removeTimeout: %+v %v", u, err)
	}

	_, err = svc.ModerateUser(ctx, sess, target.ID, service.ActionTimeout, 0)
	wantKind(t, err, service.ErrValidation)
	_, err = svc.ModerateUser(ctx, sess, target.ID, "explode", 0)
	wantKind(t, err, service.ErrValidation)
	_, err = svc.ModerateUser(ctx, sess, "missing", service.ActionBan, 0)
	wantKind(t, err, service.ErrNotFound)

	if len(events.moderated) != 5 {
		t.Fatalf("expected 5 moderation events, got %d", len(events.moderated))
	}
	if ev := events.moderated[0]; ev.Action != service.ActionTimeout || ev.TimeoutUntil == "" {
		t.Fatalf("unexpected first event: %+v", ev)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	admin := service.NewAdminService(m.Users, m.Requests, nil)
	interests := service.NewInterestService(m.Requests, m.Interests, nil)
	feedback := service.NewFeedbackService(m.Feedback)
	_, adminSess := adminUser(m)
	victim, victimSess := completeUser(m, "Asha", "CS101")
	other, otherSess := completeUser(m, "Bilal", "CS102")

	victimReq := m.AddRequest(model.Request{UserID: victim.ID, CurrentHostel: "A", DesiredHostel: "B", RoomType: "AC", Seater: 2})
	otherReq := m.AddRequest(model.Request{UserID: other.ID, CurrentHostel: "C", DesiredHostel: "D", RoomType: "AC", Seater: 2})
	if _, err := interests.Record(ctx, otherSess, victimReq.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := interests.Record(ctx, victimSess, otherReq.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := feedback.Create(ctx, victimSess, "hi", "there"); err != nil {
		t.Fatal(err)
	}

	if err := admin.DeleteUser(ctx, adminSess, victim.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := m.Users.GetByID(ctx, victim.ID); err == nil {
		t.Fatal("user still present")
	}
	if items, _ := m.Requests.ListByUser(ctx, victim.ID); len(items) != 0 {
		t.Fatalf("requests survived: %d", len(items))
	}
	if got := m.InterestCount(); got != 0 {
		t.Fatalf("interests survived: %d", got)
	}
	if notes := m.NotificationsFor(other.ID); len(notes) != 0 {
		t.Fatalf("notification caused by deleted user survived: %+v", notes)
	}
	if items, _ := m.Feedback.List(ctx, ""); len(items) != 0 {
		t.Fatalf("feedback survived: %d", len(items))
	}
	if _, err := m.Requests.GetByID(ctx, otherReq.ID); err != nil {
		t.Fatalf("unrelated request removed: %v", err)
	}

	wantKind(t, admin.DeleteUser(ctx, adminSess, victim.ID), service.ErrNotFound)
}

func TestAdminDashboardAndRequests(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewAdminService(m.Users, m.Requests, nil)
	_, sess := adminUser(m)
	owner, _ := completeUser(m, "Asha", "CS101")
	req := m.AddRequest(model.Request{
		UserID: owner.ID, CurrentHostel: "A", DesiredHostel: "B", RoomType: "AC", Seater: 2,
		CurrentBlock: strPtr("X"), Message: strPtr("old"),
	})

	dash, err := svc.Dashboard(ctx, sess)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Users) != 2 || len(dash.Requests) != 1 {
		t.Fatalf("unexpected dashboard sizes: %d users, %d requests", len(dash.Users), len(dash.Requests))
	}
	if dash.Users[0].ID != owner.ID {
		t.Fatalf("users should be newest first")
	}

	item, err := svc.UpdateRequest(ctx, sess, req.ID, service.RequestPatch{Message: strPtr("new"), Seater: strPtr("4")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item.CurrentBlock != nil {
		t.Fatalf("admin update replaces omitted optionals, got block %q", *item.CurrentBlock)
	}
	if item.Message == nil || *item.Message != "new" || item.Seater != 4 || item.CurrentHostel != "A" {
		t.Fatalf("unexpected item: %+v", item.Request)
	}

	_, err = svc.UpdateRequest(ctx, sess, req.ID, service.RequestPatch{RoomType: strPtr("suite")})
	wantKind(t, err, service.ErrValidation)

	if err := svc.DeleteRequest(ctx, sess, req.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantKind(t, svc.DeleteRequest(ctx, sess, req.ID), service.ErrNotFound)
}
