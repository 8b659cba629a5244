package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository/mock"
	"github.com/shiftbuddy/hostel-swap/internal/service"
)

func TestFeedback(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	svc := service.NewFeedbackService(m.Feedback)
	_, admin := adminUser(m)
	_, asha := completeUser(m, "Asha", "CS101")
	_, bilal := completeUser(m, "Bilal", "CS102")

	_, err := svc.Create(ctx, asha, " ", "body")
	wantKind(t, err, service.ErrValidation)
	_, err = svc.Create(ctx, nil, "s", "m")
	wantKind(t, err, service.ErrUnauthenticated)
	_, err = svc.Create(ctx, asha, strings.Repeat("s", 201), "body")
	wantKind(t, err, service.ErrValidation)

	f, err := svc.Create(ctx, asha, " Wifi ", " broken ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Subject != "Wifi" || f.Message != "broken" || f.Status != model.FeedbackStatusNew {
		t.Fatalf("unexpected feedback: %+v", f)
	}
	if _, err := svc.Create(ctx, bilal, "Mess", "cold food"); err != nil {
		t.Fatal(err)
	}

	own, err := svc.List(ctx, asha)
	if err != nil || len(own) != 1 || own[0].User.Name == nil || *own[0].User.Name != "Asha" {
		t.Fatalf("user should see own feedback only: %+v %v", own, err)
	}
	all, err := svc.List(ctx, admin)
	if err != nil || len(all) != 2 {
		t.Fatalf("admin should see all feedback: %d %v", len(all), err)
	}
	if all[0].Subject != "Mess" {
		t.Fatalf("feedback should be newest first")
	}

	_, err = svc.SetStatus(ctx, asha, f.ID, model.FeedbackStatusRead)
	wantKind(t, err, service.ErrUnauthorized)
	_, err = svc.SetStatus(ctx, admin, f.ID, "archived")
	wantKind(t, err, service.ErrValidation)

	for _, status := range []string{model.FeedbackStatusRead, model.FeedbackStatusResolved, model.FeedbackStatusNew} {
		got, err := svc.SetStatus(ctx, admin, f.ID, status)
		if err != nil || got.Status != status {
			t.Fatalf("set %s: %+v %v", status, got, err)
		}
	}
	_, err = svc.SetStatus(ctx, admin, "missing", model.FeedbackStatusRead)
	wantKind(t, err, service.ErrNotFound)

	wantKind(t, svc.Delete(ctx, asha, f.ID), service.ErrUnauthorized)
	if err := svc.Delete(ctx, admin, f.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantKind(t, svc.Delete(ctx, admin, f.ID), service.ErrNotFound)
}
