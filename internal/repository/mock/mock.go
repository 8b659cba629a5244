// Package mock provides in-memory implementations of the repository
// stores for handler and service tests.  All stores created by NewMocks
// share one dataset, so joins and cascades behave like the MySQL
// versions.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository"
)

// Test helpers and mocks
type Mocks struct {
	Users         *mockUserRepo
	Requests      *mockRequestRepo
	Interests     *mockInterestRepo
	Notifications *mockNotificationRepo
	Feedback      *mockFeedbackRepo
	Tokens        *mockTokenRepo

	data *dataset
}

func NewMocks() *Mocks {
	d := &dataset{
		users:         map[string]model.User{},
		requests:      map[string]model.Request{},
		interests:     map[string]model.Interest{},
		notifications: map[string]model.Notification{},
		feedback:      map[string]model.Feedback{},
		tokens:        map[string]tokenRow{},
		seq:           map[string]int{},
	}
	return &Mocks{
		Users:         &mockUserRepo{d: d},
		Requests:      &mockRequestRepo{d: d},
		Interests:     &mockInterestRepo{d: d},
		Notifications: &mockNotificationRepo{d: d},
		Feedback:      &mockFeedbackRepo{d: d},
		Tokens:        &mockTokenRepo{d: d},
		data:          d,
	}
}

// AddUser stores u directly, filling ID and CreatedAt when empty.
func (m *Mocks) AddUser(u model.User) model.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	m.data.users[u.ID] = u
	m.data.touch(u.ID)
	return u
}

// AddRequest stores r directly, bypassing the open request limit.
func (m *Mocks) AddRequest(r model.Request) model.Request {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = model.RequestStatusOpen
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	m.data.requests[r.ID] = r
	m.data.touch(r.ID)
	return r
}

// NotificationsFor returns the recipient's notifications, newest first.
func (m *Mocks) NotificationsFor(userID string) []model.Notification {
	out, _ := m.Notifications.ListByUser(context.Background(), userID, 0)
	return out
}

// InterestCount returns the number of stored interests.
func (m *Mocks) InterestCount() int {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	return len(m.data.interests)
}

type tokenRow struct {
	userID  string
	expires time.Time
	revoked bool
}

type dataset struct {
	mu            sync.Mutex
	users         map[string]model.User
	requests      map[string]model.Request
	interests     map[string]model.Interest
	notifications map[string]model.Notification
	feedback      map[string]model.Feedback
	tokens        map[string]tokenRow

	// seq orders rows inserted within the same clock tick.
	seq     map[string]int
	counter int
}

func (d *dataset) touch(id string) {
	d.counter++
	d.seq[id] = d.counter
}

func (d *dataset) newer(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return d.seq[aID] > d.seq[bID]
}

func (d *dataset) owner(userID string) model.RequestOwner {
	u := d.users[userID]
	return model.RequestOwner{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		RegistrationNumber: u.RegistrationNumber,
		PhoneNumber:        u.PhoneNumber,
	}
}

func sameValue(a, b *string) bool {
	return a != nil && b != nil && *a != "" && *a == *b
}

// ---- users ----

type mockUserRepo struct {
	d *dataset
	// Err, when set, is returned by every call.
	Err error
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, other := range m.d.users {
		if sameValue(other.Email, u.Email) || sameValue(other.RegistrationNumber, u.RegistrationNumber) {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.d.users[u.ID] = *u
	m.d.touch(u.ID)
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	if m.Err != nil {
		return model.User{}, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	u, ok := m.d.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByRegistrationNumber(ctx context.Context, reg string) (model.User, error) {
	if m.Err != nil {
		return model.User{}, m.Err
	}
	reg = strings.ToUpper(strings.TrimSpace(reg))
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, u := range m.d.users {
		if u.RegistrationNumber != nil && *u.RegistrationNumber == reg {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	out := make([]model.User, 0, len(m.d.users))
	for _, u := range m.d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.d.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id string, p repository.ProfileUpdate) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	u, ok := m.d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for oid, other := range m.d.users {
		if oid != id && sameValue(other.RegistrationNumber, p.RegistrationNumber) {
			return repository.ErrDuplicate
		}
	}
	if p.Name != nil {
		v := *p.Name
		u.Name = &v
	}
	if p.RegistrationNumber != nil {
		v := *p.RegistrationNumber
		u.RegistrationNumber = &v
	}
	if p.PhoneNumber != nil {
		v := *p.PhoneNumber
		u.PhoneNumber = &v
	}
	m.d.users[id] = u
	return nil
}

func (m *mockUserRepo) SetModeration(ctx context.Context, id string, mod repository.ModerationUpdate) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	u, ok := m.d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if mod.IsBanned != nil {
		u.IsBanned = *mod.IsBanned
	}
	u.TimeoutUntil = mod.TimeoutUntil
	m.d.users[id] = u
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.users[id]; !ok {
		return repository.ErrNotFound
	}
	owned := map[string]bool{}
	for rid, r := range m.d.requests {
		if r.UserID == id {
			owned[rid] = true
			delete(m.d.requests, rid)
		}
	}
	for nid, n := range m.d.notifications {
		if n.UserID == id || (n.InterestedBy != nil && *n.InterestedBy == id) ||
			(n.RequestID != nil && owned[*n.RequestID]) {
			delete(m.d.notifications, nid)
		}
	}
	for iid, i := range m.d.interests {
		if i.UserID == id || owned[i.RequestID] {
			delete(m.d.interests, iid)
		}
	}
	for fid, f := range m.d.feedback {
		if f.UserID == id {
			delete(m.d.feedback, fid)
		}
	}
	for h, t := range m.d.tokens {
		if t.userID == id {
			delete(m.d.tokens, h)
		}
	}
	delete(m.d.users, id)
	return nil
}

// ---- requests ----

type mockRequestRepo struct {
	d   *dataset
	Err error
}

func (m *mockRequestRepo) sortedWithOwner(keep func(model.Request) bool, limit int) []model.RequestWithOwner {
	out := []model.RequestWithOwner{}
	for _, r := range m.d.requests {
		if keep(r) {
			out = append(out, model.RequestWithOwner{Request: r, User: m.d.owner(r.UserID)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.d.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *mockRequestRepo) ListOpen(ctx context.Context, limit int) ([]model.RequestWithOwner, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	return m.sortedWithOwner(func(r model.Request) bool { return r.Status == model.RequestStatusOpen }, limit), nil
}

func (m *mockRequestRepo) ListAllWithOwner(ctx context.Context) ([]model.RequestWithOwner, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	return m.sortedWithOwner(func(model.Request) bool { return true }, 0), nil
}

func (m *mockRequestRepo) ListByUser(ctx context.Context, userID string) ([]model.Request, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	rows := m.sortedWithOwner(func(r model.Request) bool { return r.UserID == userID }, 0)
	out := make([]model.Request, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Request)
	}
	return out, nil
}

func (m *mockRequestRepo) countOpen(userID string) int {
	n := 0
	for _, r := range m.d.requests {
		if r.UserID == userID && r.Status == model.RequestStatusOpen {
			n++
		}
	}
	return n
}

func (m *mockRequestRepo) CountOpenByUser(ctx context.Context, userID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	return m.countOpen(userID), nil
}

func (m *mockRequestRepo) CreateWithLimit(ctx context.Context, r *model.Request, limit int) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.users[r.UserID]; !ok {
		return repository.ErrNotFound
	}
	if m.countOpen(r.UserID) >= limit {
		return repository.ErrLimitReached
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = model.RequestStatusOpen
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.d.requests[r.ID] = *r
	m.d.touch(r.ID)
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id string) (model.Request, error) {
	if m.Err != nil {
		return model.Request{}, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	r, ok := m.d.requests[id]
	if !ok {
		return model.Request{}, repository.ErrNotFound
	}
	return r, nil
}

func (m *mockRequestRepo) GetWithOwner(ctx context.Context, id string) (model.RequestWithOwner, error) {
	if m.Err != nil {
		return model.RequestWithOwner{}, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	r, ok := m.d.requests[id]
	if !ok {
		return model.RequestWithOwner{}, repository.ErrNotFound
	}
	return model.RequestWithOwner{Request: r, User: m.d.owner(r.UserID)}, nil
}

func (m *mockRequestRepo) Update(ctx context.Context, r *model.Request) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	cur, ok := m.d.requests[r.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := *r
	next.UserID = cur.UserID
	next.Status = cur.Status
	next.CreatedAt = cur.CreatedAt
	m.d.requests[r.ID] = next
	return nil
}

func (m *mockRequestRepo) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.requests[id]; !ok {
		return repository.ErrNotFound
	}
	for nid, n := range m.d.notifications {
		if n.RequestID != nil && *n.RequestID == id {
			delete(m.d.notifications, nid)
		}
	}
	for iid, i := range m.d.interests {
		if i.RequestID == id {
			delete(m.d.interests, iid)
		}
	}
	delete(m.d.requests, id)
	return nil
}

// ---- interests ----

type mockInterestRepo struct {
	d   *dataset
	Err error
	// CreateErr, when set, is returned by CreateWithNotification only.
	CreateErr error
}

func (m *mockInterestRepo) Exists(ctx context.Context, userID, requestID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, i := range m.d.interests {
		if i.UserID == userID && i.RequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInterestRepo) CreateWithNotification(ctx context.Context, i *model.Interest, n *model.Notification) error {
	if m.Err != nil {
		return m.Err
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, other := range m.d.interests {
		if other.UserID == i.UserID && other.RequestID == i.RequestID {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	m.d.interests[i.ID] = *i
	m.d.touch(i.ID)
	m.d.notifications[n.ID] = *n
	m.d.touch(n.ID)
	return nil
}

// ---- notifications ----

type mockNotificationRepo struct {
	d   *dataset
	Err error
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	out := []model.Notification{}
	for _, n := range m.d.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.d.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	c := 0
	for _, n := range m.d.notifications {
		if n.UserID == userID && !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	n, ok := m.d.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	m.d.notifications[id] = n
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	var c int64
	for id, n := range m.d.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			m.d.notifications[id] = n
			c++
		}
	}
	return c, nil
}

// ---- feedback ----

type mockFeedbackRepo struct {
	d   *dataset
	Err error
}

func (m *mockFeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = model.FeedbackStatusNew
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	m.d.feedback[f.ID] = *f
	m.d.touch(f.ID)
	return nil
}

func (m *mockFeedbackRepo) List(ctx context.Context, userID string) ([]model.FeedbackWithAuthor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	out := []model.FeedbackWithAuthor{}
	for _, f := range m.d.feedback {
		if userID != "" && f.UserID != userID {
			continue
		}
		u := m.d.users[f.UserID]
		out = append(out, model.FeedbackWithAuthor{
			Feedback: f,
			User:     model.FeedbackAuthor{Name: u.Name, Email: u.Email, RegistrationNumber: u.RegistrationNumber},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return m.d.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockFeedbackRepo) GetByID(ctx context.Context, id string) (model.Feedback, error) {
	if m.Err != nil {
		return model.Feedback{}, m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	f, ok := m.d.feedback[id]
	if !ok {
		return model.Feedback{}, repository.ErrNotFound
	}
	return f, nil
}

func (m *mockFeedbackRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	f, ok := m.d.feedback[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.Status = status
	m.d.feedback[id] = f
	return nil
}

func (m *mockFeedbackRepo) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.feedback[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.d.feedback, id)
	return nil
}

// ---- refresh tokens ----

type mockTokenRepo struct {
	d   *dataset
	Err error
}

func (m *mockTokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	m.d.tokens[tokenHash] = tokenRow{userID: userID, expires: exp}
	return nil
}

func (m *mockTokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	t, ok := m.d.tokens[tokenHash]
	if !ok || t.revoked || time.Now().After(t.expires) {
		return "", repository.ErrNotFound
	}
	return t.userID, nil
}

func (m *mockTokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if t, ok := m.d.tokens[tokenHash]; ok {
		t.revoked = true
		m.d.tokens[tokenHash] = t
	}
	return nil
}

func (m *mockTokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for h, t := range m.d.tokens {
		if t.userID == userID {
			t.revoked = true
			m.d.tokens[h] = t
		}
	}
	return nil
}

var (
	_ repository.UserStore         = (*mockUserRepo)(nil)
	_ repository.RequestStore      = (*mockRequestRepo)(nil)
	_ repository.InterestStore     = (*mockInterestRepo)(nil)
	_ repository.NotificationStore = (*mockNotificationRepo)(nil)
	_ repository.FeedbackStore     = (*mockFeedbackRepo)(nil)
	_ repository.TokenStore        = (*mockTokenRepo)(nil)
)
