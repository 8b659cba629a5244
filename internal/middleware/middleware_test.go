package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/config"
	"github.com/shiftbuddy/hostel-swap/internal/model"
	"github.com/shiftbuddy/hostel-swap/internal/repository/mock"
	"github.com/shiftbuddy/hostel-swap/internal/utils"
)

const testSecret = "test-secret-test-secret-test-secret"

func strPtr(s string) *string { return &s }

// protected builds an echo instance with the full auth chain in front of
// GET and POST /x.
func protected(m *mock.Mocks, now time.Time) *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTAuth(testSecret), LoadSession(m.Users, func() time.Time { return now }))
	h := func(c echo.Context) error {
		return c.String(http.StatusOK, SessionFrom(c).UserID)
	}
	g.GET("/x", h)
	g.POST("/x", h)
	g.GET("/admin", h, RequireAdmin())
	return e
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, id string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, id, false, 15)
	if err != nil {
		t.Fatal(err)
	}
	return tok.Token
}

func TestSessionEnforcement(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	m := mock.NewMocks()
	active := m.AddUser(model.User{Name: strPtr("A")})
	banned := m.AddUser(model.User{Name: strPtr("B"), IsBanned: true})
	timedOut := m.AddUser(model.User{Name: strPtr("T"), TimeoutUntil: &future})
	expired := m.AddUser(model.User{Name: strPtr("E"), TimeoutUntil: &past})
	admin := m.AddUser(model.User{Name: strPtr("Adm"), IsAdmin: true})
	e := protected(m, now)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/x", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/x", "abc", http.StatusUnauthorized},
		{"unknown user", http.MethodGet, "/x", token(t, "missing"), http.StatusUnauthorized},
		{"active read", http.MethodGet, "/x", token(t, active.ID), http.StatusOK},
		{"active write", http.MethodPost, "/x", token(t, active.ID), http.StatusOK},
		{"banned read", http.MethodGet, "/x", token(t, banned.ID), http.StatusForbidden},
		{"timed out read", http.MethodGet, "/x", token(t, timedOut.ID), http.StatusOK},
		{"timed out write", http.MethodPost, "/x", token(t, timedOut.ID), http.StatusForbidden},
		{"expired timeout write", http.MethodPost, "/x", token(t, expired.ID), http.StatusOK},
		{"non-admin on admin route", http.MethodGet, "/admin", token(t, active.ID), http.StatusUnauthorized},
		{"admin on admin route", http.MethodGet, "/admin", token(t, admin.ID), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.token)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAdminClaimIsNotTrusted(t *testing.T) {
	m := mock.NewMocks()
	u := m.AddUser(model.User{Name: strPtr("A")})
	tok, err := utils.NewAccessToken(testSecret, u.ID, true, 15)
	if err != nil {
		t.Fatal(err)
	}
	rec := do(protected(m, time.Now()), http.MethodGet, "/admin", tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCacheKeyScope(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "swapcache", KeyStrategy: "route_query"}
	e := echo.New()

	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/requests")
		return cacheKeyFrom(cfg, "feed", c)
	}

	a, b := key("/v1/requests"), key("/v1/requests?x=1")
	if !strings.HasPrefix(a, "swapcache:feed:") {
		t.Fatalf("key %q lacks scope prefix", a)
	}
	if a == b {
		t.Fatal("query must change the key")
	}
	if a != key("/v1/requests") {
		t.Fatal("key must be stable")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || string(body) != `{"ok":true}` || got.Get("Content-Type") != "application/json" {
		t.Fatalf("decode = %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{0, 1}); ok {
		t.Fatal("short payload decoded")
	}
}

func TestNoRedisPassThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil, "feed"))
	e.Use(PurgeOnWrite(config.CacheConfig{Enabled: true}, nil, "feed"))
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "hi") })

	rec := do(e, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "hi" || rec.Header().Get("X-Cache") != "" {
		t.Fatalf("unexpected response %d %q %v", rec.Code, rec.Body.String(), rec.Header())
	}
}

func TestRateKeyUsesSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/requests", nil), httptest.NewRecorder())
	c.SetPath("/v1/requests")
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}

	if got := buildRateKey(cfg, c); got != "rl:user:anon" {
		t.Fatalf("anonymous key = %q", got)
	}
	SetSession(c, &model.Session{UserID: "u1"})
	if got := buildRateKey(cfg, c); got != "rl:user:u1" {
		t.Fatalf("session key = %q", got)
	}
}
