package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/health-companion/auth"
	"github.com/meinhoongagan/health-companion/models"
	"github.com/meinhoongagan/health-companion/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gateFixture struct {
	app      *fiber.App
	tokens   *auth.TokenService
	users    *store.MemoryUserStore
	denylist *auth.MemoryDenylist
	seq      int
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	f := &gateFixture{
		tokens:   auth.NewTokenService("gate-secret", time.Hour),
		users:    store.NewMemoryUserStore(),
		denylist: auth.NewMemoryDenylist(),
	}
	gate := NewGate(f.tokens, f.users, f.denylist, zap.NewNop())

	f.app = fiber.New()
	whoami := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": UserID(c), "role": c.Locals(LocalRole)})
	}
	f.app.Get("/private", gate.Protected(), whoami)
	f.app.Post("/private", gate.Protected(), whoami)
	f.app.Get("/admin", gate.AdminOnly(), whoami)
	f.app.Get("/optional", gate.Optional(), whoami)
	return f
}

func (f *gateFixture) user(t *testing.T, verified bool, role models.Role) (*models.User, string) {
	t.Helper()
	f.seq++
	u := models.NewUser("Ann", fmt.Sprintf("user%d@example.com", f.seq), "", "h")
	u.IsVerified = verified
	u.Role = role
	require.NoError(t, f.users.Create(context.Background(), u))
	token, _, err := f.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u, token
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func bearer(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestGate_RejectsWithoutToken(t *testing.T) {
	f := newGateFixture(t)
	status, body := call(t, f.app, bearer(http.MethodGet, "/private", ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access denied. No token provided.", body["error"])
}

func TestGate_TokenSources(t *testing.T) {
	f := newGateFixture(t)
	u, token := f.user(t, true, models.RoleUser)

	status, body := call(t, f.app, bearer(http.MethodGet, "/private", token))
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, u.ID, body["userId"])

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	status, _ = call(t, f.app, req)
	assert.Equal(t, http.StatusOK, status)

	req = httptest.NewRequest(http.MethodPost, "/private", strings.NewReader(`{"token":"`+token+`"}`))
	req.Header.Set("Content-Type", "application/json")
	status, _ = call(t, f.app, req)
	assert.Equal(t, http.StatusOK, status)
}

func TestGate_HeaderWinsOverBody(t *testing.T) {
	f := newGateFixture(t)
	_, token := f.user(t, true, models.RoleUser)

	req := httptest.NewRequest(http.MethodPost, "/private", strings.NewReader(`{"token":"`+token+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	status, body := call(t, f.app, req)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token.", body["error"])
}

func TestGate_TokenFailures(t *testing.T) {
	f := newGateFixture(t)
	u, _ := f.user(t, true, models.RoleUser)

	expired, _, err := auth.NewTokenService("gate-secret", -time.Minute).Issue(u.ID)
	require.NoError(t, err)
	forged, _, err := auth.NewTokenService("other-secret", time.Hour).Issue(u.ID)
	require.NoError(t, err)
	orphan, _, err := f.tokens.Issue(9999)
	require.NoError(t, err)

	tests := []struct {
		name, token, msg string
	}{
		{"garbage", "abc.def.ghi", "Invalid token."},
		{"wrong secret", forged, "Invalid token."},
		{"expired", expired, "Token expired."},
		{"deleted user", orphan, "Token is valid but user no longer exists."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, f.app, bearer(http.MethodGet, "/private", tt.token))
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestGate_UnverifiedUser(t *testing.T) {
	f := newGateFixture(t)
	_, token := f.user(t, false, models.RoleUser)
	status, body := call(t, f.app, bearer(http.MethodGet, "/private", token))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User account not verified.", body["error"])
}

func TestGate_RevokedToken(t *testing.T) {
	f := newGateFixture(t)
	_, token := f.user(t, true, models.RoleUser)
	claims, err := f.tokens.Parse(token)
	require.NoError(t, err)
	require.NoError(t, f.denylist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	status, body := call(t, f.app, bearer(http.MethodGet, "/private", token))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked.", body["error"])
}

func TestGate_AdminOnly(t *testing.T) {
	f := newGateFixture(t)
	_, userToken := f.user(t, true, models.RoleUser)
	status, body := call(t, f.app, bearer(http.MethodGet, "/admin", userToken))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied. Admin privileges required.", body["error"])

	_, adminToken := f.user(t, true, models.RoleAdmin)
	status, body = call(t, f.app, bearer(http.MethodGet, "/admin", adminToken))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["role"])
}

func TestGate_OptionalNeverRejects(t *testing.T) {
	f := newGateFixture(t)
	_, unverified := f.user(t, false, models.RoleUser)

	for _, token := range []string{"", "garbage", unverified} {
		status, body := call(t, f.app, bearer(http.MethodGet, "/optional", token))
		assert.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 0, body["userId"])
	}
}

func TestGate_OptionalResolvesUser(t *testing.T) {
	f := newGateFixture(t)
	u, token := f.user(t, true, models.RoleUser)
	status, body := call(t, f.app, bearer(http.MethodGet, "/optional", token))
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, u.ID, body["userId"])
}
