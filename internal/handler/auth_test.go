package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

const testSecret = "test-secret"

func newAuth() (*AuthHandler, *mockProfiles, *mockTokens) {
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	p, tk := newMockProfiles(), newMockTokens()
	return NewAuthHandler(cfg, p, tk, testLog), p, tk
}

func register(t *testing.T, h *AuthHandler, body map[string]any) map[string]any {
	t.Helper()
	c, rec := request(t, http.MethodPost, "/v1/auth/register", body, nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	h, profiles, tokens := newAuth()

	got := register(t, h, map[string]any{"email": "Ana@Example.com", "password": "secret1", "full_name": "Ana", "phone": "+33123456789"})
	user := got["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "client", user["role"])
	assert.NotContains(t, user, "password_hash")
	assert.Len(t, tokens.items, 1)

	access := got["access"].(map[string]any)["token"].(string)
	claims, err := utils.ParseAccessToken(testSecret, access)
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, claims.Role)
	assert.Contains(t, profiles.items, claims.UserID)

	c, rec := request(t, http.MethodPost, "/v1/auth/login", map[string]any{"email": "ana@example.com", "password": "secret1"}, nil)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, tokens.items, 2)

	c, rec = request(t, http.MethodPost, "/v1/auth/login", map[string]any{"email": "ana@example.com", "password": "wrong-pass"}, nil)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = request(t, http.MethodPost, "/v1/auth/login", map[string]any{"email": "nobody@example.com", "password": "secret1"}, nil)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Register_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{"admin is never self-assigned", map[string]any{"email": "a@b.co", "password": "secret1", "full_name": "A", "role": "admin"}, http.StatusBadRequest},
		{"short password", map[string]any{"email": "a@b.co", "password": "123", "full_name": "A"}, http.StatusBadRequest},
		{"bad email", map[string]any{"email": "not-an-email", "password": "secret1", "full_name": "A"}, http.StatusBadRequest},
		{"bad phone", map[string]any{"email": "a@b.co", "password": "secret1", "full_name": "A", "phone": "0612"}, http.StatusBadRequest},
		{"duplicate email", map[string]any{"email": "taken@example.com", "password": "secret1", "full_name": "A"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newAuth()
			register(t, h, map[string]any{"email": "taken@example.com", "password": "secret1", "full_name": "T"})

			c, rec := request(t, http.MethodPost, "/v1/auth/register", tt.body, nil)
			require.NoError(t, h.Register(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthHandler_Register_Owner(t *testing.T) {
	h, _, _ := newAuth()
	got := register(t, h, map[string]any{"email": "o@example.com", "password": "secret1", "full_name": "O", "role": "owner"})
	assert.Equal(t, "owner", got["user"].(map[string]any)["role"])
}

func TestAuthHandler_Login_Inactive(t *testing.T) {
	h, profiles, _ := newAuth()
	got := register(t, h, map[string]any{"email": "gone@example.com", "password": "secret1", "full_name": "G"})
	id := uint64(got["user"].(map[string]any)["id"].(float64))
	profiles.items[id].IsActive = false

	c, rec := request(t, http.MethodPost, "/v1/auth/login", map[string]any{"email": "gone@example.com", "password": "secret1"}, nil)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Refresh_Rotates(t *testing.T) {
	h, _, tokens := newAuth()
	got := register(t, h, map[string]any{"email": "r@example.com", "password": "secret1", "full_name": "R"})
	raw := got["refresh"].(map[string]any)["token"].(string)

	c, rec := request(t, http.MethodPost, "/v1/auth/refresh", map[string]any{"refresh_token": raw}, nil)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode(t, rec)["refresh"].(map[string]any)["token"].(string)
	assert.NotEqual(t, raw, next)
	assert.NotContains(t, tokens.items, utils.HashRefreshRaw(raw))

	c, rec = request(t, http.MethodPost, "/v1/auth/refresh", map[string]any{"refresh_token": raw}, nil)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = request(t, http.MethodPost, "/v1/auth/refresh-access", map[string]any{"refresh_token": next}, nil)
	require.NoError(t, h.RefreshAccess(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, tokens.items, utils.HashRefreshRaw(next))

	c, rec = request(t, http.MethodPost, "/v1/auth/refresh", map[string]any{}, nil)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("single refresh token", func(t *testing.T) {
		h, _, tokens := newAuth()
		got := register(t, h, map[string]any{"email": "l@example.com", "password": "secret1", "full_name": "L"})
		raw := got["refresh"].(map[string]any)["token"].(string)

		c, rec := request(t, http.MethodPost, "/v1/auth/logout", map[string]any{"refresh_token": raw}, nil)
		require.NoError(t, h.Logout(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, tokens.items)
	})

	t.Run("every session of the bearer", func(t *testing.T) {
		h, _, tokens := newAuth()
		got := register(t, h, map[string]any{"email": "l@example.com", "password": "secret1", "full_name": "L"})
		access := got["access"].(map[string]any)["token"].(string)

		c, rec := request(t, http.MethodPost, "/v1/auth/logout", nil, nil)
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+access)
		require.NoError(t, h.Logout(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Len(t, tokens.revokedAll, 1)
		assert.Empty(t, tokens.items)
	})

	t.Run("nothing to revoke", func(t *testing.T) {
		h, _, _ := newAuth()
		c, rec := request(t, http.MethodPost, "/v1/auth/logout", nil, nil)
		require.NoError(t, h.Logout(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_MeAndUpdate(t *testing.T) {
	h, _, _ := newAuth()
	got := register(t, h, map[string]any{"email": "me@example.com", "password": "secret1", "full_name": "Before"})
	id := uint64(got["user"].(map[string]any)["id"].(float64))
	sess := &middleware.Session{UserID: id, Role: model.RoleClient}

	c, rec := request(t, http.MethodPatch, "/v1/me", map[string]any{"full_name": "After", "phone": "+14155550100"}, sess)
	require.NoError(t, h.UpdateMe(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = request(t, http.MethodGet, "/v1/me", nil, sess)
	require.NoError(t, h.Me(c))
	me := decode(t, rec)
	assert.Equal(t, "After", me["full_name"])
	assert.Equal(t, "+14155550100", me["phone"])

	c, rec = request(t, http.MethodGet, "/v1/me", nil, nil)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
