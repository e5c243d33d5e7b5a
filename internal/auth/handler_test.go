package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler() (*Handler, *InMemoryUserRepository, *TokenManager) {
	users := NewInMemoryUserRepository()
	tokens := NewTokenManager("secret", time.Hour, NewMemoryRevocations())
	return NewHandler(users, tokens, false, nil), users, tokens
}

func postJSON(h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateAdminOnlyOnce(t *testing.T) {
	h, _, _ := newTestAuthHandler()

	rec := postJSON(h.CreateAdmin, map[string]string{"username": "admin", "email": "admin@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Admin user created successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, user, "password_hash")

	rec = postJSON(h.CreateAdmin, map[string]string{"username": "root", "email": "root@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Admin user already exists", decodeBody(t, rec)["error"])
}

func TestCreateAdminMissingFields(t *testing.T) {
	h, _, _ := newTestAuthHandler()
	rec := postJSON(h.CreateAdmin, map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username, email, and password required", decodeBody(t, rec)["error"])
}

func TestLoginFlow(t *testing.T) {
	h, users, tokens := newTestAuthHandler()
	u, err := NewUser("alice", "alice@example.com", "pw", RoleStaff)
	require.NoError(t, err)
	_, err = users.Create(context.Background(), u)
	require.NoError(t, err)

	rec := postJSON(h.Login, map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])

	rec = postJSON(h.Login, map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(h.Login, map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, token, cookie.Value)

	claims, err := tokens.Parse(context.Background(), token)
	require.NoError(t, err)

	meReq := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	meReq = meReq.WithContext(WithClaims(meReq.Context(), claims))
	meRec := httptest.NewRecorder()
	h.Me(meRec, meReq)
	require.Equal(t, http.StatusOK, meRec.Code)
	assert.Equal(t, "alice", decodeBody(t, meRec)["username"])

	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.Header.Set("Authorization", "Bearer "+token)
	logoutRec := httptest.NewRecorder()
	h.Logout(logoutRec, logoutReq)
	assert.Equal(t, http.StatusOK, logoutRec.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, logoutRec)["message"])

	_, err = tokens.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMeWithoutSession(t *testing.T) {
	h, _, _ := newTestAuthHandler()
	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeUnknownUser(t *testing.T) {
	h, _, _ := newTestAuthHandler()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(WithClaims(req.Context(), &Claims{UserID: 99}))
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", TokenFromRequest(req))
}
