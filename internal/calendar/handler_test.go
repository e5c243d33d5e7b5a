package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	code string
	err  error
}

func (f *fakeConnector) AuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeConnector) Exchange(ctx context.Context, code string) error {
	f.code = code
	return f.err
}

func connect(t *testing.T, h *Handler) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Connect(rec, httptest.NewRequest(http.MethodGet, "/admin/calendar/connect", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "state="+c.Value))
			return c
		}
	}
	t.Fatalf("state cookie not set")
	return nil
}

func callback(h *Handler, query string, state *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/calendar/callback?"+query, nil)
	if state != nil {
		req.AddCookie(state)
	}
	rec := httptest.NewRecorder()
	h.Callback(rec, req)
	return rec
}

func TestCalendarConnectFlow(t *testing.T) {
	conn := &fakeConnector{}
	h := NewHandler(conn, false, nil)
	state := connect(t, h)

	rec := callback(h, "code=abc&state="+state.Value, state)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", conn.code)
	assert.JSONEq(t, `{"message":"Calendar connected successfully"}`, rec.Body.String())
}

func TestCalendarCallbackRejectsBadState(t *testing.T) {
	conn := &fakeConnector{}
	h := NewHandler(conn, false, nil)
	state := connect(t, h)

	assert.Equal(t, http.StatusBadRequest, callback(h, "code=abc&state=forged", state).Code)
	assert.Equal(t, http.StatusBadRequest, callback(h, "code=abc&state="+state.Value, nil).Code)
	assert.Equal(t, http.StatusBadRequest, callback(h, "state="+state.Value, state).Code)
	assert.Equal(t, http.StatusBadRequest, callback(h, "error=access_denied", state).Code)
	assert.Empty(t, conn.code)
}

func TestCalendarCallbackExchangeFailure(t *testing.T) {
	h := NewHandler(&fakeConnector{err: errors.New("bad code")}, false, nil)
	state := connect(t, h)
	assert.Equal(t, http.StatusBadGateway, callback(h, "code=abc&state="+state.Value, state).Code)
}

func TestCalendarHandlerNotConfigured(t *testing.T) {
	h := NewHandler(nil, false, nil)
	rec := httptest.NewRecorder()
	h.Connect(rec, httptest.NewRequest(http.MethodGet, "/admin/calendar/connect", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, http.StatusServiceUnavailable, callback(h, "code=x", nil).Code)
}
