package calendar

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const stateCookie = "clinic_calendar_state"

// Connector runs the OAuth consent flow for a calendar provider.
type Connector interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) error
}

// Handler serves /admin/calendar.
type Handler struct {
	connector    Connector
	cookieSecure bool
	logger       *logging.Logger
}

// NewHandler accepts a nil connector; both endpoints then answer 503.
func NewHandler(connector Connector, cookieSecure bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{connector: connector, cookieSecure: cookieSecure, logger: logger}
}

// Connect redirects the administrator to the provider's consent page.
// GET /admin/calendar/connect
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	if h.connector == nil {
		respond.Error(w, "Calendar integration not configured", http.StatusServiceUnavailable)
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/admin/calendar",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.connector.AuthURL(state), http.StatusFound)
}

// Callback finishes the consent flow and stores the token.
// GET /admin/calendar/callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.connector == nil {
		respond.Error(w, "Calendar integration not configured", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	if msg := q.Get("error"); msg != "" {
		h.logger.Warn("calendar consent denied", "error", msg)
		respond.Error(w, "Calendar authorization was denied", http.StatusBadRequest)
		return
	}
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		respond.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	code := q.Get("code")
	if code == "" {
		respond.Error(w, "Authorization code required", http.StatusBadRequest)
		return
	}
	if err := h.connector.Exchange(r.Context(), code); err != nil {
		h.logger.Error("calendar token exchange failed", "error", err)
		respond.Error(w, "Failed to connect calendar", http.StatusBadGateway)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/admin/calendar", MaxAge: -1})
	h.logger.Info("calendar connected")
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Calendar connected successfully"})
}
