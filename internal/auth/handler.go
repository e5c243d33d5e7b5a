package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Handler serves /auth.
type Handler struct {
	users        UserRepository
	tokens       *TokenManager
	cookieSecure bool
	logger       *logging.Logger
}

func NewHandler(users UserRepository, tokens *TokenManager, cookieSecure bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{users: users, tokens: tokens, cookieSecure: cookieSecure, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials and issues a session token.
// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		respond.Error(w, "Username and password required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetActiveByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		h.logger.Error("login lookup failed", "error", err)
		respond.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}
	if user == nil || !CheckPassword(req.Password, user.PasswordHash) {
		h.logger.Warn("login rejected", "username", req.Username)
		respond.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, claims, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue session token", "error", err)
		respond.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}
	h.setCookie(w, token, claims.ExpiresAt.Time)
	h.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":    "Login successful",
		"user":       user,
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
	})
}

// Logout revokes the presented token and clears the cookie. It succeeds without a session.
// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := TokenFromRequest(r); token != "" {
		if claims, err := h.tokens.Parse(r.Context(), token); err == nil {
			if err := h.tokens.Revoke(r.Context(), claims); err != nil {
				h.logger.Error("failed to revoke session token", "error", err)
			}
		}
	}
	h.setCookie(w, "", time.Unix(0, 0))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the signed-in user. Mount behind RequireAuthenticated.
// GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		respond.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load current user", "error", err)
		respond.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

type createAdminRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAdmin bootstraps the first admin account. It is refused once any admin exists.
// POST /auth/create-admin
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, "Username, email, and password required", http.StatusBadRequest)
		return
	}
	user, err := NewUser(req.Username, req.Email, req.Password, RoleAdmin)
	if err != nil {
		h.logger.Error("failed to hash admin password", "error", err)
		respond.Error(w, "Failed to create admin user", http.StatusInternalServerError)
		return
	}

	created, err := h.users.CreateFirstAdmin(r.Context(), user)
	switch {
	case errors.Is(err, ErrAdminExists):
		respond.Error(w, "Admin user already exists", http.StatusBadRequest)
		return
	case errors.Is(err, ErrUsernameTaken):
		respond.Error(w, "Username already exists", http.StatusBadRequest)
		return
	case errors.Is(err, ErrEmailTaken):
		respond.Error(w, "Email already exists", http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("failed to create admin user", "error", err)
		respond.Error(w, "Failed to create admin user", http.StatusInternalServerError)
		return
	}
	h.logger.Info("admin user created", "user_id", created.ID)
	respond.JSON(w, http.StatusCreated, map[string]any{
		"message": "Admin user created successfully",
		"user":    created,
	})
}

func (h *Handler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
