package conversation

import (
	"net/http"

	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/internal/i18n"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// ChatCookie remembers the caller's chat session between requests.
const ChatCookie = "clinic_chat_session"

// Handler serves the public chat endpoints.
type Handler struct {
	service      *Service
	cookieSecure bool
	logger       *logging.Logger
}

func NewHandler(service *Service, cookieSecure bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, cookieSecure: cookieSecure, logger: logger}
}

// Chat handles POST /api/chat. Processing and storage failures come back as a
// 200 with type "error"; only a missing message is a 400.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "Message is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		if c, err := r.Cookie(ChatCookie); err == nil {
			req.SessionID = c.Value
		}
	}

	resp, err := h.service.Chat(r.Context(), req)
	if err != nil {
		h.logger.Debug("chat request rejected", "error", err)
		respond.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ChatCookie,
		Value:    resp.SessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	respond.JSON(w, http.StatusOK, resp)
}

// Languages handles GET /api/languages.
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"default":   i18n.DefaultLanguage,
		"languages": i18n.SupportedLanguages(),
	})
}
