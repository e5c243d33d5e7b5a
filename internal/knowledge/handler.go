package knowledge

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/internal/i18n"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Handler serves the public content endpoints and the admin FAQ editor.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// AdminRoutes returns the FAQ editor routes. Mount behind RequireAdmin.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.AdminListFAQs)
	r.Post("/", h.AdminCreateFAQ)
	r.Put("/{id}", h.AdminUpdateFAQ)
	r.Delete("/{id}", h.AdminDeleteFAQ)
	return r
}

// ListFAQs returns active FAQs for one language.
// GET /api/faqs?category=&language=
func (h *Handler) ListFAQs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	faqs, err := h.repo.ListFAQs(r.Context(), FAQFilter{
		Language: languageParam(q.Get("language")),
		Category: strings.TrimSpace(q.Get("category")),
	})
	if err != nil {
		h.logger.Error("failed to list faqs", "error", err)
		respond.Error(w, "Failed to list FAQs", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, faqs)
}

// CreateFAQ adds an FAQ. Mount behind RequireAuthenticated.
// POST /api/faqs
func (h *Handler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	faq, ok := h.createFAQ(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusCreated, faq)
}

// ListAftercare returns active instructions for one language.
// GET /api/aftercare?treatment_type=&language=
func (h *Handler) ListAftercare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.repo.ListAftercare(r.Context(), AftercareFilter{
		Language:      languageParam(q.Get("language")),
		TreatmentType: strings.TrimSpace(q.Get("treatment_type")),
	})
	if err != nil {
		h.logger.Error("failed to list aftercare", "error", err)
		respond.Error(w, "Failed to list aftercare instructions", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// AdminListFAQs returns active FAQs in every language.
// GET /admin/faqs
func (h *Handler) AdminListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.repo.ListFAQs(r.Context(), FAQFilter{})
	if err != nil {
		h.logger.Error("failed to list faqs", "error", err)
		respond.Error(w, "Failed to list FAQs", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, faqs)
}

// AdminCreateFAQ adds an FAQ.
// POST /admin/faqs
func (h *Handler) AdminCreateFAQ(w http.ResponseWriter, r *http.Request) {
	faq, ok := h.createFAQ(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "FAQ added successfully",
		"faq":     faq,
	})
}

// AdminUpdateFAQ applies a partial update.
// PUT /admin/faqs/{id}
func (h *Handler) AdminUpdateFAQ(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdateFAQRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := h.repo.UpdateFAQ(r.Context(), id, &req); err != nil {
		h.writeError(w, err, "Failed to update FAQ")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "FAQ updated successfully"})
}

// AdminDeleteFAQ soft-deletes an FAQ.
// DELETE /admin/faqs/{id}
func (h *Handler) AdminDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeactivateFAQ(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete FAQ")
		return
	}
	h.logger.Info("faq deactivated", "id", id)
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "FAQ deleted successfully"})
}

func (h *Handler) createFAQ(w http.ResponseWriter, r *http.Request) (*FAQ, bool) {
	var req CreateFAQRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}
	faq, err := h.repo.CreateFAQ(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create FAQ")
		return nil, false
	}
	h.logger.Info("faq created", "id", faq.ID, "language", faq.Language)
	return faq, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrFAQNotFound):
		respond.Error(w, "FAQ not found", http.StatusNotFound)
	case errors.Is(err, ErrMissingFields):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(fallback, "error", err)
		respond.Error(w, fallback, http.StatusInternalServerError)
	}
}

// languageParam defaults to English. Unknown codes are kept so they match nothing.
func languageParam(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return i18n.DefaultLanguage
	}
	return raw
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
