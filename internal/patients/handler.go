package patients

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Handler handles HTTP requests for patients
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new patients handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/patients
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list patients", "error", err)
		respond.Error(w, "Failed to list patients", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Patient{}
	}
	respond.JSON(w, http.StatusOK, list)
}

// Create handles POST /api/patients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email != "" {
		if _, err := h.repo.GetByEmail(r.Context(), req.Email); err == nil {
			respond.Error(w, "Patient with this email already exists", http.StatusBadRequest)
			return
		} else if !errors.Is(err, ErrPatientNotFound) {
			h.logger.Error("failed to check patient email", "error", err)
			respond.Error(w, "Failed to create patient", http.StatusInternalServerError)
			return
		}
	}

	patient, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create patient")
		return
	}

	h.logger.Info("patient created", "id", patient.ID)
	respond.JSON(w, http.StatusCreated, patient)
}

// Get handles GET /api/patients/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	patient, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to load patient")
		return
	}
	respond.JSON(w, http.StatusOK, patient)
}

// Update handles PUT /api/patients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdatePatientRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	patient, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update patient")
		return
	}
	respond.JSON(w, http.StatusOK, patient)
}

// Delete handles DELETE /api/patients/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete patient")
		return
	}
	h.logger.Info("patient deleted", "id", id)
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Patient deleted successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		respond.Error(w, "Patient not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		respond.Error(w, "Patient with this email already exists", http.StatusBadRequest)
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidDate):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(fallback, "error", err)
		respond.Error(w, fallback, http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
