package intake

import (
	"context"
	"errors"
	"net/http"

	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/internal/patients"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// PatientFinder resolves the submitting patient by email.
type PatientFinder interface {
	GetByEmail(ctx context.Context, email string) (*patients.Patient, error)
}

// Handler accepts intake submissions.
type Handler struct {
	repo     Repository
	patients PatientFinder
	logger   *logging.Logger
}

func NewHandler(repo Repository, finder PatientFinder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, patients: finder, logger: logger}
}

// Submit stores a questionnaire for an existing patient.
// POST /api/intake-form
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	patient, err := h.patients.GetByEmail(r.Context(), req.PatientEmail)
	if errors.Is(err, patients.ErrPatientNotFound) {
		respond.Error(w, "Patient not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to look up intake patient", "error", err)
		respond.Error(w, "Failed to submit intake form", http.StatusInternalServerError)
		return
	}

	form, err := h.repo.Create(r.Context(), req.toForm(patient.ID))
	if errors.Is(err, ErrUnknownAppointment) {
		respond.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to store intake form", "patient_id", patient.ID, "error", err)
		respond.Error(w, "Failed to submit intake form", http.StatusInternalServerError)
		return
	}
	h.logger.Info("intake form submitted", "id", form.ID, "patient_id", patient.ID)
	respond.JSON(w, http.StatusCreated, form)
}
