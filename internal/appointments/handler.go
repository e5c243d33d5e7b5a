package appointments

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-assistant/internal/calendar"
	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/internal/patients"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Handler serves the appointment endpoints and the public slot lookup.
type Handler struct {
	service  *Service
	calendar *calendar.Service
	logger   *logging.Logger
}

// NewHandler creates an appointment HTTP handler. calendarSvc may be nil.
func NewHandler(service *Service, calendarSvc *calendar.Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, calendar: calendarSvc, logger: logger}
}

// List returns every appointment.
// GET /api/appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		respond.Error(w, "Failed to list appointments", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*Appointment{}
	}
	respond.JSON(w, http.StatusOK, items)
}

// Create books an appointment.
// POST /api/appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	a, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create appointment")
		return
	}
	h.logger.Info("appointment created", "id", a.ID, "patient_id", a.PatientID, "calendar_synced", a.CalendarEventID != "")
	respond.JSON(w, http.StatusCreated, a)
}

// Get returns one appointment.
// GET /api/appointments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to load appointment")
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

// Update applies a partial update.
// PUT /api/appointments/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdateAppointmentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	a, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update appointment")
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

// Delete removes an appointment.
// DELETE /api/appointments/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete appointment")
		return
	}
	h.logger.Info("appointment deleted", "id", id)
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Appointment deleted successfully"})
}

// AvailableSlots lists free slots for a day.
// GET /api/available-slots?date=YYYY-MM-DD
func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		respond.Error(w, "Date parameter required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respond.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	respond.JSON(w, http.StatusOK, map[string][]string{"slots": h.calendar.ListAvailableSlots(r.Context(), date)})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrAppointmentNotFound):
		respond.Error(w, "Appointment not found", http.StatusNotFound)
	case errors.Is(err, patients.ErrPatientNotFound):
		respond.Error(w, "Patient not found", http.StatusNotFound)
	case isClientError(err):
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
