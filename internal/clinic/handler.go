package clinic

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Handler serves the admin settings, doctor roster and dashboard endpoints.
type Handler struct {
	settings *SettingsStore
	doctors  DoctorRepository
	stats    StatsSource
	logger   *logging.Logger
}

// NewHandler creates the admin handler. stats may be nil.
func NewHandler(settings *SettingsStore, doctors DoctorRepository, stats StatsSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		settings: settings,
		doctors:  doctors,
		stats:    stats,
		logger:   logger,
	}
}

// Routes returns a chi router with the admin clinic routes. Mount behind RequireAdmin.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/clinic-settings", h.GetClinicSettings)
	r.Post("/clinic-settings", h.UpdateClinicSettings)
	r.Get("/booking-settings", h.GetBookingSettings)
	r.Post("/booking-settings", h.UpdateBookingSettings)
	r.Get("/doctors", h.ListDoctors)
	r.Post("/doctors", h.CreateDoctor)
	r.Get("/doctors/{id}", h.GetDoctor)
	r.Put("/doctors/{id}", h.UpdateDoctor)
	r.Delete("/doctors/{id}", h.DeleteDoctor)
	r.Get("/stats", h.GetStats)
	return r
}

// GetClinicSettings returns the singleton, creating defaults on first access.
// GET /admin/clinic-settings
func (h *Handler) GetClinicSettings(w http.ResponseWriter, r *http.Request) {
	cs, err := h.settings.ClinicSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load clinic settings", "error", err)
		respond.Error(w, "failed to load clinic settings", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, cs)
}

// UpdateClinicSettings applies a partial update.
// POST /admin/clinic-settings
func (h *Handler) UpdateClinicSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateClinicSettingsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	cs, err := h.settings.ClinicSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load clinic settings", "error", err)
		respond.Error(w, "failed to update clinic settings", http.StatusInternalServerError)
		return
	}
	req.Apply(cs)
	if err := h.settings.SaveClinicSettings(r.Context(), cs); err != nil {
		h.logger.Error("failed to save clinic settings", "error", err)
		respond.Error(w, "failed to update clinic settings", http.StatusInternalServerError)
		return
	}
	h.logger.Info("clinic settings updated")
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Clinic settings updated successfully",
	})
}

// GetBookingSettings returns the booking policy singleton.
// GET /admin/booking-settings
func (h *Handler) GetBookingSettings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.settings.BookingSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load booking settings", "error", err)
		respond.Error(w, "failed to load booking settings", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, bs)
}

// UpdateBookingSettings applies a partial update.
// POST /admin/booking-settings
func (h *Handler) UpdateBookingSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookingSettingsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bs, err := h.settings.BookingSettings(r.Context())
	if err != nil {
		h.logger.Error("failed to load booking settings", "error", err)
		respond.Error(w, "failed to update booking settings", http.StatusInternalServerError)
		return
	}
	req.Apply(bs)
	if err := h.settings.SaveBookingSettings(r.Context(), bs); err != nil {
		h.logger.Error("failed to save booking settings", "error", err)
		respond.Error(w, "failed to update booking settings", http.StatusInternalServerError)
		return
	}
	h.logger.Info("booking settings updated")
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking settings updated successfully",
	})
}

// ListDoctors returns active doctors only.
// GET /admin/doctors
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctors.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		respond.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}
	if doctors == nil {
		doctors = []*Doctor{}
	}
	respond.JSON(w, http.StatusOK, doctors)
}

// CreateDoctor adds a doctor to the roster.
// POST /admin/doctors
func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	doctor, err := h.doctors.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "failed to add doctor")
		return
	}
	h.logger.Info("doctor added", "id", doctor.ID)
	respond.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Doctor added successfully",
		"doctor":  doctor,
	})
}

// GetDoctor returns a doctor by id, including deactivated ones.
// GET /admin/doctors/{id}
func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doctor, err := h.doctors.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to load doctor")
		return
	}
	respond.JSON(w, http.StatusOK, doctor)
}

// UpdateDoctor applies a partial update.
// PUT /admin/doctors/{id}
func (h *Handler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdateDoctorRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	doctor, err := h.doctors.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "failed to update doctor")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Doctor updated successfully",
		"doctor":  doctor,
	})
}

// DeleteDoctor soft-deletes a doctor.
// DELETE /admin/doctors/{id}
func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.doctors.Deactivate(r.Context(), id); err != nil {
		h.writeError(w, err, "failed to deactivate doctor")
		return
	}
	h.logger.Info("doctor deactivated", "id", id)
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Doctor deactivated successfully",
	})
}

// GetStats returns the dashboard counters.
// GET /admin/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		respond.JSON(w, http.StatusOK, &Stats{})
		return
	}
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get clinic stats", "error", err)
		respond.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		respond.Error(w, "Doctor not found", http.StatusNotFound)
	case errors.Is(err, ErrDoctorNameRequired):
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
