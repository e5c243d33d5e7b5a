package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-assistant/internal/appointments"
	"github.com/wolfman30/clinic-assistant/internal/auth"
	"github.com/wolfman30/clinic-assistant/internal/calendar"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
	"github.com/wolfman30/clinic-assistant/internal/conversation"
	httpmiddleware "github.com/wolfman30/clinic-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-assistant/internal/http/respond"
	"github.com/wolfman30/clinic-assistant/internal/intake"
	"github.com/wolfman30/clinic-assistant/internal/knowledge"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/patients"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Metrics            *metrics.ClinicMetrics
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	Tokens             *auth.TokenManager

	// Per-IP limits for the chat and login endpoints; zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	Auth         *auth.Handler
	Chat         *conversation.Handler
	Patients     *patients.Handler
	Appointments *appointments.Handler
	Intake       *intake.Handler
	Knowledge    *knowledge.Handler
	Clinic       *clinic.Handler
	Calendar     *calendar.Handler // optional
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.Metrics))
	r.Use(httpmiddleware.Session(cfg.Tokens, cfg.Logger))

	limited := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		limit := httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limited = func(h http.HandlerFunc) http.Handler { return limit(h) }
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/auth", func(a chi.Router) {
		a.Method(http.MethodPost, "/login", limited(cfg.Auth.Login))
		a.Post("/logout", cfg.Auth.Logout)
		a.Post("/create-admin", cfg.Auth.CreateAdmin)
		a.With(httpmiddleware.RequireAuthenticated).Get("/me", cfg.Auth.Me)
	})

	r.Route("/api", func(api chi.Router) {
		api.Method(http.MethodPost, "/chat", limited(cfg.Chat.Chat))
		api.Get("/languages", cfg.Chat.Languages)
		api.Get("/faqs", cfg.Knowledge.ListFAQs)
		api.Get("/aftercare", cfg.Knowledge.ListAftercare)
		api.Post("/intake-form", cfg.Intake.Submit)
		api.Get("/available-slots", cfg.Appointments.AvailableSlots)

		api.Group(func(staff chi.Router) {
			staff.Use(httpmiddleware.RequireAuthenticated)
			staff.Post("/faqs", cfg.Knowledge.CreateFAQ)
			staff.Route("/patients", func(p chi.Router) {
				p.Get("/", cfg.Patients.List)
				p.Post("/", cfg.Patients.Create)
				p.Get("/{id}", cfg.Patients.Get)
				p.Put("/{id}", cfg.Patients.Update)
				p.Delete("/{id}", cfg.Patients.Delete)
			})
			staff.Route("/appointments", func(p chi.Router) {
				p.Get("/", cfg.Appointments.List)
				p.Post("/", cfg.Appointments.Create)
				p.Get("/{id}", cfg.Appointments.Get)
				p.Put("/{id}", cfg.Appointments.Update)
				p.Delete("/{id}", cfg.Appointments.Delete)
			})
		})
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.RequireAdmin)
		admin.Mount("/faqs", cfg.Knowledge.AdminRoutes())
		if cfg.Calendar != nil {
			admin.Get("/calendar/connect", cfg.Calendar.Connect)
			admin.Get("/calendar/callback", cfg.Calendar.Callback)
		}
		admin.Mount("/", cfg.Clinic.Routes())
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Clinic assistant is running",
	})
}
