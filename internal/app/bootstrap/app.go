package bootstrap

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-assistant/internal/api/router"
	"github.com/wolfman30/clinic-assistant/internal/appointments"
	"github.com/wolfman30/clinic-assistant/internal/auth"
	"github.com/wolfman30/clinic-assistant/internal/calendar"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/conversation"
	"github.com/wolfman30/clinic-assistant/internal/intake"
	"github.com/wolfman30/clinic-assistant/internal/knowledge"
	"github.com/wolfman30/clinic-assistant/internal/notify"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/patients"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Stores are the persistence backends behind every handler.
type Stores struct {
	Users        auth.UserRepository
	Revocations  auth.Revocations
	Patients     patients.Repository
	Appointments appointments.Repository
	Intake       intake.Repository
	Knowledge    knowledge.Repository
	Doctors      clinic.DoctorRepository
	Chat         conversation.Store
	Settings     *clinic.SettingsStore

	// stats is nil for the in-memory stores; counters are then assembled
	// from the repositories.
	stats clinic.StatsSource
}

// BuildStores returns PostgreSQL stores when pool is set, in-memory stores
// otherwise. Redis, when present, backs token revocation and caches settings.
func BuildStores(pool *pgxpool.Pool, redisClient *redis.Client) *Stores {
	s := &Stores{Revocations: auth.NewMemoryRevocations()}
	if redisClient != nil {
		s.Revocations = auth.NewRedisRevocations(redisClient)
	}

	var kv clinic.KV
	if pool != nil {
		s.Users = auth.NewPostgresUserRepository(pool)
		s.Patients = patients.NewPostgresRepository(pool)
		s.Appointments = appointments.NewPostgresRepository(pool)
		s.Intake = intake.NewPostgresRepository(pool)
		s.Knowledge = knowledge.NewPostgresRepository(pool)
		s.Doctors = clinic.NewPostgresDoctorRepository(pool)
		s.Chat = conversation.NewPostgresStore(pool)
		s.stats = clinic.NewPostgresStats(pool)
		kv = clinic.NewPostgresKV(pool)
	} else {
		s.Users = auth.NewInMemoryUserRepository()
		s.Patients = patients.NewInMemoryRepository()
		s.Appointments = appointments.NewInMemoryRepository()
		s.Intake = intake.NewInMemoryRepository()
		s.Knowledge = knowledge.NewInMemoryRepository()
		s.Doctors = clinic.NewInMemoryDoctorRepository()
		s.Chat = conversation.NewMemoryStore()
		kv = clinic.NewMemoryKV()
	}
	s.Settings = clinic.NewSettingsStore(clinic.NewRedisCachedKV(kv, redisClient, 0))
	return s
}

// Deps are the runtime collaborators built by the binary.
type Deps struct {
	Config         *appconfig.Config
	Stores         *Stores
	LLM            conversation.LLMClient // nil for rule-based replies
	Email          notify.EmailSender     // nil disables confirmations
	Metrics        *metrics.ClinicMetrics
	MetricsHandler http.Handler
	Logger         *logging.Logger
}

// BuildRouterConfig assembles services and handlers into the HTTP router config.
func BuildRouterConfig(deps Deps) (*router.Config, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if deps.Stores == nil {
		return nil, fmt.Errorf("bootstrap: stores are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	stores := deps.Stores
	policy := ExternalPolicy(cfg)

	secret := strings.TrimSpace(cfg.SessionSecret)
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("bootstrap: SESSION_SECRET is required in production")
		}
		secret = uuid.NewString()
		logger.Warn("SESSION_SECRET not set; using an ephemeral secret, sessions end on restart")
	}
	tokens := auth.NewTokenManager(secret, cfg.SessionTTL, stores.Revocations)

	var (
		calendarSvc     *calendar.Service
		calendarHandler *calendar.Handler
	)
	if cfg.CalendarConfigured() {
		provider := calendar.NewGoogleProvider(calendar.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURI:  cfg.GoogleRedirectURI,
			RefreshToken: cfg.GoogleRefreshToken,
			CalendarID:   cfg.GoogleCalendarID,
		}, stores.Settings)
		calendarSvc = calendar.NewService(provider, policy, logger, deps.Metrics)
		calendarHandler = calendar.NewHandler(provider, cfg.CookieSecure, logger)
	} else {
		logger.Info("google calendar not configured; default slots will be offered")
	}

	var notifier *notify.Service
	if deps.Email != nil {
		notifier = notify.NewService(deps.Email, policy, deps.Metrics, logger)
	}

	apptService := appointments.NewService(stores.Appointments, stores.Patients, calendarSvc, notifier, stores.Settings, logger)

	stats := stores.stats
	if stats == nil {
		stats = clinic.FuncStats{
			Patients:            stores.Patients.Count,
			Appointments:        apptService.Count,
			PendingAppointments: apptService.CountPending,
			FAQs:                stores.Knowledge.CountActiveFAQs,
		}
	}

	engine := conversation.NewEngine(stores.Chat, stores.Knowledge, stores.Settings, stores.Doctors, deps.LLM, logger, deps.Metrics)
	chatService := conversation.NewService(stores.Chat, engine, logger)

	return &router.Config{
		Logger:             logger,
		Metrics:            deps.Metrics,
		MetricsHandler:     deps.MetricsHandler,
		CORSAllowedOrigins: cfg.AllowedOrigins,
		Tokens:             tokens,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,

		Auth:         auth.NewHandler(stores.Users, tokens, cfg.CookieSecure, logger),
		Chat:         conversation.NewHandler(chatService, cfg.CookieSecure, logger),
		Patients:     patients.NewHandler(stores.Patients, logger),
		Appointments: appointments.NewHandler(apptService, calendarSvc, logger),
		Intake:       intake.NewHandler(stores.Intake, stores.Patients, logger),
		Knowledge:    knowledge.NewHandler(stores.Knowledge, logger),
		Clinic:       clinic.NewHandler(stores.Settings, stores.Doctors, stats, logger),
		Calendar:     calendarHandler,
	}, nil
}

// BuildHandler is BuildRouterConfig followed by router.New.
func BuildHandler(deps Deps) (http.Handler, error) {
	routerCfg, err := BuildRouterConfig(deps)
	if err != nil {
		return nil, err
	}
	return router.New(routerCfg), nil
}
