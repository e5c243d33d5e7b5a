// Package intake records the pre-visit questionnaire patients submit.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

var (
	// ErrMissingFields is returned when patient_email or chief_complaint is blank.
	ErrMissingFields = errors.New("patient_email and chief_complaint are required")

	// ErrInvalidPainLevel is returned for pain levels outside 1-10.
	ErrInvalidPainLevel = errors.New("pain_level must be between 1 and 10")

	// ErrUnknownAppointment is returned when appointment_id does not exist.
	ErrUnknownAppointment = errors.New("appointment not found")
)

// Form is a submitted intake questionnaire.
type Form struct {
	ID                 int64     `json:"id"`
	PatientID          int64     `json:"patient_id"`
	AppointmentID      *int64    `json:"appointment_id"`
	ChiefComplaint     string    `json:"chief_complaint"`
	Symptoms           string    `json:"symptoms"`
	SymptomDuration    string    `json:"symptom_duration"`
	PainLevel          *int      `json:"pain_level"`
	PreviousTreatments string    `json:"previous_treatments"`
	AdditionalNotes    string    `json:"additional_notes"`
	CompletedAt        time.Time `json:"completed_at"`
}

// SubmitRequest is the payload for POST /api/intake-form.
type SubmitRequest struct {
	PatientEmail       string `json:"patient_email"`
	AppointmentID      *int64 `json:"appointment_id"`
	ChiefComplaint     string `json:"chief_complaint"`
	Symptoms           string `json:"symptoms"`
	SymptomDuration    string `json:"symptom_duration"`
	PainLevel          *int   `json:"pain_level"`
	PreviousTreatments string `json:"previous_treatments"`
	AdditionalNotes    string `json:"additional_notes"`
}

// Validate checks required fields and the pain scale.
func (r *SubmitRequest) Validate() error {
	if strings.TrimSpace(r.PatientEmail) == "" || strings.TrimSpace(r.ChiefComplaint) == "" {
		return ErrMissingFields
	}
	if r.PainLevel != nil && (*r.PainLevel < 1 || *r.PainLevel > 10) {
		return ErrInvalidPainLevel
	}
	return nil
}

func (r *SubmitRequest) toForm(patientID int64) *Form {
	return &Form{
		PatientID:          patientID,
		AppointmentID:      r.AppointmentID,
		ChiefComplaint:     r.ChiefComplaint,
		Symptoms:           r.Symptoms,
		SymptomDuration:    r.SymptomDuration,
		PainLevel:          r.PainLevel,
		PreviousTreatments: r.PreviousTreatments,
		AdditionalNotes:    r.AdditionalNotes,
	}
}

// Repository stores intake forms.
type Repository interface {
	Create(ctx context.Context, f *Form) (*Form, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Form, error)
}

// InMemoryRepository keeps forms in a map.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	forms  map[int64]*Form
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{forms: make(map[int64]*Form)}
}

func (r *InMemoryRepository) Create(ctx context.Context, f *Form) (*Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *f
	stored.ID = r.nextID
	stored.CompletedAt = time.Now().UTC()
	r.forms[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID int64) ([]*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Form
	for _, f := range r.forms {
		if f.PatientID == patientID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PostgresRepository implements Repository against PostgreSQL.
type PostgresRepository struct {
	db database.DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("intake: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, f *Form) (*Form, error) {
	out := *f
	query := `
		INSERT INTO intake_forms (patient_id, appointment_id, chief_complaint, symptoms, symptom_duration,
			pain_level, previous_treatments, additional_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, completed_at
	`
	err := r.db.QueryRow(ctx, query,
		out.PatientID, out.AppointmentID, out.ChiefComplaint, out.Symptoms, out.SymptomDuration,
		out.PainLevel, out.PreviousTreatments, out.AdditionalNotes,
	).Scan(&out.ID, &out.CompletedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUnknownAppointment
		}
		return nil, fmt.Errorf("intake: insert failed: %w", err)
	}
	return &out, nil
}

func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID int64) ([]*Form, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, patient_id, appointment_id, chief_complaint, COALESCE(symptoms, ''),
			COALESCE(symptom_duration, ''), pain_level, COALESCE(previous_treatments, ''),
			COALESCE(additional_notes, ''), completed_at
		FROM intake_forms WHERE patient_id = $1 ORDER BY id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("intake: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Form
	for rows.Next() {
		var f Form
		if err := rows.Scan(&f.ID, &f.PatientID, &f.AppointmentID, &f.ChiefComplaint, &f.Symptoms,
			&f.SymptomDuration, &f.PainLevel, &f.PreviousTreatments, &f.AdditionalNotes, &f.CompletedAt); err != nil {
			return nil, fmt.Errorf("intake: scan failed: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
