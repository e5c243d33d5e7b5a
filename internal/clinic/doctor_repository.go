package clinic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

// DoctorRepository stores the doctor roster. Doctors are never hard-deleted.
type DoctorRepository interface {
	Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error)
	// GetByID returns inactive doctors too.
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	ListActive(ctx context.Context) ([]*Doctor, error)
	Update(ctx context.Context, id int64, req *UpdateDoctorRequest) (*Doctor, error)
	Deactivate(ctx context.Context, id int64) error
}

// InMemoryDoctorRepository keeps doctors in a map.
type InMemoryDoctorRepository struct {
	mu      sync.RWMutex
	nextID  int64
	doctors map[int64]*Doctor
}

func NewInMemoryDoctorRepository() *InMemoryDoctorRepository {
	return &InMemoryDoctorRepository{doctors: make(map[int64]*Doctor)}
}

func (r *InMemoryDoctorRepository) Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d := req.toDoctor()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	d.ID, d.CreatedAt, d.UpdatedAt = r.nextID, now, now
	r.doctors[d.ID] = d
	out := *d
	return &out, nil
}

func (r *InMemoryDoctorRepository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	out := *d
	return &out, nil
}

func (r *InMemoryDoctorRepository) ListActive(ctx context.Context) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Doctor
	for _, d := range r.doctors {
		if d.IsActive {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryDoctorRepository) Update(ctx context.Context, id int64, req *UpdateDoctorRequest) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	updated := *d
	req.Apply(&updated)
	updated.UpdatedAt = time.Now().UTC()
	r.doctors[id] = &updated
	out := updated
	return &out, nil
}

func (r *InMemoryDoctorRepository) Deactivate(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return ErrDoctorNotFound
	}
	d.IsActive = false
	d.UpdatedAt = time.Now().UTC()
	return nil
}

const doctorColumns = `id, first_name, last_name, title, specialization, department, email, phone,
	license_number, availability, in_person_consultation, video_consultation, phone_consultation,
	bio, profile_image_url, years_of_experience, languages_spoken, is_active, created_at, updated_at`

// PostgresDoctorRepository stores doctors in the relational database.
type PostgresDoctorRepository struct {
	db database.DB
}

func NewPostgresDoctorRepository(pool *pgxpool.Pool) *PostgresDoctorRepository {
	if pool == nil {
		panic("clinic: pgx pool required for doctors")
	}
	return &PostgresDoctorRepository{db: pool}
}

// NewPostgresDoctorRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresDoctorRepositoryWithDB(db database.DB) *PostgresDoctorRepository {
	return &PostgresDoctorRepository{db: db}
}

func (r *PostgresDoctorRepository) Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d := req.toDoctor()
	query := `
		INSERT INTO doctors (first_name, last_name, title, specialization, department, email, phone,
			license_number, availability, in_person_consultation, video_consultation, phone_consultation,
			bio, profile_image_url, years_of_experience, languages_spoken)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, is_active, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		d.FirstName, d.LastName, d.Title, d.Specialization, d.Department, d.Email, d.Phone,
		d.LicenseNumber, string(d.Availability), d.InPersonConsultation, d.VideoConsultation, d.PhoneConsultation,
		d.Bio, d.ProfileImageURL, d.YearsOfExperience, d.LanguagesSpoken,
	).Scan(&d.ID, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("clinic: insert doctor: %w", err)
	}
	return d, nil
}

func (r *PostgresDoctorRepository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	return scanDoctor(r.db.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id))
}

func (r *PostgresDoctorRepository) ListActive(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("clinic: list doctors: %w", err)
	}
	defer rows.Close()
	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clinic: list doctors rows: %w", err)
	}
	return out, nil
}

func (r *PostgresDoctorRepository) Update(ctx context.Context, id int64, req *UpdateDoctorRequest) (*Doctor, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("clinic: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	d, err := scanDoctor(tx.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	req.Apply(d)

	query := `
		UPDATE doctors SET first_name = $2, last_name = $3, title = $4, specialization = $5,
			department = $6, email = $7, phone = $8, license_number = $9, availability = $10::jsonb,
			in_person_consultation = $11, video_consultation = $12, phone_consultation = $13,
			bio = $14, profile_image_url = $15, years_of_experience = $16, languages_spoken = $17,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, query, id,
		d.FirstName, d.LastName, d.Title, d.Specialization, d.Department, d.Email, d.Phone,
		d.LicenseNumber, string(d.Availability), d.InPersonConsultation, d.VideoConsultation, d.PhoneConsultation,
		d.Bio, d.ProfileImageURL, d.YearsOfExperience, d.LanguagesSpoken,
	).Scan(&d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("clinic: update doctor: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("clinic: commit doctor: %w", err)
	}
	return d, nil
}

func (r *PostgresDoctorRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE doctors SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clinic: deactivate doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var availability []byte
	if err := row.Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.Title, &d.Specialization, &d.Department, &d.Email, &d.Phone,
		&d.LicenseNumber, &availability, &d.InPersonConsultation, &d.VideoConsultation, &d.PhoneConsultation,
		&d.Bio, &d.ProfileImageURL, &d.YearsOfExperience, &d.LanguagesSpoken, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("clinic: scan doctor: %w", err)
	}
	d.Availability = rawJSON(availability)
	return &d, nil
}
