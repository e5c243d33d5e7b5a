package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

const patientColumns = `id, first_name, last_name, email, phone, date_of_birth,
	COALESCE(gender, ''), COALESCE(address, ''), COALESCE(emergency_contact, ''),
	COALESCE(emergency_phone, ''), COALESCE(insurance_provider, ''), COALESCE(insurance_number, ''),
	COALESCE(medical_history, ''), COALESCE(allergies, ''), COALESCE(current_medications, ''),
	preferred_language, created_at, updated_at`

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := req.toPatient()
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO patients (first_name, last_name, email, phone, date_of_birth, gender, address,
			emergency_contact, emergency_phone, insurance_provider, insurance_number,
			medical_history, allergies, current_medications, preferred_language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.Gender, p.Address,
		p.EmergencyContact, p.EmergencyPhone, p.InsuranceProvider, p.InsuranceNumber,
		p.MedicalHistory, p.Allergies, p.CurrentMedications, p.PreferredLanguage,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("patients: insert failed: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Patient, error) {
	row := r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	return scanPatient(row)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	return scanPatient(row)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("patients: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: list rows: %w", err)
	}
	return out, nil
}

// Update applies a partial update inside a transaction holding the row lock.
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *UpdatePatientRequest) (*Patient, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("patients: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanPatient(tx.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := req.Apply(p); err != nil {
		return nil, err
	}

	query := `
		UPDATE patients SET first_name = $2, last_name = $3, phone = $4, date_of_birth = $5,
			gender = $6, address = $7, emergency_contact = $8, emergency_phone = $9,
			insurance_provider = $10, insurance_number = $11, medical_history = $12,
			allergies = $13, current_medications = $14, preferred_language = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, query, id,
		p.FirstName, p.LastName, p.Phone, p.DateOfBirth, p.Gender, p.Address,
		p.EmergencyContact, p.EmergencyPhone, p.InsuranceProvider, p.InsuranceNumber,
		p.MedicalHistory, p.Allergies, p.CurrentMedications, p.PreferredLanguage,
	).Scan(&p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("patients: update failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("patients: commit: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patients: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("patients: count: %w", err)
	}
	return n, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth,
		&p.Gender, &p.Address, &p.EmergencyContact, &p.EmergencyPhone,
		&p.InsuranceProvider, &p.InsuranceNumber, &p.MedicalHistory, &p.Allergies,
		&p.CurrentMedications, &p.PreferredLanguage, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: scan: %w", err)
	}
	return &p, nil
}
