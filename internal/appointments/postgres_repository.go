package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

const appointmentColumns = `id, patient_id, doctor_id, appointment_date, appointment_type, status,
	COALESCE(reason_for_visit, ''), COALESCE(symptoms, ''), COALESCE(notes, ''),
	COALESCE(calendar_event_id, ''), created_at, updated_at`

// PostgresRepository implements Repository against PostgreSQL.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository creates a repository backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	out := *a
	if out.Status == "" {
		out.Status = StatusScheduled
	}
	query := `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_type, status,
			reason_for_visit, symptoms, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		out.PatientID, out.DoctorID, out.AppointmentDate, out.AppointmentType, out.Status,
		out.ReasonForVisit, out.Symptoms, out.Notes,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}
	return &out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY appointment_date, id`)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list rows: %w", err)
	}
	return out, nil
}

// Update applies a partial update inside a transaction holding the row lock.
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *UpdateAppointmentRequest) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := scanAppointment(tx.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := req.Apply(a); err != nil {
		return nil, err
	}

	query := `
		UPDATE appointments SET doctor_id = $2, appointment_date = $3, appointment_type = $4,
			status = $5, reason_for_visit = $6, symptoms = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, query, id,
		a.DoctorID, a.AppointmentDate, a.AppointmentType, a.Status, a.ReasonForVisit, a.Symptoms, a.Notes,
	).Scan(&a.UpdatedAt); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("appointments: update failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) SetCalendarEventID(ctx context.Context, id int64, eventID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET calendar_event_id = $2 WHERE id = $1`, id, eventID)
	if err != nil {
		return fmt.Errorf("appointments: set calendar event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("appointments: count: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("appointments: count by status: %w", err)
	}
	return n, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.AppointmentType, &a.Status,
		&a.ReasonForVisit, &a.Symptoms, &a.Notes, &a.CalendarEventID, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: scan failed: %w", err)
	}
	a.AppointmentDate = a.AppointmentDate.UTC()
	return &a, nil
}
