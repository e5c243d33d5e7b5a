package clinic

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stats are the admin dashboard counters.
type Stats struct {
	TotalPatients       int64 `json:"total_patients"`
	TotalAppointments   int64 `json:"total_appointments"`
	PendingAppointments int64 `json:"pending_appointments"`
	TotalFAQs           int64 `json:"total_faqs"`
}

// StatsSource produces dashboard counters.
type StatsSource interface {
	Stats(ctx context.Context) (*Stats, error)
}

type statsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStats counts rows straight from the tables.
type PostgresStats struct {
	db statsDB
}

func NewPostgresStats(pool *pgxpool.Pool) *PostgresStats {
	if pool == nil {
		panic("clinic: pgx pool required for stats")
	}
	return &PostgresStats{db: pool}
}

// NewPostgresStatsWithDB allows injecting a mock database for testing.
func NewPostgresStatsWithDB(db statsDB) *PostgresStats {
	return &PostgresStats{db: db}
}

func (s *PostgresStats) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	counts := []struct {
		name  string
		query string
		dst   *int64
	}{
		{"patients", `SELECT COUNT(*) FROM patients`, &out.TotalPatients},
		{"appointments", `SELECT COUNT(*) FROM appointments`, &out.TotalAppointments},
		{"pending appointments", `SELECT COUNT(*) FROM appointments WHERE status = 'scheduled'`, &out.PendingAppointments},
		{"faqs", `SELECT COUNT(*) FROM faqs WHERE is_active = TRUE`, &out.TotalFAQs},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("clinic stats: count %s: %w", c.name, err)
		}
	}
	return out, nil
}

// CounterFunc returns a single count.
type CounterFunc func(ctx context.Context) (int64, error)

// FuncStats assembles stats from per-entity counters. Nil counters report zero.
// Used with the in-memory repositories.
type FuncStats struct {
	Patients            CounterFunc
	Appointments        CounterFunc
	PendingAppointments CounterFunc
	FAQs                CounterFunc
}

func (f FuncStats) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	pairs := []struct {
		fn  CounterFunc
		dst *int64
	}{
		{f.Patients, &out.TotalPatients},
		{f.Appointments, &out.TotalAppointments},
		{f.PendingAppointments, &out.PendingAppointments},
		{f.FAQs, &out.TotalFAQs},
	}
	for _, p := range pairs {
		if p.fn == nil {
			continue
		}
		n, err := p.fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("clinic stats: %w", err)
		}
		*p.dst = n
	}
	return out, nil
}
