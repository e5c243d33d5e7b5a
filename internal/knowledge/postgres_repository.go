package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

const (
	faqColumns       = `id, category, question, answer, language, is_active, created_at, updated_at`
	aftercareColumns = `id, title, treatment_type, instructions, COALESCE(precautions, ''),
	COALESCE(follow_up_timeline, ''), COALESCE(emergency_signs, ''), language, is_active, created_at, updated_at`
)

// PostgresRepository implements Repository against PostgreSQL.
type PostgresRepository struct {
	db database.DB
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("knowledge: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateFAQ(ctx context.Context, req *CreateFAQRequest) (*FAQ, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f := req.toFAQ()
	err := r.db.QueryRow(ctx, `
		INSERT INTO faqs (category, question, answer, language)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at`,
		f.Category, f.Question, f.Answer, f.Language,
	).Scan(&f.ID, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("knowledge: insert faq: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) GetFAQ(ctx context.Context, id int64) (*FAQ, error) {
	return scanFAQ(r.db.QueryRow(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id = $1`, id))
}

func (r *PostgresRepository) ListFAQs(ctx context.Context, filter FAQFilter) ([]*FAQ, error) {
	where, args := activeWhere(map[string]string{"language": filter.Language, "category": filter.Category})
	rows, err := r.db.Query(ctx, `SELECT `+faqColumns+` FROM faqs`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list faqs: %w", err)
	}
	defer rows.Close()

	out := []*FAQ{}
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge: list faqs rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateFAQ(ctx context.Context, id int64, req *UpdateFAQRequest) (*FAQ, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("knowledge: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	f, err := scanFAQ(tx.QueryRow(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	req.Apply(f)
	if err := tx.QueryRow(ctx, `
		UPDATE faqs SET category = $2, question = $3, answer = $4, language = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		id, f.Category, f.Question, f.Answer, f.Language,
	).Scan(&f.UpdatedAt); err != nil {
		return nil, fmt.Errorf("knowledge: update faq: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("knowledge: commit faq: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) DeactivateFAQ(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE faqs SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("knowledge: deactivate faq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFAQNotFound
	}
	return nil
}

func (r *PostgresRepository) CountActiveFAQs(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM faqs WHERE is_active = TRUE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("knowledge: count faqs: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CreateAftercare(ctx context.Context, req *CreateAftercareRequest) (*Aftercare, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a := req.toAftercare()
	err := r.db.QueryRow(ctx, `
		INSERT INTO aftercare_instructions (title, treatment_type, instructions, precautions,
			follow_up_timeline, emergency_signs, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, updated_at`,
		a.Title, a.TreatmentType, a.Instructions, a.Precautions, a.FollowUpTimeline, a.EmergencySigns, a.Language,
	).Scan(&a.ID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("knowledge: insert aftercare: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListAftercare(ctx context.Context, filter AftercareFilter) ([]*Aftercare, error) {
	where, args := activeWhere(map[string]string{"language": filter.Language, "treatment_type": filter.TreatmentType})
	rows, err := r.db.Query(ctx, `SELECT `+aftercareColumns+` FROM aftercare_instructions`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list aftercare: %w", err)
	}
	defer rows.Close()

	out := []*Aftercare{}
	for rows.Next() {
		var a Aftercare
		if err := rows.Scan(&a.ID, &a.Title, &a.TreatmentType, &a.Instructions, &a.Precautions,
			&a.FollowUpTimeline, &a.EmergencySigns, &a.Language, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("knowledge: scan aftercare: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge: list aftercare rows: %w", err)
	}
	return out, nil
}

// activeWhere builds "WHERE is_active = TRUE AND col = $n ..." for the non-empty
// filters, in a stable column order.
func activeWhere(filters map[string]string) (string, []any) {
	cols := make([]string, 0, len(filters))
	for col, v := range filters {
		if v != "" {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	clauses := []string{"is_active = TRUE"}
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, filters[col])
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanFAQ(row pgx.Row) (*FAQ, error) {
	var f FAQ
	if err := row.Scan(&f.ID, &f.Category, &f.Question, &f.Answer, &f.Language, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFAQNotFound
		}
		return nil, fmt.Errorf("knowledge: scan faq: %w", err)
	}
	return &f, nil
}
