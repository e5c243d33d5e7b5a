package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

const sessionColumns = `id, session_id, patient_id, language, status, created_at, updated_at`

// PostgresStore persists chat_sessions and chat_messages.
type PostgresStore struct {
	db database.DB
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("conversation: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB allows injecting a mock database for testing.
func NewPostgresStoreWithDB(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetOrCreateSession upserts on the unique session_id; xmax = 0 only for a fresh insert.
func (s *PostgresStore) GetOrCreateSession(ctx context.Context, token, language string) (*Session, bool, error) {
	var sess Session
	var created bool
	err := s.db.QueryRow(ctx, `
		INSERT INTO chat_sessions (session_id, language, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET updated_at = NOW()
		RETURNING `+sessionColumns+`, (xmax = 0) AS created`,
		token, language, SessionActive,
	).Scan(&sess.ID, &sess.SessionID, &sess.PatientID, &sess.Language, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("conversation: upsert session: %w", err)
	}
	return &sess, created, nil
}

func (s *PostgresStore) FindSession(ctx context.Context, token string) (*Session, error) {
	var sess Session
	err := s.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM chat_sessions WHERE session_id = $1`, token).
		Scan(&sess.ID, &sess.SessionID, &sess.PatientID, &sess.Language, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: find session: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, m *Message) (*Message, error) {
	meta, err := json.Marshal(metadataOrEmpty(m.Metadata))
	if err != nil {
		return nil, fmt.Errorf("conversation: encode metadata: %w", err)
	}
	out := *m
	err = s.db.QueryRow(ctx, `
		INSERT INTO chat_messages (session_ref, sender, message, message_type, metadata)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING id, timestamp`,
		m.SessionRef, m.Sender, m.Message, m.MessageType, string(meta),
	).Scan(&out.ID, &out.Timestamp)
	if database.IsForeignKeyViolation(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: insert message: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) RecentMessages(ctx context.Context, sessionRef int64, limit int) ([]*Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_ref, sender, message, message_type, metadata, timestamp FROM (
			SELECT id, session_ref, sender, message, message_type, metadata, timestamp
			FROM chat_messages WHERE session_ref = $1
			ORDER BY id DESC LIMIT $2
		) recent ORDER BY id`, sessionRef, limit)
	if err != nil {
		return nil, fmt.Errorf("conversation: recent messages: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		var meta []byte
		if err := rows.Scan(&m.ID, &m.SessionRef, &m.Sender, &m.Message, &m.MessageType, &meta, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("conversation: scan message: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("conversation: decode metadata: %w", err)
			}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
