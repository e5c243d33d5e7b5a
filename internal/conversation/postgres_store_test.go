package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_GetOrCreateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO chat_sessions .* ON CONFLICT \(session_id\) DO UPDATE`).
		WithArgs("tok", "en", SessionActive).
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "patient_id", "language", "status", "created_at", "updated_at", "created"}).
			AddRow(int64(4), "tok", (*int64)(nil), "en", SessionActive, now, now, true))

	store := NewPostgresStoreWithDB(mock)
	sess, created, err := store.GetOrCreateSession(context.Background(), "tok", "en")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(4), sess.ID)
	assert.Equal(t, "tok", sess.SessionID)
	assert.Nil(t, sess.PatientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindSessionNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM chat_sessions WHERE session_id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresStoreWithDB(mock).FindSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostgresStore_AppendMessage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(int64(4), SenderAssistant, "hello", "greeting", `{"step":"x"}`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "timestamp"}).AddRow(int64(9), now))

	msg, err := NewPostgresStoreWithDB(mock).AppendMessage(context.Background(), &Message{
		SessionRef:  4,
		Sender:      SenderAssistant,
		Message:     "hello",
		MessageType: "greeting",
		Metadata:    map[string]any{"step": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), msg.ID)
	assert.Equal(t, now, msg.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendMessageUnknownSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO chat_messages`).
		WithArgs(int64(99), SenderUser, "hi", "text", `{}`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err = NewPostgresStoreWithDB(mock).AppendMessage(context.Background(), &Message{SessionRef: 99, Sender: SenderUser, Message: "hi", MessageType: "text"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostgresStore_RecentMessages(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	cols := []string{"id", "session_ref", "sender", "message", "message_type", "metadata", "timestamp"}
	mock.ExpectQuery(`ORDER BY id DESC LIMIT \$2\s+\) recent ORDER BY id`).
		WithArgs(int64(4), 5).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), int64(4), SenderUser, "hi", "text", []byte(`{}`), now).
			AddRow(int64(2), int64(4), SenderAssistant, "hello", "greeting", []byte(`{"a":1}`), now))

	msgs, err := NewPostgresStoreWithDB(mock).RecentMessages(context.Background(), 4, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Message)
	assert.Equal(t, float64(1), msgs[1].Metadata["a"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStoreRecentMessagesWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sess, created, err := store.GetOrCreateSession(ctx, "tok", "en")
	require.NoError(t, err)
	assert.True(t, created)

	for _, text := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		_, err := store.AppendMessage(ctx, &Message{SessionRef: sess.ID, Sender: SenderUser, Message: text})
		require.NoError(t, err)
	}
	msgs, err := store.RecentMessages(ctx, sess.ID, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	assert.Equal(t, "3", msgs[0].Message)
	assert.Equal(t, "7", msgs[4].Message)

	again, created, err := store.GetOrCreateSession(ctx, "tok", "fr")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "en", again.Language)

	_, err = store.AppendMessage(ctx, &Message{SessionRef: 42, Sender: SenderUser, Message: "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
