package conversation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Session statuses.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// Message senders.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

var ErrSessionNotFound = errors.New("conversation: session not found")

// Session is a chat conversation. SessionID is the public correlation token
// handed to clients; ID is the row id messages point at.
type Session struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	PatientID *int64    `json:"patient_id,omitempty"`
	Language  string    `json:"language"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one stored chat turn. SessionRef is Session.ID, not the public token.
type Message struct {
	ID          int64          `json:"id"`
	SessionRef  int64          `json:"session_ref"`
	Sender      string         `json:"sender"`
	Message     string         `json:"message"`
	MessageType string         `json:"message_type"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Store persists chat sessions and their messages.
type Store interface {
	// GetOrCreateSession returns the session for token, creating it with
	// language when absent. created reports which happened.
	GetOrCreateSession(ctx context.Context, token, language string) (s *Session, created bool, err error)
	FindSession(ctx context.Context, token string) (*Session, error)
	AppendMessage(ctx context.Context, m *Message) (*Message, error)
	// RecentMessages returns up to limit newest messages, oldest first.
	RecentMessages(ctx context.Context, sessionRef int64, limit int) ([]*Message, error)
}

// MemoryStore keeps sessions and messages in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	nextMsg  int64
	sessions map[string]*Session
	messages map[int64][]*Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		messages: make(map[int64][]*Message),
	}
}

func (s *MemoryStore) GetOrCreateSession(ctx context.Context, token, language string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[token]; ok {
		cp := *existing
		return &cp, false, nil
	}
	s.nextID++
	now := time.Now().UTC()
	sess := &Session{
		ID:        s.nextID,
		SessionID: token,
		Language:  language,
		Status:    SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[token] = sess
	cp := *sess
	return &cp, true, nil
}

func (s *MemoryStore) FindSession(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, m *Message) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, sess := range s.sessions {
		if sess.ID == m.SessionRef {
			known = true
			sess.UpdatedAt = time.Now().UTC()
			break
		}
	}
	if !known {
		return nil, ErrSessionNotFound
	}
	s.nextMsg++
	cp := *m
	cp.ID = s.nextMsg
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now().UTC()
	}
	s.messages[m.SessionRef] = append(s.messages[m.SessionRef], &cp)
	out := cp
	return &out, nil
}

func (s *MemoryStore) RecentMessages(ctx context.Context, sessionRef int64, limit int) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.messages[sessionRef]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*Message, 0, len(all))
	for _, m := range all {
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
