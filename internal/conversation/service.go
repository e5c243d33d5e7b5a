package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-assistant/internal/i18n"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var ErrMessageRequired = errors.New("conversation: message is required")

// Responder produces a reply for one message.
type Responder interface {
	Respond(ctx context.Context, message, sessionID, language string) Reply
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

type ChatResponse struct {
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata"`
	SessionID string         `json:"session_id"`
}

// Service records a chat turn around the engine's reply.
type Service struct {
	store     Store
	responder Responder
	logger    *logging.Logger
}

func NewService(store Store, responder Responder, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, responder: responder, logger: logger}
}

// Chat stores the user message before generating the reply and the reply
// after, so a failure in between leaves the user turn recorded. A missing
// session id starts a new session and a missing language means English.
// Only an empty message is returned as an error; every later failure comes
// back as the error reply.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrMessageRequired
	}
	token := strings.TrimSpace(req.SessionID)
	if token == "" {
		token = uuid.NewString()
	}
	language := i18n.Normalize(req.Language)

	sess, created, err := s.store.GetOrCreateSession(ctx, token, language)
	if err != nil {
		return s.failed(token, fmt.Errorf("conversation: load session: %w", err)), nil
	}
	if created {
		args := []any{"session_id", token, "language", language}
		if strings.TrimSpace(req.Language) == "" {
			args = append(args, "detected_language", i18n.DetectLanguage(message))
		}
		s.logger.Info("chat session started", args...)
	}

	if _, err := s.store.AppendMessage(ctx, &Message{
		SessionRef:  sess.ID,
		Sender:      SenderUser,
		Message:     message,
		MessageType: "text",
	}); err != nil {
		return s.failed(token, fmt.Errorf("conversation: save user message: %w", err)), nil
	}

	reply := s.responder.Respond(ctx, message, token, language)
	if reply.Metadata == nil {
		reply.Metadata = map[string]any{}
	}

	if _, err := s.store.AppendMessage(ctx, &Message{
		SessionRef:  sess.ID,
		Sender:      SenderAssistant,
		Message:     reply.Text,
		MessageType: reply.Type,
		Metadata:    reply.Metadata,
	}); err != nil {
		return s.failed(token, fmt.Errorf("conversation: save reply: %w", err)), nil
	}

	return &ChatResponse{
		Message:   reply.Text,
		Type:      reply.Type,
		Metadata:  reply.Metadata,
		SessionID: token,
	}, nil
}

func (s *Service) failed(token string, err error) *ChatResponse {
	s.logger.Error("chat turn failed", "session_id", token, "error", err)
	reply := errorReplyFor(err)
	return &ChatResponse{
		Message:   reply.Text,
		Type:      reply.Type,
		Metadata:  reply.Metadata,
		SessionID: token,
	}
}
