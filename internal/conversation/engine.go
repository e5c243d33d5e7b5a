package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/internal/clinic"
	"github.com/wolfman30/clinic-assistant/internal/knowledge"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var chatTracer = otel.Tracer("clinic.internal.conversation")

const (
	contextWindow        = 5
	generalContextWindow = 3
)

// Reply types beyond the intents themselves.
const (
	ReplyGreeting = "greeting"
	ReplyError    = "error"
)

// Reply is the engine's answer to one message.
type Reply struct {
	Text     string         `json:"message"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata"`
}

// ContextTurn is a prior message handed to the completion provider.
type ContextTurn struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// KnowledgeSource lists active FAQs and aftercare rows.
type KnowledgeSource interface {
	ListFAQs(ctx context.Context, filter knowledge.FAQFilter) ([]*knowledge.FAQ, error)
	ListAftercare(ctx context.Context, filter knowledge.AftercareFilter) ([]*knowledge.Aftercare, error)
}

// ClinicInfo reads the clinic profile and booking policy.
type ClinicInfo interface {
	ClinicSettings(ctx context.Context) (*clinic.ClinicSettings, error)
	BookingSettings(ctx context.Context) (*clinic.BookingSettings, error)
}

// DoctorLister lists bookable doctors.
type DoctorLister interface {
	ListActive(ctx context.Context) ([]*clinic.Doctor, error)
}

// Engine classifies a message and builds the reply. With a nil LLMClient it
// is fully rule-based.
type Engine struct {
	history   Store
	knowledge KnowledgeSource
	clinic    ClinicInfo
	doctors   DoctorLister
	llm       LLMClient
	logger    *logging.Logger
	metrics   *metrics.ClinicMetrics
}

func NewEngine(history Store, kb KnowledgeSource, info ClinicInfo, doctors DoctorLister, llm LLMClient, logger *logging.Logger, m *metrics.ClinicMetrics) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		history:   history,
		knowledge: kb,
		clinic:    info,
		doctors:   doctors,
		llm:       llm,
		logger:    logger,
		metrics:   m,
	}
}

// Respond never fails: processing errors become an apology with type "error"
// and the detail in metadata["error"].
func (e *Engine) Respond(ctx context.Context, message, sessionID, language string) Reply {
	ctx, span := chatTracer.Start(ctx, "conversation.respond")
	defer span.End()

	intent := ClassifyIntent(message)
	span.SetAttributes(
		attribute.String("chat.intent", string(intent)),
		attribute.String("chat.language", language),
	)

	reply, err := e.respond(ctx, intent, message, sessionID, language)
	if err != nil {
		span.RecordError(err)
		e.logger.Error("chat reply failed", "intent", intent, "session_id", sessionID, "error", err)
		reply = errorReplyFor(err)
	}
	e.metrics.ObserveChatReply(string(intent), reply.Type)
	return reply
}

func (e *Engine) respond(ctx context.Context, intent Intent, message, sessionID, language string) (Reply, error) {
	turns, err := e.recentTurns(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	switch intent {
	case IntentScheduling:
		return e.scheduling(ctx, message, turns, language)
	case IntentFAQ:
		return e.faq(ctx, message, language)
	case IntentIntake:
		return Reply{Text: intakePrompt, Type: string(IntentIntake), Metadata: map[string]any{"step": "chief_complaint"}}, nil
	case IntentAftercare:
		return e.aftercare(ctx, language)
	default:
		return e.general(ctx, message, turns, language), nil
	}
}

func (e *Engine) recentTurns(ctx context.Context, sessionID string) ([]ContextTurn, error) {
	if e.history == nil || sessionID == "" {
		return nil, nil
	}
	sess, err := e.history.FindSession(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	msgs, err := e.history.RecentMessages(ctx, sess.ID, contextWindow)
	if err != nil {
		return nil, err
	}
	turns := make([]ContextTurn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, ContextTurn{Sender: m.Sender, Message: m.Message})
	}
	return turns, nil
}

func (e *Engine) scheduling(ctx context.Context, message string, turns []ContextTurn, language string) (Reply, error) {
	if e.llm != nil {
		text, err := e.completeScheduling(ctx, message, turns, language)
		if err == nil {
			return Reply{Text: text, Type: string(IntentScheduling), Metadata: map[string]any{"needs_followup": true}}, nil
		}
		e.logger.Warn("scheduling completion failed, using template", "error", err)
	}
	return e.schedulingTemplate(ctx)
}

func (e *Engine) completeScheduling(ctx context.Context, message string, turns []ContextTurn, language string) (string, error) {
	settings, err := e.clinicSettings(ctx)
	if err != nil {
		return "", err
	}
	contextJSON, err := json.Marshal(nonNilTurns(turns))
	if err != nil {
		return "", err
	}
	services := ""
	if settings != nil {
		services = strings.Join(settings.Services, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Clinic name: %s\n", orPlaceholder(settingsField(settings, func(s *clinic.ClinicSettings) string { return s.ClinicName })))
	fmt.Fprintf(&b, "Operating hours:\n%s\n", orPlaceholder(settingsField(settings, (*clinic.ClinicSettings).HoursSummary)))
	fmt.Fprintf(&b, "Address: %s\n", orPlaceholder(settingsField(settings, (*clinic.ClinicSettings).FullAddress)))
	fmt.Fprintf(&b, "Services: %s\n\n", orPlaceholder(services))
	fmt.Fprintf(&b, "User message: %s\n", message)
	fmt.Fprintf(&b, "Context: %s\n\n", contextJSON)
	b.WriteString("The user wants to schedule an appointment. Extract the following information if available:\n" +
		"- Preferred date and time\n" +
		"- Type of appointment (consultation, follow-up, etc.)\n" +
		"- Reason for visit\n" +
		"- Patient contact information\n\n" +
		"Respond with a helpful message and indicate what additional information is needed.")

	return completeText(ctx, e.llm, singleTurn(language, b.String(), schedulingMaxTokens))
}

func (e *Engine) schedulingTemplate(ctx context.Context) (Reply, error) {
	names := []string{}
	if e.doctors != nil {
		doctors, err := e.doctors.ListActive(ctx)
		if err != nil {
			return Reply{}, fmt.Errorf("conversation: list doctors: %w", err)
		}
		for _, d := range doctors {
			names = append(names, d.DisplayName())
		}
	}

	var b strings.Builder
	b.WriteString(schedulingIntro)
	if len(names) > 0 {
		b.WriteString("\n\nOur available doctors:")
		for _, n := range names {
			b.WriteString("\n• " + n)
		}
	}

	policy := clinic.DefaultBookingSettings()
	if e.clinic != nil {
		bs, err := e.clinic.BookingSettings(ctx)
		if err != nil {
			return Reply{}, fmt.Errorf("conversation: booking settings: %w", err)
		}
		policy = bs
	}
	fmt.Fprintf(&b, "\n\nAppointments are %d minutes long. Please book at least %d hours in advance and no more than %d days ahead.",
		policy.SlotDuration, policy.MinBookingNoticeHours, policy.AdvanceBookingDays)
	b.WriteString("\n\n" + schedulingOutro)

	return Reply{
		Text:     b.String(),
		Type:     string(IntentScheduling),
		Metadata: map[string]any{"step": "collect_info", "doctors": names},
	}, nil
}

// faq returns the first active FAQ, in store order, whose question contains
// any whitespace-separated word of the message.
func (e *Engine) faq(ctx context.Context, message, language string) (Reply, error) {
	var faqs []*knowledge.FAQ
	if e.knowledge != nil {
		var err error
		faqs, err = e.knowledge.ListFAQs(ctx, knowledge.FAQFilter{Language: language})
		if err != nil {
			return Reply{}, fmt.Errorf("conversation: list faqs: %w", err)
		}
	}
	words := strings.Fields(strings.ToLower(message))
	for _, f := range faqs {
		question := strings.ToLower(f.Question)
		for _, w := range words {
			if strings.Contains(question, w) {
				return Reply{
					Text:     fmt.Sprintf("**%s**\n\n%s", f.Question, f.Answer),
					Type:     string(IntentFAQ),
					Metadata: map[string]any{"faq_id": f.ID, "category": f.Category},
				}, nil
			}
		}
	}

	settings, err := e.clinicSettings(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: faqFallback(settings), Type: string(IntentFAQ), Metadata: map[string]any{"no_match": true}}, nil
}

func faqFallback(s *clinic.ClinicSettings) string {
	var lines []string
	if s != nil {
		if s.Phone != "" {
			lines = append(lines, "• Phone: "+s.Phone)
		}
		if s.Email != "" {
			lines = append(lines, "• Email: "+s.Email)
		}
		if addr := s.FullAddress(); addr != "" {
			lines = append(lines, "• Address: "+addr)
		}
		if hours := s.HoursSummary(); hours != "" {
			lines = append(lines, "• Hours:\n"+hours)
		}
		if len(s.Departments) > 0 {
			names := make([]string, 0, len(s.Departments))
			for _, d := range s.Departments {
				names = append(names, d.Name)
			}
			lines = append(lines, "• Departments: "+strings.Join(names, ", "))
		}
	}

	var b strings.Builder
	b.WriteString(faqNoMatchIntro)
	if len(lines) > 0 {
		b.WriteString(" Here is how to reach us:\n\n")
		b.WriteString(strings.Join(lines, "\n"))
	} else {
		b.WriteString(" Here are some common questions I can help with:\n\n" +
			"• Clinic hours and location\n• Insurance and payment options\n• Available services\n• Appointment scheduling")
	}
	b.WriteString("\n\n" + faqNoMatchOutro)
	return b.String()
}

func (e *Engine) aftercare(ctx context.Context, language string) (Reply, error) {
	var items []*knowledge.Aftercare
	if e.knowledge != nil {
		var err error
		items, err = e.knowledge.ListAftercare(ctx, knowledge.AftercareFilter{Language: language})
		if err != nil {
			return Reply{}, fmt.Errorf("conversation: list aftercare: %w", err)
		}
	}
	if len(items) == 0 {
		return Reply{Text: aftercareGeneric, Type: string(IntentAftercare), Metadata: map[string]any{}}, nil
	}
	return Reply{
		Text:     aftercareAskType,
		Type:     string(IntentAftercare),
		Metadata: map[string]any{"available_types": knowledge.TreatmentTypes(items)},
	}, nil
}

func (e *Engine) general(ctx context.Context, message string, turns []ContextTurn, language string) Reply {
	if e.llm != nil {
		text, err := e.completeGeneral(ctx, message, turns, language)
		if err == nil {
			return Reply{Text: text, Type: string(IntentGeneral), Metadata: map[string]any{}}
		}
		e.logger.Warn("general completion failed, using rule-based reply", "error", err)
	}
	if containsAny(strings.ToLower(message), greetingWords) {
		return Reply{Text: greetingReply, Type: ReplyGreeting, Metadata: map[string]any{}}
	}
	return Reply{Text: generalReply, Type: string(IntentGeneral), Metadata: map[string]any{}}
}

func (e *Engine) completeGeneral(ctx context.Context, message string, turns []ContextTurn, language string) (string, error) {
	if len(turns) > generalContextWindow {
		turns = turns[len(turns)-generalContextWindow:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, t.Sender+": "+t.Message)
	}
	prompt := "Previous conversation:\n" + strings.Join(lines, "\n") +
		"\n\nUser: " + message +
		"\n\nRespond helpfully as a clinic AI assistant. Keep responses concise and professional."

	return completeText(ctx, e.llm, singleTurn(language, prompt, generalMaxTokens))
}

func (e *Engine) clinicSettings(ctx context.Context) (*clinic.ClinicSettings, error) {
	if e.clinic == nil {
		return nil, nil
	}
	s, err := e.clinic.ClinicSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("conversation: clinic settings: %w", err)
	}
	return s, nil
}

// errorReplyFor is the fixed apology returned for any processing failure,
// whatever the session language.
func errorReplyFor(err error) Reply {
	return Reply{Text: errorReply, Type: ReplyError, Metadata: map[string]any{"error": err.Error()}}
}

func settingsField(s *clinic.ClinicSettings, get func(*clinic.ClinicSettings) string) string {
	if s == nil {
		return ""
	}
	return get(s)
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return notSpecified
	}
	return v
}

func nonNilTurns(turns []ContextTurn) []ContextTurn {
	if turns == nil {
		return []ContextTurn{}
	}
	return turns
}
