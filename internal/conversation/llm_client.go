package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/wolfman30/clinic-assistant/internal/i18n"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	schedulingMaxTokens int32   = 300
	generalMaxTokens    int32   = 200
	replyTemperature    float32 = 0.7
)

// ErrEmptyCompletion is returned when a provider answers with blank text.
var ErrEmptyCompletion = errors.New("conversation: empty completion")

// PromptMessage is one turn sent to a completion provider.
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []PromptMessage
	MaxTokens   int32
	Temperature float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is an opaque text-completion provider.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// singleTurn wraps one user prompt in the assistant persona. Non-English
// sessions get an extra instruction to answer in that language.
func singleTurn(language, prompt string, maxTokens int32) LLMRequest {
	system := []string{systemPersona}
	if language != "" && language != i18n.DefaultLanguage {
		system = append(system, "Respond in "+i18n.LanguageName(language)+".")
	}
	return LLMRequest{
		System:      system,
		Messages:    []PromptMessage{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: replyTemperature,
	}
}

func completeText(ctx context.Context, client LLMClient, req LLMRequest) (string, error) {
	resp, err := client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Text, nil
}
