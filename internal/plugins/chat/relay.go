package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/neurocare/neurocare-web/internal/config"
)

// systemPrompt frames every relayed conversation.
const systemPrompt = `You are NeroCare, a warm and supportive mental health companion. ` +
	`Listen carefully, respond with empathy in a few short paragraphs, and suggest practical coping steps. ` +
	`You are not a therapist and do not diagnose. If the user mentions self-harm or being in danger, ` +
	`urge them to contact local emergency services or a crisis helpline right away.`

// Completer produces one reply for one user message.
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

// modelCompleter adapts an eino chat model to Completer.
type modelCompleter struct {
	model model.BaseChatModel
}

// NewModelCompleter wraps any eino chat model.
func NewModelCompleter(m model.BaseChatModel) Completer {
	return &modelCompleter{model: m}
}

// NewArkCompleter builds a Completer on a Volcengine Ark model. It returns
// nil, nil when the relay is not configured.
func NewArkCompleter(ctx context.Context, cfg config.ChatConfig) (Completer, error) {
	if !cfg.RelayEnabled() {
		return nil, nil
	}

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.ArkBaseURL,
		Region:  cfg.ArkRegion,
		APIKey:  cfg.ArkAPIKey,
		Model:   cfg.ArkModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ark chat model: %w", err)
	}
	return NewModelCompleter(chatModel), nil
}

// Complete sends the system prompt and the user's message.
func (c *modelCompleter) Complete(ctx context.Context, message string) (string, error) {
	resp, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(message),
	})
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Content), nil
}
