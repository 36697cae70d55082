package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/trainer/pkg/types"
)

// ErrEmptyCompletion is returned when the provider answers with no text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// PromptGenerator sends a single prompt to a Provider and returns the text of
// the answer. It satisfies workout.Generator.
type PromptGenerator struct {
	provider     Provider
	systemPrompt string
}

// NewPromptGenerator wraps provider. A non-empty systemPrompt is sent ahead of
// every prompt.
func NewPromptGenerator(provider Provider, systemPrompt string) *PromptGenerator {
	return &PromptGenerator{provider: provider, systemPrompt: systemPrompt}
}

// Generate makes exactly one Complete call.
func (g *PromptGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := make([]*types.Message, 0, 2)
	if g.systemPrompt != "" {
		messages = append(messages, types.NewSystemMessage(g.systemPrompt))
	}
	messages = append(messages, types.NewUserMessage(prompt))

	msg, err := g.provider.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm: %s: %w", g.provider.GetModel(), err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return msg.Content, nil
}

// Provider returns the wrapped provider.
func (g *PromptGenerator) Provider() Provider {
	return g.provider
}
