// Package llm provides the language-model client used by query-ai.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client sends a prompt to a language model and returns the reply text.
// Model is provider-specific (e.g. "gpt-4o").
type Client interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// ChatCompletionAPI is the slice of the OpenAI SDK used by this package.
// Used for testing with mock implementations.
type ChatCompletionAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements Client using the OpenAI Chat Completions API.
type OpenAI struct {
	chat ChatCompletionAPI
}

// NewOpenAI returns a Client backed by the OpenAI SDK. With no options
// the SDK resolves its credentials from the environment (OPENAI_API_KEY
// and, when set, OPENAI_BASE_URL).
func NewOpenAI(opts ...option.RequestOption) *OpenAI {
	client := openai.NewClient(opts...)
	return &OpenAI{chat: &client.Chat.Completions}
}

// NewOpenAIWithAPI creates an OpenAI client with a custom completion
// API, used for testing.
func NewOpenAIWithAPI(api ChatCompletionAPI) *OpenAI {
	return &OpenAI{chat: api}
}

// Complete issues one synchronous chat-completion request carrying the
// prompt as a single user-role message and returns the first choice's
// text with surrounding whitespace trimmed.
func (c *OpenAI) Complete(ctx context.Context, model, prompt string) (string, error) {
	completion, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response contains no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
