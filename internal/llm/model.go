// Package llm wraps langchaingo for answer generation on the model server.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poppitai/poppit/internal/config"
)

// instructionPrompt is the fine-tune format the corpus model was trained on.
const instructionPrompt = `### Instruction:
%s

### Response:
`

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Answer generates a reply to a user message using the instruction format.
func (m *Model) Answer(ctx context.Context, message string) (string, error) {
	prompt := fmt.Sprintf(instructionPrompt, message)
	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// Stream generates a reply, delivering it incrementally through fn as the
// provider produces tokens. Returning an error from fn aborts generation.
func (m *Model) Stream(ctx context.Context, message string, fn func(chunk []byte) error) error {
	prompt := fmt.Sprintf(instructionPrompt, message)
	_, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt,
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			return fn(chunk)
		}),
	)
	if err != nil {
		return fmt.Errorf("generate stream: %w", err)
	}
	return nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}
