package llm

import (
	"strings"
	"testing"

	"github.com/poppitai/poppit/internal/config"
)

func TestNewModelProviderValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{
			name:    "openai without key",
			cfg:     config.Config{LLMProvider: config.ProviderOpenAI, LLMModel: "gpt-4o-mini"},
			wantErr: "OpenAI API key required",
		},
		{
			name:    "anthropic without key",
			cfg:     config.Config{LLMProvider: config.ProviderAnthropic, LLMModel: "claude-sonnet-4-20250514"},
			wantErr: "Anthropic API key required",
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{LLMProvider: "llamacpp"},
			wantErr: "unsupported LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(tt.cfg)
			if err == nil {
				t.Fatal("NewModel() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewModel() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewModelOllama(t *testing.T) {
	cfg := config.Config{
		LLMProvider: config.ProviderOllama,
		LLMModel:    "gemma:2b",
		OllamaHost:  "http://localhost:11434",
	}
	m, err := NewModel(cfg)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	if m.Model() != "gemma:2b" {
		t.Errorf("Model() = %q, want %q", m.Model(), "gemma:2b")
	}
}
