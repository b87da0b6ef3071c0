package validation

import (
	"strings"
	"testing"

	"modelcfg/config/models"
)

func TestValidateSettings(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		settings models.Settings
		wantErr  string
	}{
		{"empty settings", models.Settings{}, ""},
		{"all fields", models.Settings{
			OpenAIAPIKey:     "sk-123",
			OllamaAPIURL:     "http://localhost:11434",
			OpenRouterAPIKey: "sk-or-v1-abc",
		}, ""},
		{"bad ollama url", models.Settings{OllamaAPIURL: "localhost:11434"}, "ollamaApiUrl"},
		{"key with space", models.Settings{GroqAPIKey: "gsk 123"}, "groqApiKey"},
		{"key with newline", models.Settings{GeminiAPIKey: "abc\n"}, "geminiApiKey"},
		{"key too long", models.Settings{AnthropicAPIKey: strings.Repeat("a", 513)}, "anthropicApiKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSettings(tt.settings)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateSettings() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateSettings() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCustomEndpoint(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		model   string
		key     string
		baseURL string
		wantErr bool
	}{
		{"valid", "meta-llama/llama-3.1-8b", "sk-1", "http://localhost:8000/v1", false},
		{"no key", "llama3", "", "http://localhost:8000/v1", false},
		{"empty model", "  ", "sk-1", "http://localhost:8000/v1", true},
		{"missing url", "llama3", "sk-1", "", true},
		{"bad url", "llama3", "sk-1", "ftp://host", true},
		{"bad model chars", "llama<3>", "sk-1", "http://localhost:8000/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCustomEndpoint(tt.model, tt.key, tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCustomEndpoint() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
	}{
		{"empty object", `{}`, true},
		{"full document", `{"chatModelProviders":{"openai":[{"name":"gpt-4o","displayName":"GPT-4o"}]},"embeddingModelProviders":{},"openaiApiKey":"sk","ollamaApiUrl":""}`, true},
		{"null model list", `{"chatModelProviders":{"a":null}}`, true},
		{"key is a number", `{"openaiApiKey":42}`, false},
		{"model without name", `{"chatModelProviders":{"a":[{"displayName":"A"}]}}`, false},
		{"providers is an array", `{"chatModelProviders":[]}`, false},
		{"not an object", `"hello"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := ValidateDocument([]byte(tt.input))
			if err != nil {
				t.Fatalf("ValidateDocument() error = %v", err)
			}
			if (len(errs) == 0) != tt.wantValid {
				t.Errorf("ValidateDocument() violations = %v, wantValid %v", errs, tt.wantValid)
			}
		})
	}
}

func TestValidateDocumentMalformedJSON(t *testing.T) {
	if _, err := ValidateDocument([]byte(`{"openaiApiKey":`)); err == nil {
		t.Error("ValidateDocument() expected error for malformed JSON")
	}
}
