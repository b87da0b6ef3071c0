package validation

import (
	"fmt"

	"modelcfg/config/models"
)

// Validator validates backend settings
type Validator struct {
	input *InputValidator
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{input: NewInputValidator()}
}

// ValidateSettings validates every credential and endpoint in s.
// Empty values are allowed: an empty field disables the provider.
func (v *Validator) ValidateSettings(s models.Settings) error {
	keys := []struct {
		field string
		value string
	}{
		{"openaiApiKey", s.OpenAIAPIKey},
		{"anthropicApiKey", s.AnthropicAPIKey},
		{"groqApiKey", s.GroqAPIKey},
		{"geminiApiKey", s.GeminiAPIKey},
		{"openrouterApiKey", s.OpenRouterAPIKey},
	}
	for _, k := range keys {
		if err := v.input.ValidateAPIKey(k.value); err != nil {
			return fmt.Errorf("%s: %w", k.field, err)
		}
	}

	if err := v.input.ValidateURL(s.OllamaAPIURL); err != nil {
		return fmt.Errorf("ollamaApiUrl: %w", err)
	}

	return nil
}

// ValidateCustomEndpoint validates a custom OpenAI-compatible endpoint.
// The model name and base URL are required, the key may be empty for local servers.
func (v *Validator) ValidateCustomEndpoint(model, apiKey, baseURL string) error {
	if err := v.input.ValidateModelName(model); err != nil {
		return err
	}
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if err := v.input.ValidateURL(baseURL); err != nil {
		return err
	}
	return v.input.ValidateAPIKey(apiKey)
}
