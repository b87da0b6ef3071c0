package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// CurrentFileVersion is the version written to new settings files
const CurrentFileVersion = 1

// Settings holds the credentials and endpoints owned by the backend
type Settings struct {
	OpenAIAPIKey     string `json:"openai_api_key"`
	OllamaAPIURL     string `json:"ollama_api_url"`
	AnthropicAPIKey  string `json:"anthropic_api_key"`
	GroqAPIKey       string `json:"groq_api_key"`
	GeminiAPIKey     string `json:"gemini_api_key"`
	OpenRouterAPIKey string `json:"openrouter_api_key"`
}

// File represents the structure of the settings file
type File struct {
	Version  int      `json:"version"`
	Settings Settings `json:"settings"`
}

// ModelDescriptor identifies a single model offered by a provider.
// Descriptors are created by the backend and never edited by clients.
type ModelDescriptor struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// ProviderModels is a provider -> model list mapping that keeps insertion order.
// Order matters: the first provider is the default selection for editors.
type ProviderModels struct {
	order  []string
	models map[string][]ModelDescriptor
}

// Set adds or replaces the model list of a provider. A nil list is stored as empty.
func (p *ProviderModels) Set(provider string, list []ModelDescriptor) {
	if p.models == nil {
		p.models = make(map[string][]ModelDescriptor)
	}
	if _, ok := p.models[provider]; !ok {
		p.order = append(p.order, provider)
	}
	copied := make([]ModelDescriptor, len(list))
	copy(copied, list)
	p.models[provider] = copied
}

// Providers returns provider identifiers in insertion order
func (p ProviderModels) Providers() []string {
	result := make([]string, len(p.order))
	copy(result, p.order)
	return result
}

// Models returns the model list of a provider and whether the provider is present
func (p ProviderModels) Models(provider string) ([]ModelDescriptor, bool) {
	list, ok := p.models[provider]
	return list, ok
}

// Has reports whether provider is present
func (p ProviderModels) Has(provider string) bool {
	_, ok := p.models[provider]
	return ok
}

// Len returns the number of providers
func (p ProviderModels) Len() int {
	return len(p.order)
}

// FirstProvider returns the first provider, or "" when there are none
func (p ProviderModels) FirstProvider() string {
	if len(p.order) == 0 {
		return ""
	}
	return p.order[0]
}

// FirstModel returns the name of the first model of provider, or "" when the
// provider is unknown or has no models.
func (p ProviderModels) FirstModel(provider string) string {
	list := p.models[provider]
	if len(list) == 0 {
		return ""
	}
	return list[0].Name
}

// MarshalJSON writes providers in insertion order
func (p ProviderModels) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, provider := range p.order {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(provider)
		if err != nil {
			return nil, err
		}
		list := p.models[provider]
		if list == nil {
			list = []ModelDescriptor{}
		}
		value, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal models of %q: %w", provider, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving the key order of the input
func (p *ProviderModels) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid provider models JSON")
	}

	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*p = ProviderModels{}
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("provider models must be a JSON object")
	}

	var fresh ProviderModels
	var parseErr error
	result.ForEach(func(key, value gjson.Result) bool {
		var list []ModelDescriptor
		if value.Type != gjson.Null {
			if err := json.Unmarshal([]byte(value.Raw), &list); err != nil {
				parseErr = fmt.Errorf("invalid models for provider %q: %w", key.String(), err)
				return false
			}
		}
		fresh.Set(key.String(), list)
		return true
	})
	if parseErr != nil {
		return parseErr
	}

	*p = fresh
	return nil
}

// Document is the configuration exchanged over GET/POST /config
type Document struct {
	ChatModelProviders      ProviderModels `json:"chatModelProviders"`
	EmbeddingModelProviders ProviderModels `json:"embeddingModelProviders"`

	OpenAIAPIKey     string `json:"openaiApiKey"`
	OllamaAPIURL     string `json:"ollamaApiUrl"`
	AnthropicAPIKey  string `json:"anthropicApiKey"`
	GroqAPIKey       string `json:"groqApiKey"`
	GeminiAPIKey     string `json:"geminiApiKey"`
	OpenRouterAPIKey string `json:"openrouterApiKey"`
}

// Settings extracts the scalar credential fields of the document
func (d *Document) Settings() Settings {
	return Settings{
		OpenAIAPIKey:     d.OpenAIAPIKey,
		OllamaAPIURL:     d.OllamaAPIURL,
		AnthropicAPIKey:  d.AnthropicAPIKey,
		GroqAPIKey:       d.GroqAPIKey,
		GeminiAPIKey:     d.GeminiAPIKey,
		OpenRouterAPIKey: d.OpenRouterAPIKey,
	}
}

// ApplySettings copies s into the scalar fields of the document
func (d *Document) ApplySettings(s Settings) {
	d.OpenAIAPIKey = s.OpenAIAPIKey
	d.OllamaAPIURL = s.OllamaAPIURL
	d.AnthropicAPIKey = s.AnthropicAPIKey
	d.GroqAPIKey = s.GroqAPIKey
	d.GeminiAPIKey = s.GeminiAPIKey
	d.OpenRouterAPIKey = s.OpenRouterAPIKey
}

// ModelsResponse is the body of GET /models
type ModelsResponse struct {
	ChatModelProviders      ProviderModels `json:"chatModelProviders"`
	EmbeddingModelProviders ProviderModels `json:"embeddingModelProviders"`
}
