package providers

import "modelcfg/config"

// Anthropic's OpenAI SDK compatibility endpoint
const anthropicBaseURL = "https://api.anthropic.com/v1/"

var anthropicChatSpecs = []modelSpec{
	{"claude-3-5-sonnet-20241022", "claude-3-5-sonnet-20241022", "Claude 3.5 Sonnet"},
	{"claude-3-5-haiku-20241022", "claude-3-5-haiku-20241022", "Claude 3.5 Haiku"},
	{"claude-3-opus-20240229", "claude-3-opus-20240229", "Claude 3 Opus"},
}

// LoadAnthropicChatModels returns the Anthropic chat models when a key is configured
func LoadAnthropicChatModels() map[string]*ChatModel {
	key := config.AnthropicAPIKey()
	if key == "" {
		return map[string]*ChatModel{}
	}
	return buildChatModels(endpoint{provider: "anthropic", apiKey: key, baseURL: anthropicBaseURL}, anthropicChatSpecs)
}
