package providers

import "modelcfg/config"

const groqBaseURL = "https://api.groq.com/openai/v1"

var groqChatSpecs = []modelSpec{
	{"llama-3.3-70b-versatile", "llama-3.3-70b-versatile", "Llama 3.3 70B"},
	{"llama-3.1-8b-instant", "llama-3.1-8b-instant", "Llama 3.1 8B"},
	{"mixtral-8x7b-32768", "mixtral-8x7b-32768", "Mixtral 8x7B"},
	{"gemma2-9b-it", "gemma2-9b-it", "Gemma2 9B"},
}

// LoadGroqChatModels returns the Groq chat models when a key is configured
func LoadGroqChatModels() map[string]*ChatModel {
	key := config.GroqAPIKey()
	if key == "" {
		return map[string]*ChatModel{}
	}
	return buildChatModels(endpoint{provider: "groq", apiKey: key, baseURL: groqBaseURL}, groqChatSpecs)
}
