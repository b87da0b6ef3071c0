package providers

import "modelcfg/config"

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

var geminiChatSpecs = []modelSpec{
	{"gemini-1.5-flash", "gemini-1.5-flash", "Gemini 1.5 Flash"},
	{"gemini-1.5-pro", "gemini-1.5-pro", "Gemini 1.5 Pro"},
	{"gemini-2.0-flash", "gemini-2.0-flash", "Gemini 2.0 Flash"},
}

var geminiEmbeddingSpecs = []modelSpec{
	{"text-embedding-004", "text-embedding-004", "Text Embedding 004"},
}

// LoadGeminiChatModels returns the Gemini chat models when a key is configured
func LoadGeminiChatModels() map[string]*ChatModel {
	key := config.GeminiAPIKey()
	if key == "" {
		return map[string]*ChatModel{}
	}
	return buildChatModels(endpoint{provider: "gemini", apiKey: key, baseURL: geminiBaseURL}, geminiChatSpecs)
}

// LoadGeminiEmbeddingModels returns the Gemini embedding models when a key is configured
func LoadGeminiEmbeddingModels() map[string]*EmbeddingModel {
	key := config.GeminiAPIKey()
	if key == "" {
		return map[string]*EmbeddingModel{}
	}
	return buildEmbeddingModels(endpoint{provider: "gemini", apiKey: key, baseURL: geminiBaseURL}, geminiEmbeddingSpecs)
}
