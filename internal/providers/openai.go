package providers

import "modelcfg/config"

const openAIBaseURL = "https://api.openai.com/v1"

var openAIChatSpecs = []modelSpec{
	{"gpt-3.5-turbo", "gpt-3.5-turbo", "GPT-3.5 Turbo"},
	{"gpt-4", "gpt-4", "GPT-4"},
	{"gpt-4-turbo", "gpt-4-turbo", "GPT-4 turbo"},
	{"gpt-4o", "gpt-4o", "GPT-4 omni"},
	{"gpt-4o-mini", "gpt-4o-mini", "GPT-4 omni mini"},
}

var openAIEmbeddingSpecs = []modelSpec{
	{"text-embedding-3-small", "text-embedding-3-small", "Text Embedding 3 Small"},
	{"text-embedding-3-large", "text-embedding-3-large", "Text Embedding 3 Large"},
}

// LoadOpenAIChatModels returns the OpenAI chat models when a key is configured
func LoadOpenAIChatModels() map[string]*ChatModel {
	key := config.OpenAIAPIKey()
	if key == "" {
		return map[string]*ChatModel{}
	}
	return buildChatModels(endpoint{provider: "openai", apiKey: key, baseURL: openAIBaseURL}, openAIChatSpecs)
}

// LoadOpenAIEmbeddingModels returns the OpenAI embedding models when a key is configured
func LoadOpenAIEmbeddingModels() map[string]*EmbeddingModel {
	key := config.OpenAIAPIKey()
	if key == "" {
		return map[string]*EmbeddingModel{}
	}
	return buildEmbeddingModels(endpoint{provider: "openai", apiKey: key, baseURL: openAIBaseURL}, openAIEmbeddingSpecs)
}
