package tui

import (
	"modelcfg/config/models"
	"modelcfg/internal/prefs"
	"modelcfg/internal/providers"
)

// ResolveProvider picks the initial provider: the stored preference, else
// the first provider of the mapping, else "".
func ResolveProvider(pm models.ProviderModels, stored string) string {
	if stored != "" {
		return stored
	}
	return pm.FirstProvider()
}

// ResolveModel picks the initial model: the stored preference, else the
// first model of provider, else "".
func ResolveModel(pm models.ProviderModels, provider, stored string) string {
	if stored != "" {
		return stored
	}
	return pm.FirstModel(provider)
}

// ModelAfterProviderChange is the model selected right after the user picks
// provider: its first model, or "" for the custom endpoint and for
// providers without models.
func ModelAfterProviderChange(pm models.ProviderModels, provider string) string {
	if provider == providers.CustomOpenAI {
		return ""
	}
	return pm.FirstModel(provider)
}

// ChatProviderOptions lists the chat providers offered by the picker. The
// custom endpoint is always offered.
func ChatProviderOptions(pm models.ProviderModels) []string {
	options := pm.Providers()
	if !pm.Has(providers.CustomOpenAI) {
		options = append(options, providers.CustomOpenAI)
	}
	return options
}

// Selection is the editor state that is persisted locally on save
type Selection struct {
	ChatProvider      string
	ChatModel         string
	EmbeddingProvider string
	EmbeddingModel    string
	CustomAPIKey      string
	CustomBaseURL     string
}

// PersistedPrefs returns the preferences written on save. Providers and
// models are written only when non-empty so an empty selection never
// erases a stored choice; the custom endpoint fields are always written.
func PersistedPrefs(s Selection) map[string]string {
	values := map[string]string{
		prefs.CustomOpenAIAPIKey:  s.CustomAPIKey,
		prefs.CustomOpenAIBaseURL: s.CustomBaseURL,
	}
	optional := map[string]string{
		prefs.ChatModelProvider:      s.ChatProvider,
		prefs.ChatModel:              s.ChatModel,
		prefs.EmbeddingModelProvider: s.EmbeddingProvider,
		prefs.EmbeddingModel:         s.EmbeddingModel,
	}
	for k, v := range optional {
		if v != "" {
			values[k] = v
		}
	}
	return values
}

// cycle returns the option after (delta > 0) or before current. A current
// value that is not an option starts from the first option.
func cycle(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return options[0]
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}

func modelNames(pm models.ProviderModels, provider string) []string {
	list, _ := pm.Models(provider)
	names := make([]string, 0, len(list))
	for _, m := range list {
		names = append(names, m.Name)
	}
	return names
}

func displayName(pm models.ProviderModels, provider, model string) string {
	list, _ := pm.Models(provider)
	for _, m := range list {
		if m.Name == model && m.DisplayName != "" {
			return m.DisplayName
		}
	}
	return model
}
