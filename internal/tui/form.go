// Package tui provides the terminal settings editor for modelcfg
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// field identifies one row of the settings form
type field int

const (
	fieldChatProvider field = iota
	fieldChatModel
	fieldCustomModel
	fieldCustomKey
	fieldCustomURL
	fieldEmbeddingProvider
	fieldEmbeddingModel
	fieldOpenAIKey
	fieldOllamaURL
	fieldGroqKey
	fieldAnthropicKey
	fieldGeminiKey
	fieldOpenRouterKey
	fieldCount // Total number of fields
)

// isPicker reports whether the field cycles through options instead of taking text
func (f field) isPicker() bool {
	switch f {
	case fieldChatProvider, fieldChatModel, fieldEmbeddingProvider, fieldEmbeddingModel:
		return true
	}
	return false
}

var fieldLabels = [fieldCount]string{
	fieldChatProvider:      "Chat provider:",
	fieldChatModel:         "Chat model:",
	fieldCustomModel:       "Model name:",
	fieldCustomKey:         "Custom API key:",
	fieldCustomURL:         "Custom base URL:",
	fieldEmbeddingProvider: "Embed provider:",
	fieldEmbeddingModel:    "Embed model:",
	fieldOpenAIKey:         "OpenAI key:",
	fieldOllamaURL:         "Ollama URL:",
	fieldGroqKey:           "Groq key:",
	fieldAnthropicKey:      "Anthropic key:",
	fieldGeminiKey:         "Gemini key:",
	fieldOpenRouterKey:     "OpenRouter key:",
}

// Form styles
var (
	formLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(17)

	formInputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	formFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	formHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	formSectionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)
)

// newInputs creates the text inputs of the form. Picker rows get a zero
// value that is never rendered.
func newInputs() [fieldCount]textinput.Model {
	var inputs [fieldCount]textinput.Model

	text := func(f field, placeholder string, secret bool) {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 512
		in.Width = 40
		in.Prompt = ""
		if secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs[f] = in
	}

	text(fieldCustomModel, "gpt-4o-mini", false)
	text(fieldCustomKey, "sk-...", true)
	text(fieldCustomURL, "https://api.example.com/v1", false)
	text(fieldOpenAIKey, "sk-...", true)
	text(fieldOllamaURL, "http://localhost:11434", false)
	text(fieldGroqKey, "gsk_...", true)
	text(fieldAnthropicKey, "sk-ant-...", true)
	text(fieldGeminiKey, "AIza...", true)
	text(fieldOpenRouterKey, "sk-or-...", true)

	return inputs
}

// visibleFields returns the rows of the form in display order. The custom
// endpoint replaces the chat model picker with free-text rows.
func visibleFields(custom bool) []field {
	fields := []field{fieldChatProvider}
	if custom {
		fields = append(fields, fieldCustomModel, fieldCustomKey, fieldCustomURL)
	} else {
		fields = append(fields, fieldChatModel)
	}
	return append(fields,
		fieldEmbeddingProvider,
		fieldEmbeddingModel,
		fieldOpenAIKey,
		fieldOllamaURL,
		fieldGroqKey,
		fieldAnthropicKey,
		fieldGeminiKey,
		fieldOpenRouterKey,
	)
}
