package tui

import (
	"fmt"
	"strings"

	"modelcfg/internal/prefs"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// View renders the current phase
func (m Model) View() string {
	switch m.phase {
	case PhaseLoading:
		return m.renderFrame("Settings", dimStyle.Render("Loading configuration..."), []key.Binding{m.keys.Cancel})
	case PhaseReady:
		return m.renderFrame("Settings", m.renderForm(), flatten(m.keys.FullHelp()))
	case PhaseSaving:
		return m.renderFrame("Settings", dimStyle.Render("Saving..."), nil)
	}
	return m.renderFrame("modelcfg", m.renderSummary(), m.keys.ShortHelp())
}

func (m Model) renderFrame(title, body string, bindings []key.Binding) string {
	var b strings.Builder
	width := m.getEffectiveWidth(50)

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(renderHelp(bindings))
	return b.String()
}

// renderSummary shows the stored selections on the closed screen
func (m Model) renderSummary() string {
	var b strings.Builder
	rows := []struct{ label, key string }{
		{"Chat provider:", prefs.ChatModelProvider},
		{"Chat model:", prefs.ChatModel},
		{"Embed provider:", prefs.EmbeddingModelProvider},
		{"Embed model:", prefs.EmbeddingModel},
	}
	for _, r := range rows {
		b.WriteString(formLabelStyle.Render(r.label))
		if v := m.summary[r.key]; v != "" {
			b.WriteString(normalStyle.Render(v))
		} else {
			b.WriteString(dimStyle.Render("(default)"))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderForm renders every visible row of the settings form
func (m Model) renderForm() string {
	var b strings.Builder
	fields := visibleFields(m.isCustom())

	for i, f := range fields {
		switch f {
		case fieldChatProvider:
			b.WriteString(formSectionStyle.Render("Chat"))
			b.WriteString("\n")
		case fieldEmbeddingProvider:
			b.WriteString("\n")
			b.WriteString(formSectionStyle.Render("Embeddings"))
			b.WriteString("\n")
		case fieldOpenAIKey:
			b.WriteString("\n")
			b.WriteString(formSectionStyle.Render("Credentials"))
			b.WriteString("\n")
		}

		focused := i == m.focus
		label := formLabelStyle.Render(fieldLabels[f])
		if focused {
			label = formFocusedStyle.Width(17).Render(fieldLabels[f])
		}
		b.WriteString(label)
		b.WriteString(m.renderValue(f, focused))
		b.WriteString("\n")
	}

	if m.isCustom() {
		b.WriteString("\n")
		b.WriteString(formHintStyle.Render("Any OpenAI-compatible endpoint"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderValue(f field, focused bool) string {
	if !f.isPicker() {
		return formInputStyle.Render(m.inputs[f].View())
	}

	var value string
	switch f {
	case fieldChatProvider:
		value = m.chatProvider
	case fieldChatModel:
		value = displayName(m.doc.ChatModelProviders, m.chatProvider, m.chatModel)
	case fieldEmbeddingProvider:
		value = m.embeddingProvider
	case fieldEmbeddingModel:
		value = displayName(m.doc.EmbeddingModelProviders, m.embeddingProvider, m.embeddingModel)
	}
	if value == "" {
		value = "(none)"
	}

	if focused {
		return selectedStyle.Render(fmt.Sprintf("‹ %s ›", value))
	}
	return normalStyle.Render(value)
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpStyle.Render(h.Desc))
	}
	return strings.Join(parts, helpStyle.Render(" • "))
}

func flatten(groups [][]key.Binding) []key.Binding {
	var out []key.Binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// getEffectiveWidth returns the terminal width, or fallback before the first resize
func (m Model) getEffectiveWidth(fallback int) int {
	if m.width <= 0 {
		return fallback
	}
	if m.width > 80 {
		return 80
	}
	return m.width
}
