package tui

import (
	"context"
	"errors"

	"modelcfg/config/models"
	"modelcfg/internal/client"
	"modelcfg/internal/logging"
	"modelcfg/internal/prefs"
	"modelcfg/internal/providers"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Phase is the lifecycle state of the editor
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseLoading
	PhaseReady
	PhaseSaving
)

// String returns a readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSaving:
		return "saving"
	}
	return "unknown"
}

// ConfigClient talks to the configuration backend
type ConfigClient interface {
	FetchConfig(ctx context.Context) (models.Document, error)
	SaveConfig(ctx context.Context, doc models.Document) (string, error)
}

// PrefStore holds the client-local preferences
type PrefStore interface {
	All() (map[string]string, error)
	SetMany(values map[string]string) error
}

// Model represents the state of the settings editor
type Model struct {
	client ConfigClient
	prefs  PrefStore
	keys   KeyMap
	log    *logrus.Entry

	phase       Phase
	openOnStart bool

	// Fetched document; its model lists are submitted back unchanged
	doc models.Document

	chatProvider      string
	chatModel         string
	embeddingProvider string
	embeddingModel    string

	inputs [fieldCount]textinput.Model
	focus  int // index into visibleFields

	// Stored preferences shown on the closed screen
	summary map[string]string

	reloadRequested bool

	width  int
	height int
}

// NewModel creates an editor. With openOnStart the editor opens as soon as
// the program starts.
func NewModel(client ConfigClient, store PrefStore, openOnStart bool) Model {
	return Model{
		client:      client,
		prefs:       store,
		keys:        DefaultKeyMap(),
		log:         logging.WithComponent("settings"),
		phase:       PhaseClosed,
		openOnStart: openOnStart,
		inputs:      newInputs(),
	}
}

// Phase returns the current phase
func (m Model) Phase() Phase {
	return m.phase
}

// ReloadRequested reports whether the editor ended with a save and asks
// for a fresh start.
func (m Model) ReloadRequested() bool {
	return m.reloadRequested
}

// Selection returns the values persisted to local preferences on save
func (m Model) Selection() Selection {
	model := m.chatModel
	if m.isCustom() {
		model = m.inputs[fieldCustomModel].Value()
	}
	return Selection{
		ChatProvider:      m.chatProvider,
		ChatModel:         model,
		EmbeddingProvider: m.embeddingProvider,
		EmbeddingModel:    m.embeddingModel,
		CustomAPIKey:      m.inputs[fieldCustomKey].Value(),
		CustomBaseURL:     m.inputs[fieldCustomURL].Value(),
	}
}

// Document returns the document that a save submits: the fetched model
// lists plus the edited credential fields.
func (m Model) Document() models.Document {
	doc := m.doc
	doc.ApplySettings(models.Settings{
		OpenAIAPIKey:     m.inputs[fieldOpenAIKey].Value(),
		OllamaAPIURL:     m.inputs[fieldOllamaURL].Value(),
		AnthropicAPIKey:  m.inputs[fieldAnthropicKey].Value(),
		GroqAPIKey:       m.inputs[fieldGroqKey].Value(),
		GeminiAPIKey:     m.inputs[fieldGeminiKey].Value(),
		OpenRouterAPIKey: m.inputs[fieldOpenRouterKey].Value(),
	})
	return doc
}

func (m Model) isCustom() bool {
	return m.chatProvider == providers.CustomOpenAI
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadSummary()}
	if m.openOnStart {
		cmds = append(cmds, func() tea.Msg { return OpenMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case summaryMsg:
		m.summary = msg.stored
		return m, nil

	case OpenMsg:
		if m.phase != PhaseClosed {
			return m, nil
		}
		m.phase = PhaseLoading
		return m, m.fetchConfig()

	case configLoadedMsg:
		if m.phase != PhaseLoading {
			return m, nil
		}
		return m.applyLoaded(msg), nil

	case configFailedMsg:
		m.log.WithError(msg.err).Error("Failed to fetch configuration")
		return m, nil

	case savedMsg:
		m.phase = PhaseClosed
		m.reloadRequested = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// handleKeyMsg routes key presses by phase
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.phase {
	case PhaseClosed:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Open):
			return m.Update(OpenMsg{})
		}
	case PhaseLoading:
		if key.Matches(msg, m.keys.Cancel) {
			m.phase = PhaseClosed
		}
	case PhaseReady:
		return m.handleFormKeys(msg)
	}
	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.blurAll()
		m.phase = PhaseClosed
		return m, nil
	case key.Matches(msg, m.keys.Save):
		m.blurAll()
		m.phase = PhaseSaving
		return m, m.save()
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	}

	current := m.focusedField()
	if current.isPicker() {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cyclePicker(current, -1)
		case key.Matches(msg, m.keys.Right):
			m.cyclePicker(current, 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[current], cmd = m.inputs[current].Update(msg)
	return m, cmd
}

// applyLoaded moves a loading editor to Ready with the default selections
func (m Model) applyLoaded(msg configLoadedMsg) Model {
	stored := msg.stored
	m.doc = msg.doc

	chat := msg.doc.ChatModelProviders
	embed := msg.doc.EmbeddingModelProviders
	m.chatProvider = ResolveProvider(chat, stored[prefs.ChatModelProvider])
	m.chatModel = ResolveModel(chat, m.chatProvider, stored[prefs.ChatModel])
	m.embeddingProvider = ResolveProvider(embed, stored[prefs.EmbeddingModelProvider])
	m.embeddingModel = ResolveModel(embed, m.embeddingProvider, stored[prefs.EmbeddingModel])

	m.inputs = newInputs()
	if m.isCustom() {
		m.inputs[fieldCustomModel].SetValue(m.chatModel)
	}
	m.inputs[fieldCustomKey].SetValue(stored[prefs.CustomOpenAIAPIKey])
	m.inputs[fieldCustomURL].SetValue(stored[prefs.CustomOpenAIBaseURL])
	m.inputs[fieldOpenAIKey].SetValue(msg.doc.OpenAIAPIKey)
	m.inputs[fieldOllamaURL].SetValue(msg.doc.OllamaAPIURL)
	m.inputs[fieldGroqKey].SetValue(msg.doc.GroqAPIKey)
	m.inputs[fieldAnthropicKey].SetValue(msg.doc.AnthropicAPIKey)
	m.inputs[fieldGeminiKey].SetValue(msg.doc.GeminiAPIKey)
	m.inputs[fieldOpenRouterKey].SetValue(msg.doc.OpenRouterAPIKey)

	m.focus = 0
	m.phase = PhaseReady
	return m
}

// SelectChatProvider switches the chat provider and resets the chat model
func (m *Model) SelectChatProvider(provider string) {
	m.chatProvider = provider
	m.chatModel = ModelAfterProviderChange(m.doc.ChatModelProviders, provider)
	if m.isCustom() {
		m.inputs[fieldCustomModel].SetValue("")
	}
}

// SelectEmbeddingProvider switches the embedding provider and resets the embedding model
func (m *Model) SelectEmbeddingProvider(provider string) {
	m.embeddingProvider = provider
	m.embeddingModel = ModelAfterProviderChange(m.doc.EmbeddingModelProviders, provider)
}

func (m *Model) cyclePicker(f field, delta int) {
	switch f {
	case fieldChatProvider:
		m.SelectChatProvider(cycle(ChatProviderOptions(m.doc.ChatModelProviders), m.chatProvider, delta))
	case fieldChatModel:
		m.chatModel = cycle(modelNames(m.doc.ChatModelProviders, m.chatProvider), m.chatModel, delta)
	case fieldEmbeddingProvider:
		m.SelectEmbeddingProvider(cycle(m.doc.EmbeddingModelProviders.Providers(), m.embeddingProvider, delta))
	case fieldEmbeddingModel:
		m.embeddingModel = cycle(modelNames(m.doc.EmbeddingModelProviders, m.embeddingProvider), m.embeddingModel, delta)
	}
}

func (m Model) focusedField() field {
	fields := visibleFields(m.isCustom())
	if m.focus < 0 || m.focus >= len(fields) {
		return fields[0]
	}
	return fields[m.focus]
}

// moveFocus moves the focus by delta rows, wrapping around
func (m *Model) moveFocus(delta int) {
	fields := visibleFields(m.isCustom())
	n := len(fields)
	m.focus = ((m.focus+delta)%n + n) % n

	m.blurAll()
	if f := fields[m.focus]; !f.isPicker() {
		m.inputs[f].Focus()
	}
}

func (m *Model) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// loadSummary reads the stored preferences for the closed screen
func (m Model) loadSummary() tea.Cmd {
	store, log := m.prefs, m.log
	return func() tea.Msg {
		stored, err := store.All()
		if err != nil {
			log.WithError(err).Warn("Failed to read preferences")
		}
		return summaryMsg{stored: stored}
	}
}

// fetchConfig fetches the document and the stored preferences
func (m Model) fetchConfig() tea.Cmd {
	api, store, log := m.client, m.prefs, m.log
	return func() tea.Msg {
		doc, err := api.FetchConfig(context.Background())
		if err != nil {
			return configFailedMsg{err: err}
		}
		stored, err := store.All()
		if err != nil {
			log.WithError(err).Warn("Failed to read preferences, using defaults")
			stored = nil
		}
		return configLoadedMsg{doc: doc, stored: stored}
	}
}

// save submits the document and then persists the local preferences.
// Preferences are left untouched when the submit fails.
func (m Model) save() tea.Cmd {
	api, store, log := m.client, m.prefs, m.log
	doc, selection := m.Document(), m.Selection()
	return func() tea.Msg {
		// A server that answered, even with an error status, does not stop
		// the selection from being remembered. Only an unreachable server does.
		_, saveErr := api.SaveConfig(context.Background(), doc)
		if saveErr != nil {
			log.WithError(saveErr).Error("Failed to save configuration")
			var statusErr *client.StatusError
			if !errors.As(saveErr, &statusErr) {
				return savedMsg{err: saveErr}
			}
		}
		if err := store.SetMany(PersistedPrefs(selection)); err != nil {
			log.WithError(err).Error("Failed to save preferences")
			return savedMsg{err: errors.Join(saveErr, err)}
		}
		if saveErr != nil {
			return savedMsg{err: saveErr}
		}
		log.Info("Configuration saved")
		return savedMsg{}
	}
}
