package providers

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"modelcfg/config/models"
)

// CustomOpenAI is the provider id of a user-supplied OpenAI-compatible
// endpoint. It is never registered; its model is built on demand by
// NewCustomChatModel.
const CustomOpenAI = "custom_openai"

var (
	// ErrUnknownProvider is returned for provider ids that are not registered
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnknownModel is returned when a provider does not offer a model
	ErrUnknownModel = errors.New("unknown model")
)

// ChatLoader builds the chat models of one provider. Loaders never fail:
// missing credentials or construction errors yield an empty map.
type ChatLoader func() map[string]*ChatModel

// EmbeddingLoader builds the embedding models of one provider, with the same
// contract as ChatLoader.
type EmbeddingLoader func() map[string]*EmbeddingModel

// Provider is a registry entry. Either loader may be nil.
type Provider struct {
	Name           string
	LoadChat       ChatLoader
	LoadEmbeddings EmbeddingLoader
}

var (
	registryMu sync.RWMutex
	registry   []Provider
)

// Register adds a provider, replacing an existing entry of the same name in
// place so that registration order is kept.
func Register(p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for i := range registry {
		if registry[i].Name == p.Name {
			registry[i] = p
			return
		}
	}
	registry = append(registry, p)
}

// Get returns a provider by name
func Get(name string) (Provider, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, p := range registry {
		if p.Name == name {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// List returns the registered provider names in registration order
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for _, p := range registry {
		names = append(names, p.Name)
	}
	return names
}

func snapshot() []Provider {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Provider, len(registry))
	copy(out, registry)
	return out
}

// ChatModelProviders loads every provider and lists the ones offering at
// least one chat model, in registration order. Models keep the order their
// provider declares them in; the first one is the default selection.
func ChatModelProviders() models.ProviderModels {
	var result models.ProviderModels
	for _, p := range snapshot() {
		if p.LoadChat == nil {
			continue
		}
		loaded := p.LoadChat()
		if len(loaded) == 0 {
			continue
		}
		descriptors := make([]models.ModelDescriptor, 0, len(loaded))
		for _, key := range listOrder(loaded) {
			descriptors = append(descriptors, models.ModelDescriptor{Name: key, DisplayName: loaded[key].DisplayName})
		}
		result.Set(p.Name, descriptors)
	}
	return result
}

// EmbeddingModelProviders is ChatModelProviders for embedding models
func EmbeddingModelProviders() models.ProviderModels {
	var result models.ProviderModels
	for _, p := range snapshot() {
		if p.LoadEmbeddings == nil {
			continue
		}
		loaded := p.LoadEmbeddings()
		if len(loaded) == 0 {
			continue
		}
		descriptors := make([]models.ModelDescriptor, 0, len(loaded))
		for _, key := range listOrder(loaded) {
			descriptors = append(descriptors, models.ModelDescriptor{Name: key, DisplayName: loaded[key].DisplayName})
		}
		result.Set(p.Name, descriptors)
	}
	return result
}

// ResolveChatModel returns model of provider
func ResolveChatModel(provider, model string) (*ChatModel, error) {
	p, err := Get(provider)
	if err != nil {
		return nil, err
	}
	if p.LoadChat == nil {
		return nil, fmt.Errorf("%w: %s offers no chat models", ErrUnknownModel, provider)
	}
	m, ok := p.LoadChat()[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownModel, provider, model)
	}
	return m, nil
}

// ResolveEmbeddingModel returns model of provider
func ResolveEmbeddingModel(provider, model string) (*EmbeddingModel, error) {
	p, err := Get(provider)
	if err != nil {
		return nil, err
	}
	if p.LoadEmbeddings == nil {
		return nil, fmt.Errorf("%w: %s offers no embedding models", ErrUnknownModel, provider)
	}
	m, ok := p.LoadEmbeddings()[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownModel, provider, model)
	}
	return m, nil
}

type positioned interface {
	listPosition() int
}

// listOrder returns the keys of m by model position, ties broken by key
func listOrder[M positioned](m map[string]M) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return m[keys[i]].listPosition() < m[keys[j]].listPosition()
	})
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	Register(Provider{Name: "openai", LoadChat: LoadOpenAIChatModels, LoadEmbeddings: LoadOpenAIEmbeddingModels})
	Register(Provider{Name: "ollama", LoadChat: LoadOllamaChatModels, LoadEmbeddings: LoadOllamaEmbeddingModels})
	Register(Provider{Name: "groq", LoadChat: LoadGroqChatModels})
	Register(Provider{Name: "anthropic", LoadChat: LoadAnthropicChatModels})
	Register(Provider{Name: "gemini", LoadChat: LoadGeminiChatModels, LoadEmbeddings: LoadGeminiEmbeddingModels})
	Register(Provider{Name: "openrouter", LoadChat: LoadOpenRouterChatModels})
}
