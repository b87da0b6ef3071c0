package providers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"modelcfg/config"
	"modelcfg/internal/utils"
)

var (
	// Installed models change rarely; avoid hitting /api/tags on every listing
	ollamaTags = cache.New(5*time.Minute, 10*time.Minute)
	ollamaHTTP = &http.Client{Timeout: 5 * time.Second}
)

// listOllamaModels returns the names of the models installed on the server
func listOllamaModels(baseURL string) ([]string, error) {
	if cached, ok := ollamaTags.Get(baseURL); ok {
		return cached.([]string), nil
	}

	resp, err := ollamaHTTP.Get(utils.JoinURL(baseURL, "/api/tags"))
	if err != nil {
		return nil, fmt.Errorf("failed to list ollama models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ollama response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("ollama returned invalid JSON")
	}

	var names []string
	for _, name := range gjson.GetBytes(body, "models.#.name").Array() {
		if name.String() != "" {
			names = append(names, name.String())
		}
	}

	ollamaTags.Set(baseURL, names, cache.DefaultExpiration)
	return names, nil
}

func ollamaSpecs(baseURL string) ([]modelSpec, bool) {
	names, err := listOllamaModels(baseURL)
	if err != nil {
		logrus.WithField("provider", "ollama").WithError(err).Error("Error loading Ollama models")
		return nil, false
	}
	specs := make([]modelSpec, 0, len(names))
	for _, n := range names {
		specs = append(specs, modelSpec{key: n, model: n, displayName: n})
	}
	return specs, true
}

// Ollama ignores the key but the OpenAI client requires one
func ollamaEndpoint(baseURL string) endpoint {
	return endpoint{provider: "ollama", apiKey: "ollama", baseURL: utils.JoinURL(baseURL, "/v1")}
}

// LoadOllamaChatModels returns the installed Ollama models when an endpoint is configured
func LoadOllamaChatModels() map[string]*ChatModel {
	return loadOllamaChatModels(config.OllamaAPIURL())
}

func loadOllamaChatModels(baseURL string) map[string]*ChatModel {
	if baseURL == "" {
		return map[string]*ChatModel{}
	}
	specs, ok := ollamaSpecs(baseURL)
	if !ok {
		return map[string]*ChatModel{}
	}
	return buildChatModels(ollamaEndpoint(baseURL), specs)
}

// LoadOllamaEmbeddingModels returns the installed Ollama models as embedding models
func LoadOllamaEmbeddingModels() map[string]*EmbeddingModel {
	return loadOllamaEmbeddingModels(config.OllamaAPIURL())
}

func loadOllamaEmbeddingModels(baseURL string) map[string]*EmbeddingModel {
	if baseURL == "" {
		return map[string]*EmbeddingModel{}
	}
	specs, ok := ollamaSpecs(baseURL)
	if !ok {
		return map[string]*EmbeddingModel{}
	}
	return buildEmbeddingModels(ollamaEndpoint(baseURL), specs)
}
