package providers

import (
	"github.com/sirupsen/logrus"

	"modelcfg/config"
)

const (
	// OpenRouterModelKey identifies the OpenRouter model in provider listings
	OpenRouterModelKey = "llama-3.3-70b"

	openRouterModel       = "meta-llama/llama-3.3-70b-instruct"
	openRouterDisplayName = "Llama 3.3 70B"
)

var openRouterBaseURL = "https://openrouter.ai/api/v1"

// LoadOpenRouterChatModels returns the OpenRouter chat model, or an empty map
// when no OpenRouter key is configured. The referer and application name
// are sent as attribution headers.
func LoadOpenRouterChatModels() map[string]*ChatModel {
	return loadOpenRouterChatModels(config.OpenRouterAPIKey(), config.AttributionReferer(), config.AppName())
}

func loadOpenRouterChatModels(apiKey, referer, appName string) map[string]*ChatModel {
	if apiKey == "" {
		return map[string]*ChatModel{}
	}

	headers := map[string]string{}
	if referer != "" {
		headers["HTTP-Referer"] = referer
	}
	if appName != "" {
		headers["X-Title"] = appName
	}

	displayName := appName
	if displayName == "" {
		displayName = openRouterDisplayName
	}

	e := endpoint{
		provider: "openrouter",
		apiKey:   apiKey,
		baseURL:  openRouterBaseURL,
		headers:  headers,
	}
	m, err := newChatModel(e, openRouterModel, displayName, defaultTemperature)
	if err != nil {
		logrus.WithField("provider", "openrouter").WithError(err).Error("Error loading OpenRouter models")
		return map[string]*ChatModel{}
	}

	return map[string]*ChatModel{OpenRouterModelKey: m}
}
