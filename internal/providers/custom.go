package providers

import (
	"modelcfg/config/validation"
)

// NewCustomChatModel builds the single model of a user-supplied
// OpenAI-compatible endpoint.
func NewCustomChatModel(model, apiKey, baseURL string) (*ChatModel, error) {
	if err := validation.NewValidator().ValidateCustomEndpoint(model, apiKey, baseURL); err != nil {
		return nil, err
	}
	e := endpoint{provider: CustomOpenAI, apiKey: apiKey, baseURL: baseURL}
	return newChatModel(e, model, model, defaultTemperature)
}
