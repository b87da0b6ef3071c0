package providers

import (
	"github.com/sirupsen/logrus"
)

// defaultTemperature is used by every built-in chat model
const defaultTemperature = 0.7

type modelSpec struct {
	key         string
	model       string
	displayName string
}

// buildChatModels constructs every modelSpec against e, remembering each
// model's position in specs. A single failure is logged and discards the
// whole provider.
func buildChatModels(e endpoint, specs []modelSpec) map[string]*ChatModel {
	result := make(map[string]*ChatModel, len(specs))
	for i, s := range specs {
		m, err := newChatModel(e, s.model, s.displayName, defaultTemperature)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"provider": e.provider,
				"model":    s.model,
			}).WithError(err).Error("Error loading chat models")
			return map[string]*ChatModel{}
		}
		m.position = i
		result[s.key] = m
	}
	return result
}

func buildEmbeddingModels(e endpoint, specs []modelSpec) map[string]*EmbeddingModel {
	result := make(map[string]*EmbeddingModel, len(specs))
	for i, s := range specs {
		m, err := newEmbeddingModel(e, s.model, s.displayName)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"provider": e.provider,
				"model":    s.model,
			}).WithError(err).Error("Error loading embedding models")
			return map[string]*EmbeddingModel{}
		}
		m.position = i
		result[s.key] = m
	}
	return result
}
