package validation

import (
	"fmt"
	"strings"
	"unicode"

	"modelcfg/internal/utils"
)

// InputValidator validates user input
type InputValidator struct {
}

// NewInputValidator creates a new InputValidator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateAPIKey checks that a non-empty key is a single printable token
func (iv *InputValidator) ValidateAPIKey(key string) error {
	if key == "" {
		return nil
	}
	if len(key) > 512 {
		return fmt.Errorf("API key is too long (max 512 characters)")
	}
	for _, r := range key {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("API key contains invalid characters")
		}
	}
	return nil
}

// ValidateURL checks if a URL is valid
func (iv *InputValidator) ValidateURL(url string) error {
	if url != "" && !utils.ValidateURL(url) {
		return fmt.Errorf("invalid URL format")
	}
	return nil
}

// ValidateModelName checks if a model name is valid.
// Slashes are allowed since aggregators namespace models by vendor.
func (iv *InputValidator) ValidateModelName(model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if strings.ContainsAny(model, "<>\"'&\\") {
		return fmt.Errorf("model name contains invalid characters")
	}
	return nil
}
