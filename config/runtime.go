package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"modelcfg/config/models"
)

// Runtime option keys, read from the YAML config file or MODELCFG_* env vars
const (
	KeyListen            = "listen"
	KeyBackendURL        = "backend_url"
	KeyLogLevel          = "log_level"
	KeyLogFile           = "log_file"
	KeySettingsPath      = "settings_path"
	KeyPrefsPath         = "prefs_path"
	KeyOpenRouterReferer = "openrouter.referer"
	KeyAppName           = "app_name"
	KeyCORSOrigins       = "cors_origins"
	KeyOpenRouterAPIKey  = "openrouter_api_key"
	KeyOpenAIAPIKey      = "openai_api_key"
	KeyAnthropicAPIKey   = "anthropic_api_key"
	KeyGroqAPIKey        = "groq_api_key"
	KeyGeminiAPIKey      = "gemini_api_key"
	KeyOllamaAPIURL      = "ollama_api_url"
)

const (
	DefaultListenAddr = ":3001"
	DefaultBackendURL = "http://localhost:3001"
	DefaultAppName    = "modelcfg"
	// Comma-separated list of browser origins allowed to call the API
	DefaultCORSOrigins = "http://localhost:3000,http://127.0.0.1:3000"
)

// SetDefaults registers the default runtime options
func SetDefaults() {
	viper.SetDefault(KeyListen, DefaultListenAddr)
	viper.SetDefault(KeyBackendURL, DefaultBackendURL)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyAppName, DefaultAppName)
	viper.SetDefault(KeyCORSOrigins, DefaultCORSOrigins)
}

// InitRuntime loads .env, the YAML config file and the environment into viper.
// A missing default config file is not an error; a missing explicit one is.
func InitRuntime(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults()

	viper.SetEnvPrefix("MODELCFG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Provider credentials also honour their conventional unprefixed names
	envAliases := map[string]string{
		KeyOpenRouterAPIKey: "OPENROUTER_API_KEY",
		KeyOpenAIAPIKey:     "OPENAI_API_KEY",
		KeyAnthropicAPIKey:  "ANTHROPIC_API_KEY",
		KeyGroqAPIKey:       "GROQ_API_KEY",
		KeyGeminiAPIKey:     "GEMINI_API_KEY",
		KeyOllamaAPIURL:     "OLLAMA_API_URL",
	}
	for key, alias := range envAliases {
		envName := "MODELCFG_" + strings.ToUpper(key)
		if err := viper.BindEnv(key, envName, alias); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("modelcfg")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// ConfigDir returns $XDG_CONFIG_HOME/modelcfg, defaulting to ~/.config/modelcfg
func ConfigDir() (string, error) {
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(xdgConfigHome, "modelcfg"), nil
}

var (
	defaultMu      sync.RWMutex
	defaultManager *Manager
)

// SetDefault installs the Manager read by the process-wide accessors
func SetDefault(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

// Default returns the Manager installed by SetDefault, or nil
func Default() *Manager {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultManager
}

// CurrentSettings returns the stored settings of the default Manager.
// Errors are logged and yield zero settings.
func CurrentSettings() models.Settings {
	m := Default()
	if m == nil {
		return models.Settings{}
	}
	s, err := m.Load()
	if err != nil {
		logrus.WithError(err).Error("Failed to load settings")
		return models.Settings{}
	}
	return s
}

// EffectiveSettings overlays the runtime fallbacks onto the stored settings
func EffectiveSettings() models.Settings {
	s := CurrentSettings()
	fill := func(field *string, key string) {
		if *field == "" {
			*field = viper.GetString(key)
		}
	}
	fill(&s.OpenAIAPIKey, KeyOpenAIAPIKey)
	fill(&s.AnthropicAPIKey, KeyAnthropicAPIKey)
	fill(&s.GroqAPIKey, KeyGroqAPIKey)
	fill(&s.GeminiAPIKey, KeyGeminiAPIKey)
	fill(&s.OpenRouterAPIKey, KeyOpenRouterAPIKey)
	fill(&s.OllamaAPIURL, KeyOllamaAPIURL)
	return s
}

// OpenRouterAPIKey returns the OpenRouter credential, or "" when unset
func OpenRouterAPIKey() string { return EffectiveSettings().OpenRouterAPIKey }

// OpenAIAPIKey returns the OpenAI credential, or "" when unset
func OpenAIAPIKey() string { return EffectiveSettings().OpenAIAPIKey }

// AnthropicAPIKey returns the Anthropic credential, or "" when unset
func AnthropicAPIKey() string { return EffectiveSettings().AnthropicAPIKey }

// GroqAPIKey returns the Groq credential, or "" when unset
func GroqAPIKey() string { return EffectiveSettings().GroqAPIKey }

// GeminiAPIKey returns the Gemini credential, or "" when unset
func GeminiAPIKey() string { return EffectiveSettings().GeminiAPIKey }

// OllamaAPIURL returns the Ollama endpoint, or "" when unset
func OllamaAPIURL() string { return EffectiveSettings().OllamaAPIURL }

// AttributionReferer is sent as HTTP-Referer to aggregators that rank apps
func AttributionReferer() string { return viper.GetString(KeyOpenRouterReferer) }

// AppName is the application label, sent as X-Title
func AppName() string { return viper.GetString(KeyAppName) }
