// Package prefs stores the client-local preferences of the settings editor
// in a small JSON file. Keys this package does not know about are preserved,
// so the file can be shared with other tools.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"modelcfg/config"
	"modelcfg/config/storage"
)

// Preference keys
const (
	ChatModelProvider      = "chatModelProvider"
	ChatModel              = "chatModel"
	EmbeddingModelProvider = "embeddingModelProvider"
	EmbeddingModel         = "embeddingModel"
	CustomOpenAIAPIKey     = "openAIApiKey"
	CustomOpenAIBaseURL    = "openAIBaseURL"
)

// Keys lists every preference key in display order
var Keys = []string{
	ChatModelProvider,
	ChatModel,
	EmbeddingModelProvider,
	EmbeddingModel,
	CustomOpenAIAPIKey,
	CustomOpenAIBaseURL,
}

// Store is a JSON-file backed preference set
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a Store backed by path. The file is created on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the configured prefs path, defaulting to
// $XDG_CONFIG_HOME/modelcfg/prefs.json
func DefaultPath() (string, error) {
	if p := viper.GetString(config.KeyPrefsPath); p != "" {
		return p, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prefs.json"), nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "{}", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preferences: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "{}", nil
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("preferences file %s is not valid JSON", s.path)
	}
	return string(data), nil
}

// Get returns the stored value of key, or "" when absent
func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return "", err
	}
	return gjson.Get(content, escapePath(key)).String(), nil
}

// All returns every known preference, absent keys mapped to ""
func (s *Store) All() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(Keys))
	for _, key := range Keys {
		result[key] = gjson.Get(content, escapePath(key)).String()
	}
	return result, nil
}

// Set stores a single value
func (s *Store) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

// SetMany stores every entry of values in one atomic write
func (s *Store) SetMany(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return err
	}

	for _, key := range sortedKeys(values) {
		content, err = sjson.Set(content, escapePath(key), values[key])
		if err != nil {
			return fmt.Errorf("failed to set preference %q: %w", key, err)
		}
	}

	if err := storage.AtomicFileUpdate(s.path, []byte(content), false); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// escapePath makes key usable as a literal gjson/sjson path
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
