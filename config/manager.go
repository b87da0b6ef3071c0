package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"

	"modelcfg/config/models"
	"modelcfg/config/storage"
	"modelcfg/config/validation"
	"modelcfg/internal/crypto"
)

// Manager owns the backend settings file
type Manager struct {
	settingsPath string
	keys         *crypto.KeyManager
	mu           sync.Mutex // Mutex to protect concurrent access
}

// NewManager creates a Manager at the configured settings path, migrating the
// legacy ~/.modelcfg.json file when present. Secrets are encrypted with the
// key in MODELCFG_SECRET, or with a generated key file next to the settings.
func NewManager() (*Manager, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	settingsPath := viper.GetString(KeySettingsPath)
	if settingsPath == "" {
		settingsPath = filepath.Join(dir, "settings.json")
	}

	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		oldPath := filepath.Join(homeDir, ".modelcfg.json")
		if storage.ShouldMigrateConfig(oldPath, settingsPath) {
			if err := storage.MigrateConfig(oldPath, settingsPath); err != nil {
				logrus.WithError(err).Warn("Failed to migrate legacy settings")
			} else {
				logrus.WithField("path", settingsPath).Info("Migrated settings from legacy location")
			}
		}
	}

	var keys *crypto.KeyManager
	if secret := os.Getenv("MODELCFG_SECRET"); secret != "" {
		keys = crypto.NewKeyManagerFromSecret(secret)
	} else {
		keys, err = crypto.NewKeyManager(filepath.Join(dir, ".keys", "master.key"))
		if err != nil {
			return nil, err
		}
	}

	return NewManagerAt(settingsPath, keys), nil
}

// NewManagerAt creates a Manager for an explicit path. A nil key manager
// stores secrets in plaintext.
func NewManagerAt(settingsPath string, keys *crypto.KeyManager) *Manager {
	return &Manager{settingsPath: settingsPath, keys: keys}
}

// Path returns the path to the settings file
func (m *Manager) Path() string {
	return m.settingsPath
}

// withFileLock runs fn while holding an advisory lock on the sidecar lock file.
// The settings file itself is replaced by rename, so it cannot carry the lock.
func (m *Manager) withFileLock(exclusive bool, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(m.settingsPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lf, err := os.OpenFile(m.settingsPath+".lock", os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer lf.Close()

	lock := lockFileShared
	if exclusive {
		lock = lockFileExclusive
	}
	if err := lock(lf); err != nil {
		return fmt.Errorf("failed to lock settings file: %w", err)
	}
	defer func() {
		if err := unlockFile(lf); err != nil {
			logrus.WithError(err).Warn("Failed to unlock settings file")
		}
	}()

	return fn()
}

// readFile loads and decodes the settings file. A missing or empty file
// yields zero settings.
func (m *Manager) readFile() (*models.File, error) {
	var data []byte
	err := m.withFileLock(false, func() error {
		var readErr error
		data, readErr = os.ReadFile(m.settingsPath)
		if os.IsNotExist(readErr) {
			return nil
		}
		return readErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	return decodeFile(data)
}

func decodeFile(data []byte) (*models.File, error) {
	if len(data) == 0 {
		return &models.File{Version: models.CurrentFileVersion}, nil
	}

	var file models.File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	// Legacy files hold the settings object at the top level
	if !gjson.GetBytes(data, "settings").Exists() {
		var legacy models.Settings
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("failed to parse legacy settings file: %w", err)
		}
		file.Settings = legacy
	}
	file.Version = models.CurrentFileVersion

	return &file, nil
}

// load returns decrypted settings. A corrupt file is restored from its most
// recent backup before giving up.
func (m *Manager) load() (models.Settings, error) {
	file, err := m.readFile()
	if err != nil {
		logrus.WithError(err).WithField("path", m.settingsPath).Warn("Settings file unreadable, trying latest backup")
		restoreErr := m.withFileLock(true, func() error {
			return storage.NewSnapshots(storage.SnapshotsKept).RestoreLatest(m.settingsPath)
		})
		if restoreErr != nil {
			return models.Settings{}, err
		}
		if file, err = m.readFile(); err != nil {
			return models.Settings{}, err
		}
	}

	settings := file.Settings
	for _, field := range secretFields(&settings) {
		if *field == "" {
			continue
		}
		if m.keys == nil {
			if crypto.IsEncrypted(*field) {
				return models.Settings{}, fmt.Errorf("settings are encrypted but no key is configured")
			}
			continue
		}
		plain, err := m.keys.DecryptIfNeeded(*field)
		if err != nil {
			return models.Settings{}, fmt.Errorf("failed to decrypt settings: %w", err)
		}
		*field = plain
	}

	return settings, nil
}

func (m *Manager) save(s models.Settings) error {
	if err := validation.NewValidator().ValidateSettings(s); err != nil {
		return err
	}

	if m.keys != nil {
		for _, field := range secretFields(&s) {
			enc, err := m.keys.Encrypt(*field)
			if err != nil {
				return fmt.Errorf("failed to encrypt settings: %w", err)
			}
			*field = enc
		}
	}

	data, err := json.MarshalIndent(models.File{Version: models.CurrentFileVersion, Settings: s}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	return m.withFileLock(true, func() error {
		return storage.AtomicFileUpdate(m.settingsPath, data, true)
	})
}

// Load returns the current settings with secrets decrypted
func (m *Manager) Load() (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load()
}

// Save validates and persists s, replacing every field
func (m *Manager) Save(s models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.save(s)
}

// Update applies fn to the stored settings and persists the result
func (m *Manager) Update(fn func(*models.Settings)) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.load()
	if err != nil {
		return models.Settings{}, err
	}

	fn(&current)

	if err := m.save(current); err != nil {
		return models.Settings{}, err
	}
	return current, nil
}

func secretFields(s *models.Settings) []*string {
	return []*string{
		&s.OpenAIAPIKey,
		&s.AnthropicAPIKey,
		&s.GroqAPIKey,
		&s.GeminiAPIKey,
		&s.OpenRouterAPIKey,
	}
}
