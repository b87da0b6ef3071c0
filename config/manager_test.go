package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"modelcfg/config/models"
	"modelcfg/config/storage"
	"modelcfg/internal/crypto"
)

func newTestManager(t *testing.T, keys *crypto.KeyManager) *Manager {
	t.Helper()
	return NewManagerAt(filepath.Join(t.TempDir(), "settings.json"), keys)
}

func TestManagerLoadMissingFile(t *testing.T) {
	m := newTestManager(t, nil)

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s != (models.Settings{}) {
		t.Errorf("Load() = %+v, want zero settings", s)
	}
}

func TestManagerSaveEncryptsSecrets(t *testing.T) {
	m := newTestManager(t, crypto.NewKeyManagerFromSecret("test"))

	want := models.Settings{
		OpenAIAPIKey:     "sk-openai-plaintext",
		OllamaAPIURL:     "http://localhost:11434",
		OpenRouterAPIKey: "sk-or-v1-plaintext",
	}
	if err := m.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(m.Path())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "plaintext") {
		t.Errorf("settings file contains plaintext secrets: %s", raw)
	}
	if !strings.Contains(string(raw), crypto.EncryptedPrefix) {
		t.Errorf("settings file has no encrypted values: %s", raw)
	}
	// Endpoints are not secrets
	if !strings.Contains(string(raw), "http://localhost:11434") {
		t.Errorf("ollama URL should be stored as-is: %s", raw)
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestManagerPlaintextWithoutKeys(t *testing.T) {
	m := newTestManager(t, nil)

	if err := m.Save(models.Settings{GroqAPIKey: "gsk-1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	raw, _ := os.ReadFile(m.Path())
	if !strings.Contains(string(raw), `"gsk-1"`) {
		t.Errorf("expected plaintext key in %s", raw)
	}
}

func TestManagerEncryptedFileWithoutKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := NewManagerAt(path, crypto.NewKeyManagerFromSecret("k")).Save(models.Settings{GroqAPIKey: "gsk-1"}); err != nil {
		t.Fatal(err)
	}

	if _, err := NewManagerAt(path, nil).Load(); err == nil {
		t.Error("Load() expected error for encrypted file without a key")
	}
}

func TestManagerSaveRejectsInvalid(t *testing.T) {
	m := newTestManager(t, nil)
	if err := m.Save(models.Settings{OpenAIAPIKey: "sk-1"}); err != nil {
		t.Fatal(err)
	}

	if err := m.Save(models.Settings{OllamaAPIURL: "not a url"}); err == nil {
		t.Fatal("Save() expected validation error")
	}

	got, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.OpenAIAPIKey != "sk-1" {
		t.Errorf("rejected save modified the file: %+v", got)
	}
}

func TestManagerUpdate(t *testing.T) {
	m := newTestManager(t, crypto.NewKeyManagerFromSecret("test"))
	if err := m.Save(models.Settings{OpenAIAPIKey: "sk-1", GroqAPIKey: "gsk-1"}); err != nil {
		t.Fatal(err)
	}

	updated, err := m.Update(func(s *models.Settings) {
		s.GroqAPIKey = "gsk-2"
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.OpenAIAPIKey != "sk-1" || updated.GroqAPIKey != "gsk-2" {
		t.Errorf("Update() = %+v", updated)
	}

	got, _ := m.Load()
	if got != updated {
		t.Errorf("Load() after Update = %+v, want %+v", got, updated)
	}
}

func TestManagerConcurrentUpdates(t *testing.T) {
	m := newTestManager(t, nil)

	setters := []func(*models.Settings, string){
		func(s *models.Settings, v string) { s.OpenAIAPIKey = v },
		func(s *models.Settings, v string) { s.AnthropicAPIKey = v },
		func(s *models.Settings, v string) { s.GroqAPIKey = v },
		func(s *models.Settings, v string) { s.GeminiAPIKey = v },
		func(s *models.Settings, v string) { s.OpenRouterAPIKey = v },
	}

	var wg sync.WaitGroup
	for i, set := range setters {
		wg.Add(1)
		go func(i int, set func(*models.Settings, string)) {
			defer wg.Done()
			if _, err := m.Update(func(s *models.Settings) { set(s, fmt.Sprintf("key-%d", i)) }); err != nil {
				t.Errorf("Update() error = %v", err)
			}
		}(i, set)
	}
	wg.Wait()

	got, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := models.Settings{
		OpenAIAPIKey:     "key-0",
		AnthropicAPIKey:  "key-1",
		GroqAPIKey:       "key-2",
		GeminiAPIKey:     "key-3",
		OpenRouterAPIKey: "key-4",
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v (lost update)", got, want)
	}
}

func TestManagerReadsLegacyFlatFile(t *testing.T) {
	m := newTestManager(t, nil)
	legacy := `{"openai_api_key":"sk-legacy","ollama_api_url":"http://localhost:11434"}`
	if err := os.WriteFile(m.Path(), []byte(legacy), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OpenAIAPIKey != "sk-legacy" || got.OllamaAPIURL != "http://localhost:11434" {
		t.Errorf("Load() = %+v", got)
	}
}

func TestManagerRestoresCorruptFileFromBackup(t *testing.T) {
	m := newTestManager(t, nil)
	if err := m.Save(models.Settings{OpenAIAPIKey: "sk-first"}); err != nil {
		t.Fatal(err)
	}
	// Second save backs up the first version
	if err := m.Save(models.Settings{OpenAIAPIKey: "sk-second"}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(m.Path(), []byte("{corrupt"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OpenAIAPIKey != "sk-first" {
		t.Errorf("Load() = %+v, want the backed up settings", got)
	}
}

func TestManagerCorruptFileWithoutBackup(t *testing.T) {
	m := newTestManager(t, nil)
	if err := os.WriteFile(m.Path(), []byte("{corrupt"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Load(); err == nil {
		t.Error("Load() expected error")
	}

	snaps := storage.NewSnapshots(storage.SnapshotsKept)
	if found, _ := snaps.List(m.Path()); len(found) != 0 {
		t.Errorf("unexpected snapshots %v", found)
	}
}
