package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})
}

func TestInitWritesToFile(t *testing.T) {
	restoreLogger(t)
	t.Setenv("ENVIRONMENT", "")
	path := filepath.Join(t.TempDir(), "logs", "modelcfg.log")

	closer, err := Init("debug", path)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	WithComponent("test").Debug("hello from test")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello from test") || !strings.Contains(string(data), "component=test") {
		t.Errorf("log file = %q", data)
	}
}

func TestInitProductionUsesJSON(t *testing.T) {
	restoreLogger(t)
	t.Setenv("ENVIRONMENT", "production")
	path := filepath.Join(t.TempDir(), "modelcfg.log")

	closer, err := Init("info", path)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	logrus.WithField("provider", "openrouter").Info("loaded")
	closer.Close()

	data, _ := os.ReadFile(path)
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", data)
	}
	if entry["provider"] != "openrouter" || entry["msg"] != "loaded" {
		t.Errorf("entry = %v", entry)
	}
}

func TestInitLevels(t *testing.T) {
	restoreLogger(t)

	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{"", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"chatty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := Init(tt.level, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if err == nil && logrus.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", logrus.GetLevel(), tt.want)
			}
		})
	}
}
