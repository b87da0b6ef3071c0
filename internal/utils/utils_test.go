package utils

import (
	"strings"
	"testing"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"Empty key", "", "****"},
		{"Short key (8 chars)", "12345678", "****"},
		{"Normal key (12 chars)", "123456789012", "1234****9012"},
		{"OpenRouter key", "sk-or-v1-abcdefghijklmnopqrstuvwxyz", "sk-o****wxyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.expected {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}

	t.Run("Middle characters never leak", func(t *testing.T) {
		masked := MaskAPIKey("test-key-supersecretkey123")
		if strings.Contains(masked, "supersecret") {
			t.Errorf("Masked key contains sensitive middle part: %q", masked)
		}
	})
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		values []string
		want   string
	}{
		{nil, ""},
		{[]string{"", ""}, ""},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"a", "b"}, "a"},
	}
	for _, tt := range tests {
		if got := FirstNonEmpty(tt.values...); got != tt.want {
			t.Errorf("FirstNonEmpty(%q) = %q, want %q", tt.values, got, tt.want)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"Valid HTTPS URL", "https://openrouter.ai/api/v1", true},
		{"Valid localhost URL", "http://localhost:11434", true},
		{"Valid IP address URL", "http://192.168.1.1:3000", true},
		{"Empty string", "", false},
		{"No scheme", "api.example.com", false},
		{"No host", "https://", false},
		{"Invalid scheme - ftp", "ftp://files.example.com", false},
		{"Malformed URL", "not a url at all", false},
		{"Missing colon after scheme", "https//example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateURL(tt.url); got != tt.expected {
				t.Errorf("ValidateURL(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, expected string
	}{
		{"http://localhost:11434", "/api/tags", "http://localhost:11434/api/tags"},
		{"http://localhost:11434/", "/api/tags", "http://localhost:11434/api/tags"},
		{"http://localhost:3001/api", "config", "http://localhost:3001/api/config"},
		{"", "/config", "/config"},
		{"http://h", "", "http://h"},
	}

	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.path); got != tt.expected {
			t.Errorf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.expected)
		}
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://openrouter.ai/api/v1", "openrouter.ai"},
		{"http://localhost:11434", "localhost:11434"},
		{"not a url", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractHost(tt.url); got != tt.expected {
			t.Errorf("ExtractHost(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}
