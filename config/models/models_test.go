package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProviderModelsKeepsInputOrder(t *testing.T) {
	input := `{"zeta":[{"name":"z1","displayName":"Z1"}],"alpha":[],"mid":[{"name":"m1","displayName":"M1"},{"name":"m2","displayName":"M2"}]}`

	var p ProviderModels
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := strings.Join(p.Providers(), ",")
	if got != "zeta,alpha,mid" {
		t.Errorf("Providers() = %q, want %q", got, "zeta,alpha,mid")
	}
	if p.FirstProvider() != "zeta" {
		t.Errorf("FirstProvider() = %q, want zeta", p.FirstProvider())
	}
	if p.FirstModel("mid") != "m1" {
		t.Errorf("FirstModel(mid) = %q, want m1", p.FirstModel("mid"))
	}
	if p.FirstModel("alpha") != "" {
		t.Errorf("FirstModel(alpha) = %q, want empty", p.FirstModel("alpha"))
	}
	if p.FirstModel("missing") != "" {
		t.Errorf("FirstModel(missing) = %q, want empty", p.FirstModel("missing"))
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != input {
		t.Errorf("Marshal() = %s, want %s", out, input)
	}
}

func TestProviderModelsUnmarshalEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantCount int
	}{
		{"null", `null`, false, 0},
		{"empty object", `{}`, false, 0},
		{"null model list", `{"a":null}`, false, 1},
		{"array instead of object", `[1,2]`, true, 0},
		{"bad model list", `{"a":"nope"}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ProviderModels
			err := json.Unmarshal([]byte(tt.input), &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Len() != tt.wantCount {
				t.Errorf("Len() = %d, want %d", p.Len(), tt.wantCount)
			}
		})
	}
}

func TestProviderModelsEmptyListMarshalsAsArray(t *testing.T) {
	var p ProviderModels
	p.Set("b", nil)

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"b":[]}` {
		t.Errorf("Marshal() = %s, want {\"b\":[]}", out)
	}
}

func TestDocumentSettingsRoundTrip(t *testing.T) {
	doc := Document{
		OpenAIAPIKey:     "sk-openai",
		OllamaAPIURL:     "http://localhost:11434",
		OpenRouterAPIKey: "sk-or",
	}

	s := doc.Settings()
	var other Document
	other.ApplySettings(s)

	if other.Settings() != s {
		t.Errorf("ApplySettings(Settings()) = %+v, want %+v", other.Settings(), s)
	}
}

// For any sequence of Set calls, providers are listed in first-insertion order
// and survive a JSON round trip in that order.
func TestPropertyProviderOrderSurvivesJSON(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("insertion order is preserved", prop.ForAll(
		func(names []string) bool {
			var p ProviderModels
			var expected []string
			seen := make(map[string]bool)
			for _, n := range names {
				p.Set(n, []ModelDescriptor{{Name: n + "-model", DisplayName: n}})
				if !seen[n] {
					seen[n] = true
					expected = append(expected, n)
				}
			}

			data, err := json.Marshal(p)
			if err != nil {
				return false
			}
			var decoded ProviderModels
			if err := json.Unmarshal(data, &decoded); err != nil {
				return false
			}

			got := decoded.Providers()
			if len(got) != len(expected) {
				return false
			}
			for i := range got {
				if got[i] != expected[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("openai", "ollama", "groq", "a.b", "x y", "custom_openai")),
	))

	properties.TestingRun(t)
}
