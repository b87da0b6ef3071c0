package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"modelcfg/internal/providers"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type fakeInvoker struct {
	reply string
	err   error
	delay time.Duration
	block bool
}

func (f fakeInvoker) Invoke(ctx context.Context, messages []providers.Message) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.reply, f.err
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name         string
		invoker      fakeInvoker
		opts         []Option
		wantLevel    Level
		wantCategory string
	}{
		{"answer", fakeInvoker{reply: "pong"}, nil, LevelFull, ""},
		{"empty reply", fakeInvoker{reply: "  "}, nil, LevelPartial, ""},
		{"slow answer", fakeInvoker{reply: "pong", delay: 20 * time.Millisecond}, []Option{WithSlowThreshold(time.Millisecond)}, LevelPartial, ""},
		{"request error", fakeInvoker{err: errors.New("boom")}, nil, LevelNone, CategoryUnknown},
		{"timeout", fakeInvoker{block: true}, []Option{WithTimeout(10 * time.Millisecond)}, LevelNone, CategoryTimeout},
		{"network error", fakeInvoker{err: &url.Error{Op: "Post", URL: "http://127.0.0.1:1", Err: errors.New("connection refused")}}, nil, LevelNone, CategoryNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.opts...)
			res := p.Probe(context.Background(), Target{Provider: "groq", Model: "mixtral", Chat: tt.invoker})

			if res.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q (checks %+v)", res.Level, tt.wantLevel, res.Checks)
			}
			if res.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", res.Category, tt.wantCategory)
			}
			if res.Success != (tt.wantLevel == LevelFull) {
				t.Errorf("Success = %v", res.Success)
			}
			if res.Provider != "groq" || res.Model != "mixtral" {
				t.Errorf("target = %s/%s", res.Provider, res.Model)
			}
		})
	}
}

func TestProbeAllKeepsOrder(t *testing.T) {
	targets := []Target{
		{Provider: "a", Model: "slow", Chat: fakeInvoker{reply: "pong", delay: 20 * time.Millisecond}},
		{Provider: "b", Model: "fast", Chat: fakeInvoker{reply: "pong"}},
		{Provider: "c", Model: "broken", Chat: fakeInvoker{err: errors.New("boom")}},
	}

	results := New().ProbeAll(context.Background(), targets)
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Provider != want {
			t.Errorf("results[%d].Provider = %q, want %q", i, results[i].Provider, want)
		}
	}
	if got := Overall(results); got != ExitCodeFailure {
		t.Errorf("Overall() = %d, want %d", got, ExitCodeFailure)
	}
}

func TestCategorizeStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{http.StatusUnauthorized, "", CategoryAuthFailure},
		{http.StatusForbidden, "", CategoryAuthFailure},
		{http.StatusNotFound, "The model `x` does not exist", CategoryModelNotFound},
		{http.StatusNotFound, "not found", CategoryEndpointNotFound},
		{http.StatusTooManyRequests, "", CategoryRateLimit},
		{http.StatusBadGateway, "", CategoryServerError},
		{http.StatusBadRequest, "", CategoryUnknown},
	}

	for _, tt := range tests {
		if got := CategorizeStatus(tt.status, tt.body); got != tt.want {
			t.Errorf("CategorizeStatus(%d, %q) = %q, want %q", tt.status, tt.body, got, tt.want)
		}
	}
}

func TestCategorizeAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, CategoryAuthFailure},
		{"unknown model", http.StatusNotFound, `{"error":{"message":"The model does not exist","type":"invalid_request_error"}}`, CategoryModelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			m, err := providers.NewCustomChatModel("test-model", "sk-test", srv.URL)
			if err != nil {
				t.Fatalf("NewCustomChatModel() error = %v", err)
			}
			_, err = m.Invoke(context.Background(), []providers.Message{{Role: providers.RoleUser, Content: "hi"}})
			if err == nil {
				t.Fatal("Invoke() should fail")
			}

			info := CategorizeError(err)
			if info.Category != tt.want {
				t.Errorf("Category = %q, want %q (%v)", info.Category, tt.want, err)
			}
			if info.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", info.StatusCode, tt.status)
			}
			if info.UserMessage != UserMessage(tt.want) {
				t.Errorf("UserMessage = %q", info.UserMessage)
			}
		})
	}
}

func TestReporter(t *testing.T) {
	results := []Result{
		{
			Provider: "groq", Model: "mixtral", Level: LevelFull, ResponseTime: 120 * time.Millisecond,
			Checks: []CheckResult{{Name: CheckRequest, Passed: true, Message: "request accepted", Critical: true}},
		},
		{
			Provider: "openai", Model: "gpt-4o", Level: LevelNone, Category: CategoryAuthFailure, Error: "401",
			Checks: []CheckResult{{Name: CheckRequest, Passed: false, Message: UserMessage(CategoryAuthFailure), Critical: true}},
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewReporter(&buf).Report(results); err != nil {
			t.Fatalf("Report() error = %v", err)
		}
		text := buf.String()
		for _, want := range []string{"✅ groq/mixtral (120ms)", "❌ openai/gpt-4o", "Error [authentication_failure]: 401"} {
			if !strings.Contains(text, want) {
				t.Errorf("output missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewReporter(&buf, WithJSONOutput(true)).Report(results); err != nil {
			t.Fatalf("Report() error = %v", err)
		}
		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if len(decoded) != 2 {
			t.Fatalf("len = %d, want 2", len(decoded))
		}
		if decoded[0]["responseTimeMs"] != float64(120) || decoded[1]["category"] != CategoryAuthFailure {
			t.Errorf("decoded = %v", decoded)
		}
	})

	t.Run("no results", func(t *testing.T) {
		var buf bytes.Buffer
		NewReporter(&buf).Report(nil)
		if !strings.Contains(buf.String(), "No chat models configured") {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestPropertyLevelFollowsChecks(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	checkGen := gopter.CombineGens(
		gen.Bool(), // Passed
		gen.Bool(), // Critical
	).Map(func(values []interface{}) CheckResult {
		return CheckResult{
			Name:     "check",
			Passed:   values[0].(bool),
			Critical: values[1].(bool),
		}
	})
	checksGen := gen.SliceOfN(5, checkGen)

	properties.Property("level and exit code agree with check outcomes", prop.ForAll(
		func(checks []CheckResult) bool {
			level, code := DetermineLevel(checks)

			criticalFailed, anyFailed := false, false
			for _, c := range checks {
				if !c.Passed {
					anyFailed = true
					if c.Critical {
						criticalFailed = true
					}
				}
			}

			switch {
			case len(checks) == 0, criticalFailed:
				return level == LevelNone && code == ExitCodeFailure
			case anyFailed:
				return level == LevelPartial && code == ExitCodeWarning
			default:
				return level == LevelFull && code == ExitCodeSuccess
			}
		},
		checksGen,
	))

	properties.TestingRun(t)
}
