// Package probe checks that configured chat models answer requests.
package probe

import "time"

// Error categories of a failed probe
const (
	CategoryAuthFailure      = "authentication_failure"
	CategoryModelNotFound    = "model_not_found"
	CategoryRateLimit        = "rate_limit"
	CategoryNetworkError     = "network_error"
	CategoryTimeout          = "timeout"
	CategoryServerError      = "server_error"
	CategoryEndpointNotFound = "endpoint_not_found"
	CategoryUnknown          = "unknown_error"
)

// Level summarizes the checks of a probe
type Level string

const (
	LevelFull    Level = "full"
	LevelPartial Level = "partial"
	LevelNone    Level = "none"
)

// Exit codes of the check command
const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 1
	ExitCodeWarning = 2
)

// Check names
const (
	CheckRequest = "Request"
	CheckReply   = "Reply"
	CheckLatency = "Latency"
)

// Result is the outcome of probing one model
type Result struct {
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Success      bool          `json:"success"`
	Level        Level         `json:"level"`
	Checks       []CheckResult `json:"checks"`
	ResponseTime time.Duration `json:"-"`
	Category     string        `json:"category,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// CheckResult is the result of a single check
type CheckResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message"`
	Critical bool   `json:"critical"`
}

// DetermineLevel returns the level and exit code for checks:
// all passed is full, a failed critical check is none, otherwise partial.
func DetermineLevel(checks []CheckResult) (Level, int) {
	if len(checks) == 0 {
		return LevelNone, ExitCodeFailure
	}

	allPassed := true
	for _, check := range checks {
		if check.Passed {
			continue
		}
		if check.Critical {
			return LevelNone, ExitCodeFailure
		}
		allPassed = false
	}

	if allPassed {
		return LevelFull, ExitCodeSuccess
	}
	return LevelPartial, ExitCodeWarning
}

// Overall returns the exit code of a set of results: the worst of them.
// No results is a failure.
func Overall(results []Result) int {
	if len(results) == 0 {
		return ExitCodeFailure
	}
	code := ExitCodeSuccess
	for _, r := range results {
		_, c := DetermineLevel(r.Checks)
		switch {
		case c == ExitCodeFailure:
			return ExitCodeFailure
		case c == ExitCodeWarning:
			code = ExitCodeWarning
		}
	}
	return code
}
