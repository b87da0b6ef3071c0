package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Reporter writes probe results as text or JSON
type Reporter struct {
	jsonOutput bool
	writer     io.Writer
}

// ReporterOption is a functional option for configuring a Reporter
type ReporterOption func(*Reporter)

// WithJSONOutput enables JSON output format
func WithJSONOutput(jsonOutput bool) ReporterOption {
	return func(r *Reporter) {
		r.jsonOutput = jsonOutput
	}
}

// NewReporter creates a reporter writing to writer
func NewReporter(writer io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{writer: writer}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type jsonResult struct {
	Result
	ResponseTimeMs int64 `json:"responseTimeMs"`
}

// Report outputs results in the configured format
func (r *Reporter) Report(results []Result) error {
	if r.jsonOutput {
		out := make([]jsonResult, 0, len(results))
		for _, res := range results {
			out = append(out, jsonResult{Result: res, ResponseTimeMs: res.ResponseTime.Milliseconds()})
		}
		encoder := json.NewEncoder(r.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	var sb strings.Builder
	if len(results) == 0 {
		sb.WriteString("No chat models configured\n")
	}
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s %s/%s (%dms)\n", verdict(res.Level), res.Provider, res.Model, res.ResponseTime.Milliseconds()))
		for _, check := range res.Checks {
			sb.WriteString(fmt.Sprintf("  %s %s: %s\n", checkMark(check), check.Name, check.Message))
		}
		if res.Error != "" {
			sb.WriteString(fmt.Sprintf("  Error [%s]: %s\n", res.Category, res.Error))
		}
	}

	_, err := io.WriteString(r.writer, sb.String())
	return err
}

func verdict(level Level) string {
	switch level {
	case LevelFull:
		return "✅"
	case LevelPartial:
		return "⚠️"
	case LevelNone:
		return "❌"
	}
	return "❓"
}

func checkMark(check CheckResult) string {
	switch {
	case check.Passed:
		return "✅"
	case check.Critical:
		return "❌"
	}
	return "⚠️"
}
