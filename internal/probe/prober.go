package probe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"modelcfg/internal/providers"

	"github.com/sirupsen/logrus"
)

const probePrompt = "Reply with the single word: pong"

// Invoker sends one chat request
type Invoker interface {
	Invoke(ctx context.Context, messages []providers.Message) (string, error)
}

// Target is a chat model to probe
type Target struct {
	Provider string
	Model    string
	Chat     Invoker
}

// Prober sends a minimal request to each target and grades the answer
type Prober struct {
	timeout time.Duration
	slow    time.Duration
}

// Option configures a Prober
type Option func(*Prober)

// WithTimeout bounds each request
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.timeout = d
	}
}

// WithSlowThreshold sets the response time above which the latency check fails
func WithSlowThreshold(d time.Duration) Option {
	return func(p *Prober) {
		p.slow = d
	}
}

// New creates a Prober
func New(opts ...Option) *Prober {
	p := &Prober{
		timeout: 30 * time.Second,
		slow:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe sends one request to t. A failed request is a critical check; an
// empty reply or a slow answer only degrade the result.
func (p *Prober) Probe(ctx context.Context, t Target) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	reply, err := t.Chat.Invoke(ctx, []providers.Message{{Role: providers.RoleUser, Content: probePrompt}})
	elapsed := time.Since(start)

	result := Result{
		Provider:     t.Provider,
		Model:        t.Model,
		ResponseTime: elapsed,
	}

	if err != nil {
		info := CategorizeError(err)
		result.Category = info.Category
		result.Error = info.Message
		result.Checks = []CheckResult{{
			Name:     CheckRequest,
			Passed:   false,
			Message:  info.UserMessage,
			Critical: true,
		}}
		logrus.WithFields(logrus.Fields{
			"provider": t.Provider,
			"model":    t.Model,
			"category": info.Category,
		}).WithError(err).Debug("Probe failed")
	} else {
		replyCheck := CheckResult{Name: CheckReply, Passed: strings.TrimSpace(reply) != "", Message: "model answered"}
		if !replyCheck.Passed {
			replyCheck.Message = "empty reply"
		}
		result.Checks = []CheckResult{
			{Name: CheckRequest, Passed: true, Message: "request accepted", Critical: true},
			replyCheck,
			{
				Name:    CheckLatency,
				Passed:  elapsed <= p.slow,
				Message: fmt.Sprintf("%dms (limit %dms)", elapsed.Milliseconds(), p.slow.Milliseconds()),
			},
		}
	}

	result.Level, _ = DetermineLevel(result.Checks)
	result.Success = result.Level == LevelFull
	return result
}

// ProbeAll probes every target concurrently. Results keep the order of targets.
func (p *Prober) ProbeAll(ctx context.Context, targets []Target) []Result {
	results := make([]Result, len(targets))

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			results[i] = p.Probe(ctx, t)
		}(i, t)
	}
	wg.Wait()

	return results
}
