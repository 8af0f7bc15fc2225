// Package embedding wraps an embedding backend with the guards the pipeline
// needs: input truncation, call pacing and a call budget.
package embedding

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"medrag/internal/domain"
)

// Options tune an Adapter. Zero values disable the corresponding guard.
type Options struct {
	MaxInputChars int
	CallBudget    int
	Delay         time.Duration
}

// Adapter calls an Embedder at most CallBudget times, no faster than one call
// per Delay, with inputs cut to MaxInputChars runes. Failures never surface
// as errors: the caller gets no vector and the record keeps an empty one.
type Adapter struct {
	embedder domain.Embedder
	opts     Options
	limiter  *rate.Limiter
	log      *zap.Logger

	calls     int
	failures  int
	exhausted bool
}

// NewAdapter wraps e. A nil e yields an adapter that is never available.
func NewAdapter(e domain.Embedder, opts Options, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{embedder: e, opts: opts, log: log}
	if opts.Delay > 0 {
		a.limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}
	return a
}

// Available reports whether a backend is configured.
func (a *Adapter) Available() bool { return a != nil && a.embedder != nil }

// Name returns the backend name, or "none".
func (a *Adapter) Name() string {
	if !a.Available() {
		return "none"
	}
	return a.embedder.Name()
}

// Prepare forwards the corpus to the backend.
func (a *Adapter) Prepare(corpus []string) error {
	if !a.Available() {
		return domain.ErrEmbeddingUnavailable
	}
	return a.embedder.Prepare(corpus)
}

// Calls returns the number of backend calls made so far.
func (a *Adapter) Calls() int { return a.calls }

// Failures returns the number of calls that produced no vector.
func (a *Adapter) Failures() int { return a.failures }

// Embed returns the vector for text, or false when the backend is missing,
// the budget is spent, the context is done or the call fails.
func (a *Adapter) Embed(ctx context.Context, text string) ([]float64, bool) {
	if !a.Available() {
		return nil, false
	}
	if a.opts.CallBudget > 0 && a.calls >= a.opts.CallBudget {
		if !a.exhausted {
			a.exhausted = true
			a.log.Warn("embedding disabled", zap.Error(domain.ErrBudgetExhausted), zap.Int("calls", a.calls))
		}
		return nil, false
	}
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			a.log.Warn("embedding wait aborted", zap.Error(err))
			return nil, false
		}
	} else if err := ctx.Err(); err != nil {
		return nil, false
	}

	a.calls++
	vec, err := a.embedder.Embed(Truncate(text, a.opts.MaxInputChars))
	if err == nil && len(vec) == 0 {
		err = errors.New("empty embedding")
	}
	if err != nil {
		a.failures++
		a.log.Warn("embedding failed", zap.String("embedder", a.embedder.Name()), zap.Error(err))
		return nil, false
	}
	return vec, true
}

// Truncate cuts text to at most max runes. A non-positive max leaves text
// unchanged.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}
