// Package poller drives a started pipeline run to a terminal state by
// polling the service's status endpoint with a bounded, backing-off loop.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prodscope/prodscope/internal/intel"
)

const (
	// DefaultBaseDelay is the delay scheduled right after a parsed response.
	DefaultBaseDelay = 5 * time.Second
	// DefaultStepDelay is added per scheduling round without a parsed response.
	DefaultStepDelay = 5 * time.Second
	// DefaultMaxDelay caps a single poll delay.
	DefaultMaxDelay = 60 * time.Second
	// DefaultBudget bounds the wall-clock duration of a whole session.
	DefaultBudget = 30 * time.Minute
)

// ErrTimeout is returned when a session exhausts its wall-clock budget.
// The check happens at the start of each attempt, before any request.
var ErrTimeout = errors.New("pipeline polling budget exceeded")

const defaultFailureMessage = "pipeline failed without an error message"

// PipelineFailedError carries the failure message the service reported.
type PipelineFailedError struct {
	Message string
}

func (e *PipelineFailedError) Error() string {
	return "pipeline failed: " + e.Message
}

// StatusFunc fetches the current state of a run.
type StatusFunc func(ctx context.Context, runID string) (*intel.Run, error)

// Session owns the polling lifecycle of a single run. Create one per run,
// call Run once, and Cancel (or cancel the context) to tear it down. A
// Session is safe to observe from other goroutines via Phase and Elapsed.
type Session struct {
	runID  string
	status StatusFunc

	onPhase func(int)

	base   time.Duration
	step   time.Duration
	max    time.Duration
	budget time.Duration

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	mu        sync.Mutex
	phase     int
	started   time.Time
	cancel    context.CancelFunc
	cancelled bool
}

// Option customizes a Session.
type Option func(*Session)

// WithOnPhase registers a callback invoked whenever the published phase
// index changes. It runs on the polling goroutine.
func WithOnPhase(fn func(phase int)) Option {
	return func(s *Session) { s.onPhase = fn }
}

// WithDelays overrides the backoff parameters.
func WithDelays(base, step, max time.Duration) Option {
	return func(s *Session) {
		s.base, s.step, s.max = base, step, max
	}
}

// WithBudget overrides the wall-clock budget.
func WithBudget(d time.Duration) Option {
	return func(s *Session) { s.budget = d }
}

// WithClock injects the time source and sleeper, letting tests drive the
// loop with a simulated clock.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(s *Session) {
		s.now = now
		s.sleep = sleep
	}
}

// New creates a session for a run that has already been started.
func New(runID string, status StatusFunc, opts ...Option) *Session {
	s := &Session{
		runID:  runID,
		status: status,
		base:   DefaultBaseDelay,
		step:   DefaultStepDelay,
		max:    DefaultMaxDelay,
		budget: DefaultBudget,
		now:    time.Now,
		sleep:  sleepContext,
		phase:  0,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls until the run reaches a terminal state, the budget runs out, or
// the context is cancelled. It returns exactly once: the completed payload,
// or a PipelineFailedError / ErrTimeout / transport error / ctx.Err().
//
// The delay before each subsequent attempt is min(base + n*step, max) where
// n counts scheduling rounds since the last parsed response and resets to
// zero after every parsed response, advanced or not.
func (s *Session) Run(ctx context.Context) (*intel.Run, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	if s.cancelled {
		// Cancel landed before Run; honor it without issuing a request.
		cancel()
	}
	s.started = s.now()
	start := s.started
	s.mu.Unlock()

	rounds := 0 // scheduling rounds since the last parsed response
	for {
		if s.now().Sub(start) > s.budget {
			return nil, ErrTimeout
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		run, err := s.status(ctx, s.runID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Transport and decode failures are terminal, never retried.
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			// Cancelled while the request was in flight; discard the result.
			return nil, err
		}

		rounds = 0
		s.publish(run)

		switch run.Status {
		case intel.StatusCompleted:
			return run, nil
		case intel.StatusFailed:
			msg := run.ErrorMessage
			if msg == "" {
				msg = defaultFailureMessage
			}
			return nil, &PipelineFailedError{Message: msg}
		}

		delay := s.base + time.Duration(rounds)*s.step
		if delay > s.max {
			delay = s.max
		}
		rounds++

		if err := s.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// Cancel tears the session down. No further status requests are issued and
// the pending Run call returns ctx.Err() without publishing anything more.
// Cancellation latches: a Cancel that lands before Run starts makes Run
// return immediately without polling at all.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Phase returns the last published 0-indexed phase.
func (s *Session) Phase() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Elapsed returns the wall-clock time since polling began.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0
	}
	return s.now().Sub(s.started)
}

// publish derives the phase index from a response. Structured progress wins;
// a recognized current_stage is the fallback; anything else leaves the
// phase untouched.
func (s *Session) publish(run *intel.Run) {
	s.mu.Lock()
	next := s.phase
	if run.Metadata != nil && run.Metadata.CompletedStages != nil {
		n := len(run.Metadata.CompletedStages)
		if n > intel.TotalPhases-1 {
			n = intel.TotalPhases - 1
		}
		next = n
	} else if idx, ok := intel.PhaseIndex(run.CurrentStage); ok {
		next = idx
	}
	changed := next != s.phase
	s.phase = next
	s.mu.Unlock()

	if changed && s.onPhase != nil {
		s.onPhase(next)
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
