// Package watch implements the polling loop that detects new discussion
// activity on a pull request and exits on the first detection or after a
// period of inactivity.
package watch

import (
	"context"
	"time"

	"github.com/gmorris/prwatch/internal/domain"
)

// Source produces one filtered snapshot of the discussion. In production
// this is the fetch → normalize → filter pipeline.
type Source interface {
	Snapshot(ctx context.Context) ([]domain.Comment, error)
}

// Logger provides structured logging for loop progress. A nil logger is
// silent.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// TerminalState names the state the loop stopped in. Both are successful
// terminations; fetch failures surface as errors instead.
type TerminalState string

const (
	// StateReporting means new activity was detected and reported.
	StateReporting TerminalState = "reporting"

	// StateIdleTimeout means no new activity appeared within the
	// configured idle window.
	StateIdleTimeout TerminalState = "idle-timeout"
)

// Config holds the loop's timing parameters.
type Config struct {
	// Interval is the sleep between polls.
	Interval time.Duration

	// IdleTimeout is how long the loop polls without new activity before
	// giving up.
	IdleTimeout time.Duration

	// Grace is the short confirmation pause after a detection, allowing
	// near-simultaneous posts from the same source to land together
	// before the final re-fetch.
	Grace time.Duration
}

// DefaultConfig returns the production timing: poll every 30s, give up
// after 600s idle, confirm detections after a 5s grace pause.
func DefaultConfig() Config {
	return Config{
		Interval:    30 * time.Second,
		IdleTimeout: 600 * time.Second,
		Grace:       5 * time.Second,
	}
}

// Outcome is the terminal result of one watch invocation.
type Outcome struct {
	State TerminalState `json:"state"`

	// New holds the newly-detected entities when State is StateReporting,
	// in snapshot order.
	New []domain.Comment `json:"newComments,omitempty"`

	// Polls counts completed polling passes (the priming pass excluded).
	Polls int `json:"polls"`

	// Tracked is the total number of entity ids seen over the invocation.
	Tracked int `json:"tracked"`
}

// Deps captures the watcher's collaborators.
type Deps struct {
	Source Source
	Logger Logger

	// OnPrimed, if set, receives the entity count of the priming pass
	// before polling starts.
	OnPrimed func(count int)

	// Sleep is injectable for tests; nil selects a context-aware
	// time.After sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Watcher runs the watch loop. Its seen-set, idle counter, and poll
// counter live for exactly one Run invocation and are never shared.
type Watcher struct {
	cfg  Config
	deps Deps
}

// New constructs a Watcher. Zero or negative timing values are replaced
// with the defaults.
func New(cfg Config, deps Deps) *Watcher {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.Grace <= 0 {
		cfg.Grace = def.Grace
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	return &Watcher{cfg: cfg, deps: deps}
}

// Run executes the loop to a terminal state: Priming → Polling →
// GraceCheck → Reporting, or Priming → Polling → IdleTimeout.
//
// Any snapshot failure propagates immediately and aborts the invocation;
// there is no resumption after a transient error. The loop never restarts
// itself — an orchestrator that wants continuous monitoring reacts to the
// Outcome and invokes Run again.
func (w *Watcher) Run(ctx context.Context) (Outcome, error) {
	// Priming: record everything currently visible as already seen.
	primed, err := w.deps.Source.Snapshot(ctx)
	if err != nil {
		return Outcome{}, err
	}
	seen := make(map[int64]bool, len(primed))
	for _, c := range primed {
		seen[c.ID] = true
	}
	if w.deps.OnPrimed != nil {
		w.deps.OnPrimed(len(primed))
	}
	w.logInfo(ctx, "watch primed", map[string]interface{}{
		"tracked":  len(primed),
		"interval": w.cfg.Interval.String(),
	})

	// Idle time accumulates in whole intervals rather than wall-clock
	// deltas so the loop is deterministic under an injected sleep.
	var idle time.Duration
	polls := 0

	for {
		if err := w.deps.Sleep(ctx, w.cfg.Interval); err != nil {
			return Outcome{}, err
		}
		polls++

		snapshot, err := w.deps.Source.Snapshot(ctx)
		if err != nil {
			return Outcome{}, err
		}

		fresh := unseen(snapshot, seen)
		if len(fresh) > 0 {
			return w.graceCheck(ctx, seen, fresh, polls)
		}

		idle += w.cfg.Interval
		if idle >= w.cfg.IdleTimeout {
			w.logInfo(ctx, "watch idle timeout", map[string]interface{}{
				"polls":   polls,
				"tracked": len(seen),
			})
			return Outcome{State: StateIdleTimeout, Polls: polls, Tracked: len(seen)}, nil
		}
	}
}

// graceCheck pauses briefly, re-fetches once, and merges any additional
// unseen entities into the report before terminating in Reporting.
func (w *Watcher) graceCheck(ctx context.Context, seen map[int64]bool, fresh []domain.Comment, polls int) (Outcome, error) {
	w.logInfo(ctx, "new activity detected, confirming", map[string]interface{}{
		"candidates": len(fresh),
		"grace":      w.cfg.Grace.String(),
	})

	if err := w.deps.Sleep(ctx, w.cfg.Grace); err != nil {
		return Outcome{}, err
	}

	confirm, err := w.deps.Source.Snapshot(ctx)
	if err != nil {
		return Outcome{}, err
	}

	report := fresh
	for _, c := range fresh {
		seen[c.ID] = true
	}
	for _, c := range unseen(confirm, seen) {
		report = append(report, c)
		seen[c.ID] = true
	}

	w.logInfo(ctx, "watch reporting", map[string]interface{}{
		"new":     len(report),
		"polls":   polls,
		"tracked": len(seen),
	})
	return Outcome{State: StateReporting, New: report, Polls: polls, Tracked: len(seen)}, nil
}

// unseen returns the entities whose ids are not in the seen set, in
// snapshot order.
func unseen(snapshot []domain.Comment, seen map[int64]bool) []domain.Comment {
	var fresh []domain.Comment
	for _, c := range snapshot {
		if !seen[c.ID] {
			fresh = append(fresh, c)
		}
	}
	return fresh
}

func (w *Watcher) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if w.deps.Logger != nil {
		w.deps.Logger.LogInfo(ctx, message, fields)
	}
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
