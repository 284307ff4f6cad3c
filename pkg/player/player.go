// Package player drives timed progression through the steps of a flow.
package player

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pkiviz/internal/logging"
)

// DefaultInterval is the pause between two autoplay steps.
const DefaultInterval = 2 * time.Second

// StepFunc receives each step index in order.
type StepFunc func(step int)

// StopFunc is called once when a sequence ends. completed is true when the
// sequence ran past its last step, false when it was cancelled.
type StopFunc func(completed bool)

// Player runs at most one autoplay sequence at a time.
type Player struct {
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	runID  uint64
}

// Option configures a Player.
type Option func(*Player)

// WithInterval overrides the step interval.
func WithInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		p.logger = logger
	}
}

// New creates an idle player.
func New(opts ...Option) *Player {
	p := &Player{
		interval: DefaultInterval,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured step interval.
func (p *Player) Interval() time.Duration {
	return p.interval
}

// Start cancels any running sequence and begins a new one over steps
// indices. Step 0 is emitted immediately from the sequence goroutine, then one
// step per interval. When the index reaches steps the sequence stops itself
// and onStop(true) is called; a cancelled sequence calls onStop(false).
//
// Start never blocks on a previous sequence, so it is safe to call while
// holding a lock that the callbacks also take. Callbacks must use StopAsync,
// not Stop, to end their own sequence.
func (p *Player) Start(ctx context.Context, steps int, onStep StepFunc, onStop StopFunc) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.runID++
	id := p.runID
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.logger.Debug("Autoplay started", "steps", steps, "interval", p.interval)
	go p.run(runCtx, id, done, steps, onStep, onStop)
}

func (p *Player) run(ctx context.Context, id uint64, done chan struct{}, steps int, onStep StepFunc, onStop StopFunc) {
	defer close(done)

	stop := func(completed bool) {
		p.finish(id)
		if completed {
			p.logger.Debug("Autoplay completed", "steps", steps)
		} else {
			p.logger.Debug("Autoplay cancelled")
		}
		if onStop != nil {
			onStop(completed)
		}
	}

	if steps <= 0 {
		stop(true)
		return
	}
	onStep(0)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			stop(false)
			return
		case <-ticker.C:
		}

		// A Stop racing with the tick wins.
		if ctx.Err() != nil {
			stop(false)
			return
		}

		step++
		if step >= steps {
			stop(true)
			return
		}
		onStep(step)
	}
}

// finish clears the active run if it is still id.
func (p *Player) finish(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.runID == id && p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.done = nil
	}
}

// Stop cancels the running sequence and waits for its goroutine to exit.
// It reports whether a sequence was running. Stop is idempotent.
func (p *Player) Stop() bool {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// StopAsync cancels the running sequence without waiting. It is safe to call
// from inside a step callback.
func (p *Player) StopAsync() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return false
	}
	p.cancel()
	p.cancel, p.done = nil, nil
	return true
}

// Running reports whether a sequence is active.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Close stops any running sequence.
func (p *Player) Close() {
	p.Stop()
}
