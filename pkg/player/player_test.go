package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	steps     []int
	stops     []bool
	stoppedCh chan struct{}
}

func newRecorder() *recorder {
	return &recorder{stoppedCh: make(chan struct{}, 4)}
}

func (r *recorder) onStep(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, i)
}

func (r *recorder) onStop(completed bool) {
	r.mu.Lock()
	r.stops = append(r.stops, completed)
	r.mu.Unlock()
	r.stoppedCh <- struct{}{}
}

func (r *recorder) snapshot() ([]int, []bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.steps...), append([]bool(nil), r.stops...)
}

func waitStop(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.stoppedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("sequence did not stop")
	}
}

func TestPlayer_RunsAllStepsInOrder(t *testing.T) {
	p := New(WithInterval(10 * time.Millisecond))
	r := newRecorder()

	p.Start(context.Background(), 4, r.onStep, r.onStop)
	waitStop(t, r)

	steps, stops := r.snapshot()
	assert.Equal(t, []int{0, 1, 2, 3}, steps)
	assert.Equal(t, []bool{true}, stops)
	assert.False(t, p.Running())
	assert.False(t, p.Stop(), "nothing left to stop")
}

func TestPlayer_StepZeroIsImmediate(t *testing.T) {
	p := New(WithInterval(time.Hour))
	defer p.Close()
	r := newRecorder()

	p.Start(context.Background(), 3, r.onStep, r.onStop)
	assert.Eventually(t, func() bool {
		steps, _ := r.snapshot()
		return len(steps) == 1
	}, time.Second, time.Millisecond)
}

func TestPlayer_Stop(t *testing.T) {
	p := New(WithInterval(time.Hour))
	r := newRecorder()

	p.Start(context.Background(), 5, r.onStep, r.onStop)
	require.True(t, p.Running())
	assert.True(t, p.Stop())
	waitStop(t, r)

	_, stops := r.snapshot()
	assert.Equal(t, []bool{false}, stops)
	assert.False(t, p.Stop(), "Stop is idempotent")
}

func TestPlayer_RestartCancelsPrevious(t *testing.T) {
	p := New(WithInterval(5 * time.Millisecond))
	first, second := newRecorder(), newRecorder()

	p.Start(context.Background(), 1000, first.onStep, first.onStop)
	p.Start(context.Background(), 2, second.onStep, second.onStop)

	waitStop(t, first)
	waitStop(t, second)

	_, stops := first.snapshot()
	assert.Equal(t, []bool{false}, stops)
	steps, stops := second.snapshot()
	assert.Equal(t, []int{0, 1}, steps)
	assert.Equal(t, []bool{true}, stops)
}

func TestPlayer_ContextCancel(t *testing.T) {
	p := New(WithInterval(time.Hour))
	r := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx, 3, r.onStep, r.onStop)
	cancel()
	waitStop(t, r)
	assert.False(t, p.Running())
}

func TestPlayer_StopAsyncFromCallback(t *testing.T) {
	p := New(WithInterval(5 * time.Millisecond))
	r := newRecorder()

	p.Start(context.Background(), 10, func(i int) {
		r.onStep(i)
		if i == 2 {
			p.StopAsync()
		}
	}, r.onStop)
	waitStop(t, r)

	steps, stops := r.snapshot()
	assert.Equal(t, []int{0, 1, 2}, steps)
	assert.Equal(t, []bool{false}, stops)
}

func TestPlayer_ZeroSteps(t *testing.T) {
	p := New()
	r := newRecorder()
	p.Start(context.Background(), 0, r.onStep, r.onStop)
	waitStop(t, r)
	steps, stops := r.snapshot()
	assert.Empty(t, steps)
	assert.Equal(t, []bool{true}, stops)
}

func TestPlayer_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, New().Interval())
	assert.Equal(t, DefaultInterval, New(WithInterval(0)).Interval())
}
