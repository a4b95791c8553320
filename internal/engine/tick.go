// Package engine provides the fixed-step simulation loop and the
// Simulation that owns agents, props and events.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// DefaultTickHz is the default number of ticks per simulated second.
const DefaultTickHz = 30

// DefaultSummaryEvery is the default number of ticks between summaries.
const DefaultSummaryEvery = 300

// Engine drives the simulation forward in fixed steps. Every tick advances
// simulated time by DT seconds regardless of wall-clock jitter; the speed
// multiplier only changes how long the loop sleeps between ticks.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Interval time.Duration // Wall-clock time per tick at speed 1
	MaxTicks uint64        // Stop after this many ticks; 0 runs until stopped

	SummaryEvery uint64

	// Callbacks, populated during setup.
	OnTick    func(tick uint64, dt float64) // Every tick
	OnSummary func(tick uint64)             // Every SummaryEvery ticks
	// Done ends the loop when it reports true after a tick.
	Done func() bool

	running atomic.Bool
	speed   atomic.Uint64 // float64 bits; 1.0 = real-time, 0 = paused
}

// NewEngine creates an engine running hz ticks per simulated second.
func NewEngine(hz int) *Engine {
	if hz <= 0 {
		hz = DefaultTickHz
	}
	e := &Engine{
		Interval:     time.Second / time.Duration(hz),
		SummaryEvery: DefaultSummaryEvery,
	}
	e.SetSpeed(1.0)
	return e
}

// Speed returns the wall-clock multiplier. Safe to call while Run loops.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the wall-clock multiplier; 0 pauses the loop. Safe to
// call while Run loops.
func (e *Engine) SetSpeed(v float64) {
	e.speed.Store(math.Float64bits(v))
}

// DT returns the simulated seconds per tick.
func (e *Engine) DT() float64 {
	return e.Interval.Seconds()
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the simulation loop. It blocks until ctx is cancelled, Stop is
// called, MaxTicks is reached or Done reports true.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed(), "dt", e.DT())

	for e.running.Load() {
		if ctx.Err() != nil {
			break
		}
		speed := e.Speed()
		if speed <= 0 {
			// Paused.
			if !sleepCtx(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		if !e.Step() {
			break
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target && !sleepCtx(ctx, target-elapsed) {
			break
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Step advances the simulation by one tick. It returns false once the loop
// should end.
func (e *Engine) Step() bool {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick, e.DT())
	}
	if e.SummaryEvery > 0 && e.Tick%e.SummaryEvery == 0 && e.OnSummary != nil {
		e.OnSummary(e.Tick)
	}

	if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
		return false
	}
	if e.Done != nil && e.Done() {
		return false
	}
	return true
}

// SimTime returns the simulated elapsed time after tick ticks.
func (e *Engine) SimTime(tick uint64) time.Duration {
	return time.Duration(tick) * e.Interval
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
