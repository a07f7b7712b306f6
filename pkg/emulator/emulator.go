// Package emulator drives a chip8.Machine against wall-clock time. It runs
// instructions at a fixed rate and ticks the timers at 60 Hz, both from the
// goroutine that calls Advance or Run.
package emulator

import (
	"context"
	"log/slog"
	"time"

	"gochip8/pkg/chip8"
)

const (
	DefaultCycleHz = 700

	// maxTimerCatchUp bounds the timer ticks applied by one Advance, so a
	// stalled host does not drain every timer at once.
	maxTimerCatchUp = chip8.TimerHz
)

type Options struct {
	// CycleHz is the instruction rate. Zero selects DefaultCycleHz.
	CycleHz int

	// MaxCatchUp caps the cycles run by a single Advance. Backlog beyond it
	// is dropped. Zero selects a tenth of a second worth of cycles.
	MaxCatchUp int

	Logger *slog.Logger
}

type Emulator struct {
	machine *chip8.Machine
	logger  *slog.Logger

	cycleInterval time.Duration
	timerInterval time.Duration
	maxCatchUp    int

	started   bool
	paused    bool
	lastCycle time.Time
	lastTimer time.Time
	err       error
}

func New(m *chip8.Machine, opts Options) *Emulator {
	hz := opts.CycleHz
	if hz <= 0 {
		hz = DefaultCycleHz
	}
	catchUp := opts.MaxCatchUp
	if catchUp <= 0 {
		catchUp = max(hz/10, 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Emulator{
		machine:       m,
		logger:        logger,
		cycleInterval: time.Second / time.Duration(hz),
		timerInterval: time.Second / chip8.TimerHz,
		maxCatchUp:    catchUp,
	}
}

func (e *Emulator) Machine() *chip8.Machine {
	return e.machine
}

// Reset swaps in a new machine, for example after loading another program,
// and restarts both clocks.
func (e *Emulator) Reset(m *chip8.Machine) {
	e.machine = m
	e.started = false
	e.err = nil
}

// Err returns the error that stopped the emulator, if any.
func (e *Emulator) Err() error {
	return e.err
}

// Paused reports whether Advance is suspended.
func (e *Emulator) Paused() bool {
	return e.paused
}

// SetPaused suspends or resumes execution. Time spent paused is not caught up.
func (e *Emulator) SetPaused(paused bool) {
	e.paused = paused
	e.started = false
}

// Step executes exactly one cycle regardless of the clock.
func (e *Emulator) Step() error {
	if e.err != nil {
		return e.err
	}
	if err := e.machine.ExecuteCycle(); err != nil {
		return e.stop(err)
	}
	return nil
}

// Advance brings the machine up to now: it runs one cycle per whole cycle
// interval elapsed since the last run and one timer tick per elapsed 1/60 s.
// The first call only starts the clocks.
func (e *Emulator) Advance(now time.Time) error {
	if e.err != nil {
		return e.err
	}
	if e.paused {
		return nil
	}
	if !e.started {
		e.started = true
		e.lastCycle = now
		e.lastTimer = now
		return nil
	}

	cycles := int(now.Sub(e.lastCycle) / e.cycleInterval)
	if cycles > e.maxCatchUp {
		cycles = e.maxCatchUp
		e.lastCycle = now
	} else if cycles > 0 {
		e.lastCycle = e.lastCycle.Add(time.Duration(cycles) * e.cycleInterval)
	}
	for i := 0; i < cycles; i++ {
		if err := e.machine.ExecuteCycle(); err != nil {
			return e.stop(err)
		}
	}

	ticks := int(now.Sub(e.lastTimer) / e.timerInterval)
	if ticks > maxTimerCatchUp {
		ticks = maxTimerCatchUp
		e.lastTimer = now
	} else if ticks > 0 {
		e.lastTimer = e.lastTimer.Add(time.Duration(ticks) * e.timerInterval)
	}
	for i := 0; i < ticks; i++ {
		e.machine.TickTimers()
	}

	return nil
}

// Run calls Advance on a ticker until ctx is cancelled or the machine fails.
func (e *Emulator) Run(ctx context.Context) error {
	period := min(e.cycleInterval, e.timerInterval)
	period = max(period, time.Millisecond)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	if err := e.Advance(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := e.Advance(now); err != nil {
				return err
			}
		}
	}
}

func (e *Emulator) stop(err error) error {
	e.err = err
	e.logger.Error("emulator stopped",
		"err", err,
		"cycles", e.machine.Cycles(),
	)
	return err
}
