package emulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newMachine assembles code and loads it into a fresh machine.
func newMachine(t *testing.T, code string, cfg chip8.Config) *chip8.Machine {
	t.Helper()
	program, _, err := asm.Assemble(code)
	assert.NoError(t, err)
	m := chip8.New(cfg)
	assert.NoError(t, m.LoadProgram(program))
	return m
}

const spin = `
loop: JP loop
`

func TestAdvanceFirstCallOnlyStartsClock(t *testing.T) {
	m := newMachine(t, spin, chip8.Config{})
	e := New(m, Options{})

	assert.NoError(t, e.Advance(t0))
	assert.Equal(t, uint64(0), m.Cycles())
}

func TestAdvanceWaitsForFullInterval(t *testing.T) {
	m := newMachine(t, spin, chip8.Config{})
	e := New(m, Options{CycleHz: 100})

	assert.NoError(t, e.Advance(t0))
	assert.NoError(t, e.Advance(t0.Add(9*time.Millisecond)))
	assert.Equal(t, uint64(0), m.Cycles())

	assert.NoError(t, e.Advance(t0.Add(10*time.Millisecond)))
	assert.Equal(t, uint64(1), m.Cycles())

	// The remainder carries over between calls.
	assert.NoError(t, e.Advance(t0.Add(25*time.Millisecond)))
	assert.Equal(t, uint64(2), m.Cycles())
	assert.NoError(t, e.Advance(t0.Add(30*time.Millisecond)))
	assert.Equal(t, uint64(3), m.Cycles())
}

func TestAdvanceDefaultRate(t *testing.T) {
	m := newMachine(t, spin, chip8.Config{})
	e := New(m, Options{MaxCatchUp: 10000})

	assert.NoError(t, e.Advance(t0))
	assert.NoError(t, e.Advance(t0.Add(time.Second)))
	assert.Equal(t, uint64(DefaultCycleHz), m.Cycles())
}

func TestAdvanceCapsCatchUp(t *testing.T) {
	m := newMachine(t, spin, chip8.Config{})
	e := New(m, Options{CycleHz: 1000, MaxCatchUp: 50})

	assert.NoError(t, e.Advance(t0))
	assert.NoError(t, e.Advance(t0.Add(time.Second)))
	assert.Equal(t, uint64(50), m.Cycles())

	// The dropped backlog is not replayed.
	assert.NoError(t, e.Advance(t0.Add(time.Second+500*time.Microsecond)))
	assert.Equal(t, uint64(50), m.Cycles())
	assert.NoError(t, e.Advance(t0.Add(time.Second+time.Millisecond)))
	assert.Equal(t, uint64(51), m.Cycles())
}

func TestAdvanceTicksTimersAt60Hz(t *testing.T) {
	m := newMachine(t, spin, chip8.Config{})
	m.Timers().SetDelay(100)
	e := New(m, Options{})

	assert.NoError(t, e.Advance(t0))
	assert.NoError(t, e.Advance(t0.Add(10*time.Millisecond)))
	assert.Equal(t, byte(100), m.Timers().Delay())

	assert.NoError(t, e.Advance(t0.Add(100*time.Millisecond)))
	assert.Equal(t, byte(94), m.Timers().Delay())

	assert.NoError(t, e.Advance(t0.Add(1100*time.Millisecond)))
	assert.Equal(t, byte(34), m.Timers().Delay())
}

func TestAdvanceTimersIndependentOfCycles(t *testing.T) {
	// A machine parked on LD V0, K executes nothing but its timers still run.
	m := newMachine(t, `
		LD V0, K
	`, chip8.Config{})
	m.Timers().SetDelay(10)
	e := New(m, Options{})

	assert.NoError(t, e.Advance(t0))
	assert.NoError(t, e.Advance(t0.Add(50*time.Millisecond)))
	assert.Equal(t, true, m.AwaitingKey())
	assert.Equal(t, byte(7), m.Timers().Delay())
}

func TestAdvanceStopsOnError(t *testing.T) {
	m := newMachine(t, `
		LD V0, 1
		.WORD $5001
	`, chip8.Config{})
	e := New(m, Options{CycleHz: 1000})

	assert.NoError(t, e.Advance(t0))
	err := e.Advance(t0.Add(10 * time.Millisecond))
	assert.Equal(t, true, errors.Is(err, chip8.ErrUnknownOpcode))
	assert.Equal(t, uint64(1), m.Cycles())
	assert.Equal(t, err, e.Err())

	again := e.Advance(t0.Add(20 * time.Millisecond))
	assert.Equal(t, err, again)
}

func TestPauseAndStep(t *testing.T) {
	m := newMachine(t, spin, chip8.Config{})
	e := New(m, Options{CycleHz: 100})

	assert.NoError(t, e.Advance(t0))
	e.SetPaused(true)
	assert.Equal(t, true, e.Paused())
	assert.NoError(t, e.Advance(t0.Add(time.Second)))
	assert.Equal(t, uint64(0), m.Cycles())

	assert.NoError(t, e.Step())
	assert.Equal(t, uint64(1), m.Cycles())

	// Resuming restarts the clock instead of replaying the pause.
	e.SetPaused(false)
	assert.NoError(t, e.Advance(t0.Add(2*time.Second)))
	assert.Equal(t, uint64(1), m.Cycles())
	assert.NoError(t, e.Advance(t0.Add(2*time.Second+10*time.Millisecond)))
	assert.Equal(t, uint64(2), m.Cycles())
}

func TestReset(t *testing.T) {
	bad := newMachine(t, `.WORD $FFFF`, chip8.Config{})
	e := New(bad, Options{})
	assert.NoError(t, e.Advance(t0))
	assert.Equal(t, true, e.Advance(t0.Add(time.Second)) != nil)

	good := newMachine(t, spin, chip8.Config{})
	e.Reset(good)
	assert.NoError(t, e.Err())
	assert.NoError(t, e.Advance(t0.Add(2*time.Second)))
	assert.NoError(t, e.Advance(t0.Add(2*time.Second+100*time.Millisecond)))
	assert.Equal(t, uint64(70), good.Cycles())
}

func TestRunReturnsMachineError(t *testing.T) {
	m := newMachine(t, `RET`, chip8.Config{})
	e := New(m, Options{CycleHz: 1000})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := e.Run(ctx)
	assert.Equal(t, true, errors.Is(err, chip8.ErrStackUnderflow))
}

func TestRunStopsOnCancel(t *testing.T) {
	m := newMachine(t, spin, chip8.Config{})
	e := New(m, Options{CycleHz: 1000})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := e.Run(ctx)
	assert.Equal(t, true, errors.Is(err, context.DeadlineExceeded))
	assert.NoError(t, e.Err())
}
