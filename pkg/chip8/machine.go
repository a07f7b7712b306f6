package chip8

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// NumKeys is the size of the hexadecimal keypad.
const NumKeys = 16

// Renderer receives the display after every clear and every draw.
type Renderer interface {
	Render(frame Frame)
}

// KeySource exposes the current keypad state. The returned array is a
// snapshot; implementations may be updated from other goroutines.
type KeySource interface {
	KeyStates() [NumKeys]bool
}

// Config wires a Machine to its collaborators. Nil fields get no-op defaults.
type Config struct {
	Renderer  Renderer
	Sound     SoundDevice
	Keys      KeySource
	Observers []Observer

	// Rand returns the random byte used by RND. Defaults to math/rand/v2.
	Rand func() byte

	// Logger receives a debug record per executed instruction and an error
	// record when the machine halts.
	Logger *slog.Logger
}

// State is a copy of the machine's architectural state.
type State struct {
	V           [NumRegisters]byte
	I           uint16
	PC          uint16
	Delay       byte
	Sound       byte
	Memory      [MemorySize]byte
	Stack       []uint16
	AwaitingKey bool
	Cycles      uint64
	Halted      bool
}

// Machine is a single CHIP-8 interpreter instance.
type Machine struct {
	mem     *Memory
	regs    *Registers
	display *FrameBuffer
	timers  *Timers

	renderer  Renderer
	keys      KeySource
	rand      func() byte
	logger    *slog.Logger
	observers []Observer

	awaitingKey bool
	keyRegister uint8

	cycles uint64
	halted bool
	err    error
}

// New builds a machine with the font loaded, registers zeroed and PC at
// ProgramStart.
func New(cfg Config) *Machine {
	m := &Machine{
		display:   NewFrameBuffer(),
		timers:    NewTimers(cfg.Sound),
		renderer:  cfg.Renderer,
		keys:      cfg.Keys,
		rand:      cfg.Rand,
		logger:    cfg.Logger,
		observers: append([]Observer(nil), cfg.Observers...),
	}
	if m.renderer == nil {
		m.renderer = nopRenderer{}
	}
	if m.keys == nil {
		m.keys = noKeys{}
	}
	if m.rand == nil {
		m.rand = func() byte { return byte(rand.UintN(256)) }
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}

	var notify func(Event)
	if len(m.observers) > 0 {
		notify = m.emit
	}
	m.mem = NewMemory(notify)
	m.regs = NewRegisters(notify)
	return m
}

func (m *Machine) emit(ev Event) {
	for _, o := range m.observers {
		o(ev)
	}
}

// LoadProgram copies program into memory at ProgramStart.
func (m *Machine) LoadProgram(program []byte) error {
	return m.mem.Load(ProgramStart, program)
}

func (m *Machine) Memory() *Memory {
	return m.mem
}

func (m *Machine) Registers() *Registers {
	return m.regs
}

func (m *Machine) Timers() *Timers {
	return m.timers
}

// Frame returns a copy of the display.
func (m *Machine) Frame() Frame {
	return m.display.Frame()
}

// TickTimers advances the delay and sound timers by one 60 Hz period.
func (m *Machine) TickTimers() {
	m.timers.Tick()
}

// AwaitingKey reports whether the machine is parked on LD Vx, K.
func (m *Machine) AwaitingKey() bool {
	return m.awaitingKey
}

func (m *Machine) Halted() bool {
	return m.halted
}

// Err returns the error that halted the machine, if any.
func (m *Machine) Err() error {
	return m.err
}

func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// State returns a snapshot that shares no memory with the machine.
func (m *Machine) State() State {
	s := State{
		I:           m.regs.Index(),
		PC:          m.regs.PC(),
		Delay:       m.timers.Delay(),
		Sound:       m.timers.Sound(),
		Memory:      m.mem.Bytes(),
		Stack:       m.mem.Stack(),
		AwaitingKey: m.awaitingKey,
		Cycles:      m.cycles,
		Halted:      m.halted,
	}
	for i := range s.V {
		s.V[i] = m.regs.V(uint8(i))
	}
	return s
}

// ExecuteCycle runs one fetch-decode-execute step. While the machine is
// awaiting a key it polls the keypad instead of fetching. Any error is fatal:
// the machine halts and every later call returns the same error.
func (m *Machine) ExecuteCycle() error {
	if m.halted {
		return m.err
	}

	if m.awaitingKey {
		if key, ok := m.pressedKey(); ok {
			m.regs.SetV(m.keyRegister, int(key))
			m.awaitingKey = false
		}
		return nil
	}

	pc := m.regs.PC()
	hi, err := m.mem.Read(int(pc))
	if err != nil {
		return m.fail(pc, 0, err)
	}
	lo, err := m.mem.Read(int(pc) + 1)
	if err != nil {
		return m.fail(pc, 0, err)
	}
	opcode := uint16(hi)<<8 | uint16(lo)
	m.regs.SetPC(pc + 2)

	in, err := Decode(opcode)
	if err != nil {
		return m.fail(pc, opcode, err)
	}

	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("exec",
			"pc", fmt.Sprintf("0x%03X", pc),
			"opcode", fmt.Sprintf("0x%04X", opcode),
			"instr", in.String(),
		)
	}

	if err := m.execute(in); err != nil {
		return m.fail(pc, opcode, err)
	}
	m.cycles++
	return nil
}

func (m *Machine) fail(pc, opcode uint16, err error) error {
	m.halted = true
	m.err = &CycleError{PC: pc, Opcode: opcode, Err: err}
	m.logger.Error("machine halted",
		"pc", fmt.Sprintf("0x%03X", pc),
		"opcode", fmt.Sprintf("0x%04X", opcode),
		"err", err,
	)
	return m.err
}

func (m *Machine) execute(in Instruction) error {
	r := m.regs

	switch in.Op {
	case OpSYS:
		// Native machine-code calls are ignored.

	case OpCLS:
		m.display.Clear()
		m.renderer.Render(m.display.Frame())

	case OpRET:
		addr, err := m.mem.Pop()
		if err != nil {
			return err
		}
		r.SetPC(addr)

	case OpJP:
		return m.jump(in.NNN)

	case OpCALL:
		if in.NNN&1 != 0 {
			return fmt.Errorf("CALL $%03X: %w", in.NNN, ErrMisalignedJump)
		}
		if err := m.mem.Push(r.PC()); err != nil {
			return err
		}
		r.SetPC(in.NNN)

	case OpSEImm:
		if r.V(in.X) == in.NN {
			m.skip()
		}

	case OpSNEImm:
		if r.V(in.X) != in.NN {
			m.skip()
		}

	case OpSEReg:
		if r.V(in.X) == r.V(in.Y) {
			m.skip()
		}

	case OpSNEReg:
		if r.V(in.X) != r.V(in.Y) {
			m.skip()
		}

	case OpLDImm:
		r.SetV(in.X, int(in.NN))

	case OpADDImm:
		r.SetV(in.X, int(r.V(in.X))+int(in.NN))

	case OpLDReg:
		r.SetV(in.X, int(r.V(in.Y)))

	case OpOR:
		r.SetV(in.X, int(r.V(in.X)|r.V(in.Y)))

	case OpAND:
		r.SetV(in.X, int(r.V(in.X)&r.V(in.Y)))

	case OpXOR:
		r.SetV(in.X, int(r.V(in.X)^r.V(in.Y)))

	case OpADDReg:
		sum := int(r.V(in.X)) + int(r.V(in.Y))
		r.SetFlag(sum > 0xFF)
		r.SetV(in.X, sum)

	case OpSUB:
		vx, vy := r.V(in.X), r.V(in.Y)
		r.SetFlag(vx >= vy)
		r.SetV(in.X, int(vx)-int(vy))

	case OpSUBN:
		vx, vy := r.V(in.X), r.V(in.Y)
		r.SetFlag(vy >= vx)
		r.SetV(in.X, int(vy)-int(vx))

	case OpSHR:
		// Copy-then-shift: VY is moved into VX before shifting.
		r.SetV(in.X, int(r.V(in.Y)))
		v := r.V(in.X)
		r.SetFlag(v&0x01 != 0)
		r.SetV(in.X, int(v>>1))

	case OpSHL:
		r.SetV(in.X, int(r.V(in.Y)))
		v := r.V(in.X)
		r.SetFlag(v&0x80 != 0)
		r.SetV(in.X, int(v)<<1)

	case OpLDI:
		r.SetIndex(in.NNN)

	case OpJPV0:
		return m.jump(in.NNN + uint16(r.V(0)))

	case OpRND:
		r.SetV(in.X, int(m.rand()&in.NN))

	case OpDRW:
		return m.draw(in)

	case OpSKP:
		if m.keyDown(r.V(in.X)) {
			m.skip()
		}

	case OpSKNP:
		if !m.keyDown(r.V(in.X)) {
			m.skip()
		}

	case OpLDVxDT:
		r.SetV(in.X, int(m.timers.Delay()))

	case OpLDVxK:
		if key, ok := m.pressedKey(); ok {
			r.SetV(in.X, int(key))
			return nil
		}
		m.awaitingKey = true
		m.keyRegister = in.X

	case OpLDDTVx:
		m.timers.SetDelay(r.V(in.X))

	case OpLDSTVx:
		m.timers.SetSound(r.V(in.X))

	case OpADDI:
		r.SetIndex(r.Index() + uint16(r.V(in.X)))

	case OpLDF:
		r.SetIndex(FontAddress + uint16(r.V(in.X)&0x0F)*FontGlyphSize)

	case OpLDB:
		v := r.V(in.X)
		base := int(r.Index())
		for i, digit := range [3]byte{v / 100, v / 10 % 10, v % 10} {
			if err := m.mem.Write(base+i, digit); err != nil {
				return err
			}
		}

	case OpLDIVx:
		base := int(r.Index())
		for i := 0; i <= int(in.X); i++ {
			if err := m.mem.Write(base+i, r.V(uint8(i))); err != nil {
				return err
			}
		}
		r.SetIndex(r.Index() + uint16(in.X) + 1)

	case OpLDVxI:
		base := int(r.Index())
		for i := 0; i <= int(in.X); i++ {
			b, err := m.mem.Read(base + i)
			if err != nil {
				return err
			}
			r.SetV(uint8(i), int(b))
		}
		r.SetIndex(r.Index() + uint16(in.X) + 1)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownOpcode, in.Op)
	}

	return nil
}

func (m *Machine) draw(in Instruction) error {
	var buf [15]byte
	sprite := buf[:in.N]
	base := int(m.regs.Index())
	for i := range sprite {
		b, err := m.mem.Read(base + i)
		if err != nil {
			return err
		}
		sprite[i] = b
	}

	collision := m.display.Draw(int(m.regs.V(in.X)), int(m.regs.V(in.Y)), sprite)
	m.regs.SetFlag(collision)
	m.renderer.Render(m.display.Frame())
	return nil
}

// jump sets PC to target. PC stays even, so an odd target is fatal.
func (m *Machine) jump(target uint16) error {
	if target&1 != 0 {
		return fmt.Errorf("jump to $%03X: %w", target, ErrMisalignedJump)
	}
	m.regs.SetPC(target)
	return nil
}

func (m *Machine) skip() {
	m.regs.SetPC(m.regs.PC() + 2)
}

func (m *Machine) keyDown(key byte) bool {
	if key >= NumKeys {
		return false
	}
	return m.keys.KeyStates()[key]
}

// pressedKey returns the lowest numbered key that is currently down.
func (m *Machine) pressedKey() (uint8, bool) {
	for k, down := range m.keys.KeyStates() {
		if down {
			return uint8(k), true
		}
	}
	return 0, false
}

type nopRenderer struct{}

func (nopRenderer) Render(Frame) {}

type noKeys struct{}

func (noKeys) KeyStates() [NumKeys]bool { return [NumKeys]bool{} }
