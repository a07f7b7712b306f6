package chip8

const (
	NumRegisters = 16
	FlagRegister = 0xF
)

// Registers holds V0-VF, the index register I and the program counter.
type Registers struct {
	v      [NumRegisters]byte
	index  uint16
	pc     uint16
	notify func(Event)
}

// NewRegisters returns a zeroed register file with PC at ProgramStart.
func NewRegisters(notify func(Event)) *Registers {
	return &Registers{pc: ProgramStart, notify: notify}
}

func (r *Registers) V(i uint8) byte {
	return r.v[i&0x0F]
}

// SetV stores the low 8 bits of value in Vi, so out of range results wrap.
func (r *Registers) SetV(i uint8, value int) {
	i &= 0x0F
	prev := r.v[i]
	r.v[i] = byte(value)
	if prev != r.v[i] {
		r.emit(Event{Kind: RegisterChanged, Register: i, Value: uint16(r.v[i])})
	}
}

// SetFlag writes 1 or 0 to VF.
func (r *Registers) SetFlag(set bool) {
	if set {
		r.SetV(FlagRegister, 1)
		return
	}
	r.SetV(FlagRegister, 0)
}

func (r *Registers) Index() uint16 {
	return r.index
}

// SetIndex stores I without narrowing it to 12 bits.
func (r *Registers) SetIndex(value uint16) {
	prev := r.index
	r.index = value
	if prev != value {
		r.emit(Event{Kind: IndexChanged, Value: value})
	}
}

func (r *Registers) PC() uint16 {
	return r.pc
}

func (r *Registers) SetPC(value uint16) {
	prev := r.pc
	r.pc = value
	if prev != value {
		r.emit(Event{Kind: PCChanged, Value: value})
	}
}

func (r *Registers) emit(ev Event) {
	if r.notify != nil {
		r.notify(ev)
	}
}
