package chip8

import (
	"fmt"

	"golang.org/x/exp/slices"
)

const (
	MemorySize    = 0x1000
	ProgramStart  = 0x200
	FontAddress   = 0x050
	FontGlyphSize = 5
	StackDepth    = 16
)

// fontSet holds the 4x5 hexadecimal digit sprites 0-F.
var fontSet = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the 4 KiB address space plus the call stack.
type Memory struct {
	bytes  [MemorySize]byte
	stack  [StackDepth]uint16
	sp     int
	notify func(Event)
}

// NewMemory returns memory with the font preloaded at FontAddress. notify may
// be nil.
func NewMemory(notify func(Event)) *Memory {
	m := &Memory{notify: notify}
	copy(m.bytes[FontAddress:], fontSet[:])
	return m
}

// Read returns the byte at addr.
func (m *Memory) Read(addr int) (byte, error) {
	if addr < 0 || addr >= MemorySize {
		return 0, fmt.Errorf("%w: read 0x%04X", ErrAddressOutOfBounds, addr)
	}
	return m.bytes[addr], nil
}

// Write stores value at addr, notifying only when the byte changes.
func (m *Memory) Write(addr int, value byte) error {
	if addr < 0 || addr >= MemorySize {
		return fmt.Errorf("%w: write 0x%04X", ErrAddressOutOfBounds, addr)
	}
	m.set(addr, value)
	return nil
}

func (m *Memory) set(addr int, value byte) {
	prev := m.bytes[addr]
	m.bytes[addr] = value
	if prev != value && m.notify != nil {
		m.notify(Event{Kind: MemoryChanged, Address: uint16(addr), Value: uint16(value)})
	}
}

// Load copies program verbatim starting at origin. Nothing is written when the
// program does not fit.
func (m *Memory) Load(origin int, program []byte) error {
	if origin < 0 || origin+len(program) > MemorySize {
		return fmt.Errorf("%w: %d bytes at 0x%03X exceed %d bytes of memory",
			ErrAddressOutOfBounds, len(program), origin, MemorySize)
	}
	for i, b := range program {
		m.set(origin+i, b)
	}
	return nil
}

// Push appends a return address to the call stack.
func (m *Memory) Push(addr uint16) error {
	if m.sp >= StackDepth {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, StackDepth)
	}
	m.stack[m.sp] = addr
	m.sp++
	return nil
}

// Pop removes and returns the most recently pushed address.
func (m *Memory) Pop() (uint16, error) {
	if m.sp == 0 {
		return 0, ErrStackUnderflow
	}
	m.sp--
	return m.stack[m.sp], nil
}

// Depth reports the number of addresses on the stack.
func (m *Memory) Depth() int {
	return m.sp
}

// Bytes returns a copy of the whole address space.
func (m *Memory) Bytes() [MemorySize]byte {
	return m.bytes
}

// Stack returns a copy of the live stack entries, oldest first.
func (m *Memory) Stack() []uint16 {
	return slices.Clone(m.stack[:m.sp])
}
