package chip8

import "testing"

type fakeKeys [NumKeys]bool

func (k *fakeKeys) KeyStates() [NumKeys]bool { return *k }

type countingRenderer struct {
	renders int
	last    Frame
}

func (r *countingRenderer) Render(f Frame) {
	r.renders++
	r.last = f
}

type countingSound struct {
	starts, stops int
}

func (s *countingSound) Start() { s.starts++ }
func (s *countingSound) Stop()  { s.stops++ }

// encodeOpcodes converts opcodes to big-endian program bytes.
func encodeOpcodes(opcodes ...uint16) []byte {
	out := make([]byte, len(opcodes)*2)
	for i, op := range opcodes {
		out[i*2] = byte(op >> 8)
		out[i*2+1] = byte(op)
	}
	return out
}

// newMachine builds a machine with the given opcodes loaded at ProgramStart.
func newMachine(t *testing.T, cfg Config, opcodes ...uint16) *Machine {
	t.Helper()
	m := New(cfg)
	if err := m.LoadProgram(encodeOpcodes(opcodes...)); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	return m
}

// step executes n cycles, failing the test on the first error.
func step(t *testing.T, m *Machine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := m.ExecuteCycle(); err != nil {
			t.Fatalf("cycle %d: %v", i+1, err)
		}
	}
}
