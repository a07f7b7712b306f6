package sound

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/pkg/chip8"
)

var (
	_ chip8.SoundDevice = (*Square)(nil)
	_ chip8.SoundDevice = (*Bell)(nil)
	_ chip8.SoundDevice = Silent{}
)

func samples(t *testing.T, s *Square, n int) []float32 {
	t.Helper()
	buf := make([]byte, n*4)
	got, err := s.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, n*4, got)

	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func TestSquareSilentUntilStarted(t *testing.T) {
	s := NewSquare(8, 2)
	for _, v := range samples(t, s, 8) {
		assert.Equal(t, float32(0), v)
	}
}

func TestSquareWave(t *testing.T) {
	s := NewSquare(8, 2)
	s.Start()
	assert.Equal(t, true, s.Playing())

	a := float32(defaultAmplitude)
	want := []float32{a, a, -a, -a, a, a, -a, -a}
	assert.Equal(t, want, samples(t, s, 8))

	s.Stop()
	assert.Equal(t, false, s.Playing())
	for _, v := range samples(t, s, 4) {
		assert.Equal(t, float32(0), v)
	}
}

func TestSquareReadPartialSample(t *testing.T) {
	s := NewSquare(8, 2)
	n, err := s.Read(make([]byte, 6))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf)
	b.Start()
	b.Stop()
	b.Start()
	assert.Equal(t, "\a\a", buf.String())
}
