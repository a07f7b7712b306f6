// Package sound provides chip8.SoundDevice implementations: a square-wave
// beeper on the system audio device, a terminal bell, and silence.
package sound

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

const (
	DefaultSampleRate = 44100
	DefaultFrequency  = 440
	defaultAmplitude  = 0.15
)

// Square is an endless mono square wave encoded as little-endian float32
// samples. While gated off it produces silence, so a player can keep reading
// from it without underruns.
type Square struct {
	on        atomic.Bool
	mu        sync.Mutex
	step      float64
	phase     float64
	amplitude float32
}

func NewSquare(sampleRate, frequency int) *Square {
	return &Square{
		step:      float64(frequency) / float64(sampleRate),
		amplitude: defaultAmplitude,
	}
}

func (s *Square) Start() { s.on.Store(true) }
func (s *Square) Stop()  { s.on.Store(false) }

// Playing reports whether the tone is gated on.
func (s *Square) Playing() bool {
	return s.on.Load()
}

// Read fills p with whole samples and returns the number of bytes written.
func (s *Square) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	on := s.on.Load()
	n := len(p) / 4
	for i := 0; i < n; i++ {
		var v float32
		if on {
			v = s.amplitude
			if s.phase >= 0.5 {
				v = -s.amplitude
			}
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))

		s.phase += s.step
		if s.phase >= 1 {
			s.phase -= 1
		}
	}
	return n * 4, nil
}
