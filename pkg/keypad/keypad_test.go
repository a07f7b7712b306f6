package keypad

import (
	"sync"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestPressRelease(t *testing.T) {
	k := New()
	k.Press(0x3)
	k.Press(0xF)

	states := k.KeyStates()
	assert.Equal(t, true, states[0x3])
	assert.Equal(t, true, states[0xF])
	assert.Equal(t, false, states[0x0])

	k.Release(0x3)
	states = k.KeyStates()
	assert.Equal(t, false, states[0x3])
	assert.Equal(t, true, states[0xF])

	k.ReleaseAll()
	assert.Equal(t, [16]bool{}, k.KeyStates())
}

func TestOutOfRangeIgnored(t *testing.T) {
	k := New()
	k.Press(0x10)
	k.Set(0xFF, true)
	assert.Equal(t, [16]bool{}, k.KeyStates())
}

func TestSet(t *testing.T) {
	k := New()
	k.Set(7, true)
	assert.Equal(t, true, k.KeyStates()[7])
	k.Set(7, false)
	assert.Equal(t, false, k.KeyStates()[7])
}

func TestKeyForRune(t *testing.T) {
	tests := []struct {
		r    rune
		key  uint8
		isOk bool
	}{
		{'1', 0x1, true},
		{'4', 0xC, true},
		{'q', 0x4, true},
		{'R', 0xD, true},
		{'x', 0x0, true},
		{'V', 0xF, true},
		{'p', 0, false},
		{' ', 0, false},
	}
	for _, tc := range tests {
		key, ok := KeyForRune(tc.r)
		assert.Equal(t, tc.isOk, ok)
		assert.Equal(t, tc.key, key)
	}
}

func TestLayoutCoversEveryKey(t *testing.T) {
	seen := map[uint8]bool{}
	for _, key := range Layout {
		seen[key] = true
	}
	assert.Equal(t, 16, len(seen))
}

func TestConcurrentAccess(t *testing.T) {
	k := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(key uint8) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k.Press(key)
				_ = k.KeyStates()
				k.Release(key)
			}
		}(uint8(i))
	}
	wg.Wait()
	assert.Equal(t, [16]bool{}, k.KeyStates())
}
