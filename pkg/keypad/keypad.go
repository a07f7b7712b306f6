// Package keypad holds the state of the 16-key hexadecimal keypad. Frontends
// press and release keys from their input goroutine while the interpreter
// reads snapshots from its own.
package keypad

import (
	"sync/atomic"

	"gochip8/pkg/chip8"
)

// Keypad is safe for concurrent use.
type Keypad struct {
	keys [chip8.NumKeys]atomic.Bool
}

func New() *Keypad {
	return &Keypad{}
}

// Press marks key as down. Keys outside 0x0-0xF are ignored.
func (k *Keypad) Press(key uint8) {
	if int(key) < len(k.keys) {
		k.keys[key].Store(true)
	}
}

func (k *Keypad) Release(key uint8) {
	if int(key) < len(k.keys) {
		k.keys[key].Store(false)
	}
}

// Set updates a key from a polled input source.
func (k *Keypad) Set(key uint8, down bool) {
	if down {
		k.Press(key)
	} else {
		k.Release(key)
	}
}

func (k *Keypad) ReleaseAll() {
	for i := range k.keys {
		k.keys[i].Store(false)
	}
}

// KeyStates implements chip8.KeySource.
func (k *Keypad) KeyStates() [chip8.NumKeys]bool {
	var states [chip8.NumKeys]bool
	for i := range k.keys {
		states[i] = k.keys[i].Load()
	}
	return states
}

// Layout is the conventional mapping of the hexadecimal keypad onto the left
// side of a QWERTY keyboard:
//
//	1 2 3 C    1 2 3 4
//	4 5 6 D    Q W E R
//	7 8 9 E    A S D F
//	A 0 B F    Z X C V
var Layout = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyForRune maps a typed character to its keypad key. Letters are matched
// case-insensitively.
func KeyForRune(r rune) (uint8, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	key, ok := Layout[r]
	return key, ok
}
