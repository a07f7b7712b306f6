package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/keypad"
)

// physicalKeys lists the keyboard keys that stand in for the keypad, with
// the character each produces so the mapping follows keypad.Layout.
var physicalKeys = []struct {
	r   rune
	key ebiten.Key
}{
	{'1', ebiten.Key1}, {'2', ebiten.Key2}, {'3', ebiten.Key3}, {'4', ebiten.Key4},
	{'q', ebiten.KeyQ}, {'w', ebiten.KeyW}, {'e', ebiten.KeyE}, {'r', ebiten.KeyR},
	{'a', ebiten.KeyA}, {'s', ebiten.KeyS}, {'d', ebiten.KeyD}, {'f', ebiten.KeyF},
	{'z', ebiten.KeyZ}, {'x', ebiten.KeyX}, {'c', ebiten.KeyC}, {'v', ebiten.KeyV},
}

// keyMap maps an ebiten key to its keypad key.
var keyMap = func() map[ebiten.Key]uint8 {
	m := make(map[ebiten.Key]uint8, len(physicalKeys))
	for _, pk := range physicalKeys {
		if k, ok := keypad.KeyForRune(pk.r); ok {
			m[pk.key] = k
		}
	}
	return m
}()

// pollKeys copies the current keyboard state into kp.
func pollKeys(kp *keypad.Keypad) {
	for key, k := range keyMap {
		kp.Set(k, ebiten.IsKeyPressed(key))
	}
}
