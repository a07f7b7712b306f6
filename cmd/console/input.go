package main

import (
	"bufio"
	"io"
	"sync"
	"time"

	"gochip8/pkg/keypad"
)

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// keyHolder turns typed characters into key presses. Terminals report no
// key-up events, so each press is released after hold unless the key repeats.
type keyHolder struct {
	kp     *keypad.Keypad
	hold   time.Duration
	mu     sync.Mutex
	timers map[uint8]*time.Timer
}

func newKeyHolder(kp *keypad.Keypad, hold time.Duration) *keyHolder {
	return &keyHolder{
		kp:     kp,
		hold:   hold,
		timers: make(map[uint8]*time.Timer),
	}
}

// handle presses the key for r. It returns false when r asks to quit.
func (h *keyHolder) handle(r rune) bool {
	if r == keyCtrlC || r == keyEsc {
		return false
	}
	key, ok := keypad.KeyForRune(r)
	if !ok {
		return true
	}

	h.kp.Press(key)

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.timers[key]; ok {
		t.Reset(h.hold)
		return true
	}
	h.timers[key] = time.AfterFunc(h.hold, func() {
		h.kp.Release(key)
	})
	return true
}

func (h *keyHolder) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.timers {
		t.Stop()
	}
	h.kp.ReleaseAll()
}

// readKeys feeds runes from r to h until input ends or a quit key arrives,
// then calls quit.
func readKeys(r io.Reader, h *keyHolder, quit func()) {
	defer quit()
	br := bufio.NewReader(r)
	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			return
		}
		if !h.handle(ch) {
			return
		}
	}
}
