package sound

import (
	"io"
	"sync"
)

// Bell rings the terminal bell each time the tone starts.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.w, "\a")
}

func (b *Bell) Stop() {}

// Silent discards every tone.
type Silent struct{}

func (Silent) Start() {}
func (Silent) Stop()  {}
