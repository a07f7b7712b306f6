package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"gochip8/pkg/chip8"
)

const (
	ansiHome       = "\x1b[H"
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
	ansiColor      = "\x1b[38;2;%d;%d;%dm"
	ansiReset      = "\x1b[0m"
)

// screen receives frames on the emulator goroutine and draws them from the
// refresh goroutine.
type screen struct {
	mu    sync.Mutex
	frame chip8.Frame
	dirty bool
}

func (s *screen) Render(f chip8.Frame) {
	s.mu.Lock()
	s.frame = f
	s.dirty = true
	s.mu.Unlock()
}

// take returns the latest frame and whether it changed since the last call.
func (s *screen) take() (chip8.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dirty := s.dirty
	s.dirty = false
	return s.frame, dirty
}

// halfBlocks packs two display rows into each terminal row.
func halfBlocks(f chip8.Frame) []string {
	lines := make([]string, 0, chip8.Height/2)
	var sb strings.Builder
	for y := 0; y < chip8.Height; y += 2 {
		sb.Reset()
		for x := 0; x < chip8.Width; x++ {
			top, bottom := f.Pixel(x, y), f.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// draw writes the frame and a status line. Raw mode needs explicit carriage
// returns.
func draw(w io.Writer, f chip8.Frame, status string) error {
	var sb strings.Builder
	sb.WriteString(ansiHome)
	c := chip8.DefaultOnColor
	fmt.Fprintf(&sb, ansiColor, c.R, c.G, c.B)
	for _, line := range halfBlocks(f) {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}
	sb.WriteString(ansiReset)
	sb.WriteString(status)
	sb.WriteString("\x1b[K")
	_, err := io.WriteString(w, sb.String())
	return err
}

// syncWriter serialises writes from the refresh loop and the bell.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
