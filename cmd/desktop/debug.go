package main

import (
	"fmt"
	"strings"

	"gochip8/pkg/chip8"
)

const recentEvents = 8

// debugView collects change notifications from the machine for the overlay.
type debugView struct {
	recent [recentEvents]chip8.Event
	next   int
	total  int
	counts [chip8.MemoryChanged + 1]int
}

func (d *debugView) observe(ev chip8.Event) {
	d.recent[d.next] = ev
	d.next = (d.next + 1) % recentEvents
	d.total++
	if int(ev.Kind) < len(d.counts) {
		d.counts[ev.Kind]++
	}
}

func (d *debugView) reset() {
	*d = debugView{}
}

// events returns the buffered events, newest first.
func (d *debugView) events() []chip8.Event {
	n := min(d.total, recentEvents)
	out := make([]chip8.Event, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, d.recent[(d.next-i+recentEvents)%recentEvents])
	}
	return out
}

func formatEvent(ev chip8.Event) string {
	switch ev.Kind {
	case chip8.RegisterChanged:
		return fmt.Sprintf("V%X = $%02X", ev.Register, ev.Value)
	case chip8.PCChanged:
		return fmt.Sprintf("PC = $%03X", ev.Value)
	case chip8.IndexChanged:
		return fmt.Sprintf("I  = $%03X", ev.Value)
	case chip8.MemoryChanged:
		return fmt.Sprintf("[$%03X] = $%02X", ev.Address, ev.Value)
	}
	return ev.Kind.String()
}

// text renders the machine state and recent changes as overlay lines.
func (d *debugView) text(m *chip8.Machine, header string, hz int, paused bool) string {
	s := m.State()
	var sb strings.Builder

	status := "running"
	switch {
	case s.Halted:
		status = "halted"
	case paused:
		status = "paused"
	case s.AwaitingKey:
		status = "waiting for key"
	}
	fmt.Fprintf(&sb, "%s\n%d Hz  %s\n", header, hz, status)
	fmt.Fprintf(&sb, "cycles %d  changes: V %d  PC %d  I %d  mem %d\n", s.Cycles,
		d.counts[chip8.RegisterChanged], d.counts[chip8.PCChanged],
		d.counts[chip8.IndexChanged], d.counts[chip8.MemoryChanged])

	instr := "-"
	if int(s.PC)+1 < len(s.Memory) {
		opcode := uint16(s.Memory[s.PC])<<8 | uint16(s.Memory[s.PC+1])
		if in, err := chip8.Decode(opcode); err == nil {
			instr = fmt.Sprintf("%04X  %s", opcode, in)
		} else {
			instr = fmt.Sprintf("%04X  ???", opcode)
		}
	}
	fmt.Fprintf(&sb, "PC $%03X  %s\n", s.PC, instr)
	fmt.Fprintf(&sb, "I  $%03X  DT %3d  ST %3d  SP %d\n", s.I, s.Delay, s.Sound, len(s.Stack))

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r := row*4 + col
			fmt.Fprintf(&sb, "V%X %02X  ", r, s.V[r])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	for _, ev := range d.events() {
		sb.WriteString(formatEvent(ev))
		sb.WriteString("\n")
	}
	return sb.String()
}
