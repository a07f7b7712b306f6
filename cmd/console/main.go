package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"gochip8/pkg/chip8"
	"gochip8/pkg/emulator"
	"gochip8/pkg/keypad"
	"gochip8/pkg/sound"
	"gochip8/pkg/utils"
)

const refreshRate = 30

func main() {
	hz := flag.Int("hz", emulator.DefaultCycleHz, "instructions per second")
	hold := flag.Duration("hold", 150*time.Millisecond, "how long a typed key stays pressed")
	bell := flag.Bool("bell", true, "ring the terminal bell when the sound timer starts")
	trace := flag.String("trace", "", "write a debug trace of executed instructions to this file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: console [flags] <program.ch8|program.asm>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	program, err := utils.LoadProgram(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.Fatalf("stdin is not a terminal")
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < chip8.Width || h < chip8.Height/2+1) {
		log.Printf("terminal is %dx%d, at least %dx%d is needed", w, h, chip8.Width, chip8.Height/2+1)
	}

	out := &syncWriter{w: os.Stdout}
	var snd chip8.SoundDevice = sound.Silent{}
	if *bell {
		snd = sound.NewBell(out)
	}

	// The terminal belongs to the display, so records only go to a file.
	logger := slog.New(slog.DiscardHandler)
	if *trace != "" {
		f, err := os.Create(*trace)
		if err != nil {
			log.Fatalf("Failed to create trace file: %v", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	kp := keypad.New()
	scr := &screen{}
	m := chip8.New(chip8.Config{
		Renderer: scr,
		Sound:    snd,
		Keys:     kp,
		Logger:   logger,
	})
	if err := m.LoadProgram(program); err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}
	emu := emulator.New(m, emulator.Options{
		CycleHz: *hz,
		Logger:  logger,
	})

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("Failed to set raw mode: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	holder := newKeyHolder(kp, *hold)
	go readKeys(os.Stdin, holder, cancel)

	_, _ = io.WriteString(out, ansiClear+ansiHideCursor)
	done := make(chan struct{})
	go func() {
		defer close(done)
		refresh(ctx, out, scr)
	}()

	runErr := emu.Run(ctx)
	cancel()
	<-done
	holder.stop()

	_, _ = io.WriteString(out, ansiShowCursor+"\r\n")
	_ = term.Restore(fd, oldState)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Fatalf("Program stopped: %v", runErr)
	}
}

// refresh redraws the terminal whenever the frame changes.
func refresh(ctx context.Context, w io.Writer, scr *screen) {
	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	first := true
	for {
		select {
		case <-ctx.Done():
			frame, _ := scr.take()
			_ = draw(w, frame, "stopped")
			return
		case <-ticker.C:
			frame, dirty := scr.take()
			if !dirty && !first {
				continue
			}
			first = false
			_ = draw(w, frame, "Esc or Ctrl-C to quit")
		}
	}
}
