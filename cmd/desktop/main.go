package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/chip8"
	"gochip8/pkg/emulator"
	"gochip8/pkg/romlib"
	"gochip8/pkg/sound"
	"gochip8/pkg/utils"
)

func main() {
	romPath := flag.String("rom", "", "program to run (.ch8 image or .asm source)")
	romDir := flag.String("dir", "", "directory of programs; PageUp/PageDown switch between them")
	hz := flag.Int("hz", emulator.DefaultCycleHz, "instructions per second")
	scale := flag.Int("scale", 10, "window pixels per display pixel")
	mute := flag.Bool("mute", false, "disable sound")
	debug := flag.Bool("debug", false, "show the debug overlay (toggle with Tab)")
	verbose := flag.Bool("v", false, "log every executed instruction to stderr")
	flag.Parse()

	if *romPath == "" && *romDir == "" {
		fmt.Fprintln(os.Stderr, "usage: desktop -rom <file> | -dir <directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	lib := romlib.New()
	if *romDir != "" {
		n, err := lib.LoadFrom(*romDir)
		if err != nil {
			log.Fatalf("Failed to read ROM directory: %v", err)
		}
		log.Printf("loaded %d programs from %s", n, *romDir)
	}

	start := ""
	if *romPath != "" {
		program, err := utils.LoadProgram(*romPath)
		if err != nil {
			log.Fatalf("Failed to load program: %v", err)
		}
		start = filepath.Base(*romPath)
		if err := lib.Add(start, program); err != nil {
			log.Fatalf("Failed to load program: %v", err)
		}
	} else if names := lib.List(); len(names) > 0 {
		start = names[0]
	} else {
		log.Fatalf("No programs found in %s", *romDir)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var snd chip8.SoundDevice = sound.Silent{}
	if !*mute {
		beeper, err := sound.NewBeeper(sound.DefaultSampleRate, sound.DefaultFrequency)
		if err != nil {
			log.Printf("sound disabled: %v", err)
		} else {
			defer beeper.Close()
			snd = beeper
		}
	}

	game := newGame(lib, snd, *hz, max(*scale, 1), logger)
	game.showDebug = *debug
	if err := game.load(start); err != nil {
		log.Fatalf("Failed to start %s: %v", start, err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(chip8.Width*game.scale, chip8.Height*game.scale)
	ebiten.SetWindowTitle("CHIP-8")
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
