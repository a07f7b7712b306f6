package main

import (
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gochip8/pkg/chip8"
	"gochip8/pkg/emulator"
	"gochip8/pkg/keypad"
	"gochip8/pkg/romlib"
)

var overlayShade = color.RGBA{A: 0xC0}

// frameRenderer keeps the most recent frame for Draw. Update and Draw run on
// the same goroutine, so no locking is needed.
type frameRenderer struct {
	frame chip8.Frame
	dirty bool
}

func (r *frameRenderer) Render(f chip8.Frame) {
	r.frame = f
	r.dirty = true
}

type Game struct {
	emu    *emulator.Emulator
	keys   *keypad.Keypad
	screen *frameRenderer
	sound  chip8.SoundDevice
	debug  *debugView
	lib    *romlib.Library
	logger *slog.Logger

	rom       string
	hz        int
	scale     int
	showDebug bool
	message   string
	messageAt time.Time

	frameImg *ebiten.Image
	shadeImg *ebiten.Image
}

func newGame(lib *romlib.Library, sound chip8.SoundDevice, hz, scale int, logger *slog.Logger) *Game {
	return &Game{
		keys:   keypad.New(),
		screen: &frameRenderer{},
		sound:  sound,
		debug:  &debugView{},
		lib:    lib,
		logger: logger,
		hz:     hz,
		scale:  scale,
	}
}

// load starts the named ROM from the library on a fresh machine.
func (g *Game) load(name string) error {
	program, err := g.lib.Read(name)
	if err != nil {
		return err
	}

	g.sound.Stop()
	g.keys.ReleaseAll()
	g.debug.reset()
	g.screen.Render(chip8.Frame{})

	m := chip8.New(chip8.Config{
		Renderer:  g.screen,
		Sound:     g.sound,
		Keys:      g.keys,
		Observers: []chip8.Observer{g.debug.observe},
		Logger:    g.logger,
	})
	if err := m.LoadProgram(program); err != nil {
		return err
	}

	if g.emu == nil {
		g.emu = emulator.New(m, emulator.Options{CycleHz: g.hz, Logger: g.logger})
	} else {
		g.emu.Reset(m)
	}
	g.rom = name
	g.notify("loaded " + name)
	return nil
}

func (g *Game) switchROM(next bool) {
	step := g.lib.Prev
	if next {
		step = g.lib.Next
	}
	name, ok := step(g.rom)
	if !ok {
		return
	}
	if err := g.load(name); err != nil {
		g.notify(err.Error())
	}
}

// dropROM removes the current ROM from the library and moves on to the next.
func (g *Game) dropROM() {
	if g.lib.Len() <= 1 {
		g.notify("only one ROM left")
		return
	}
	next, _ := g.lib.Next(g.rom)
	if err := g.lib.Remove(g.rom); err != nil {
		g.notify(err.Error())
		return
	}
	if err := g.load(next); err != nil {
		g.notify(err.Error())
	}
}

// romSummary describes the current ROM and the library for the overlay.
func (g *Game) romSummary() string {
	summary := g.rom
	if size, err := g.lib.Size(g.rom); err == nil {
		summary = fmt.Sprintf("%s (%d bytes)", g.rom, size)
	}
	if mod, err := g.lib.Modified(g.rom); err == nil && !mod.IsZero() {
		summary += "  " + mod.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s\nlibrary: %d ROMs, %d bytes", summary, g.lib.Len(), g.lib.TotalBytes())
}

func (g *Game) notify(msg string) {
	g.message = msg
	g.messageAt = time.Now()
}

func (g *Game) screenshot() {
	filename := fmt.Sprintf("chip8-%s.png", time.Now().Format("20060102-150405"))
	if err := g.screen.frame.SaveScreenshot(filename, g.scale); err != nil {
		log.Printf("screenshot failed: %v", err)
		g.notify("screenshot failed")
		return
	}
	g.notify("saved " + filename)
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.showDebug = !g.showDebug
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		g.screenshot()
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		g.switchROM(true)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.switchROM(false)
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		g.dropROM()
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		if err := g.load(g.rom); err != nil {
			g.notify(err.Error())
		}
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.emu.SetPaused(!g.emu.Paused())
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod) && g.emu.Paused():
		_ = g.emu.Step()
	}

	pollKeys(g.keys)

	// The machine error is already logged and shown on screen.
	_ = g.emu.Advance(time.Now())
	if g.emu.Err() != nil {
		g.sound.Stop()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.frameImg == nil {
		g.frameImg = ebiten.NewImage(chip8.Width, chip8.Height)
	}
	if g.screen.dirty {
		g.frameImg.WritePixels(g.screen.frame.RGBA(chip8.DefaultOnColor, chip8.DefaultOffColor))
		g.screen.dirty = false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.frameImg, op)

	if g.showDebug {
		g.drawOverlay(screen)
	}

	if err := g.emu.Err(); err != nil {
		ebitenutil.DebugPrintAt(screen, "HALTED: "+err.Error(), 4, chip8.Height*g.scale-20)
	} else if g.message != "" && time.Since(g.messageAt) < 2*time.Second {
		ebitenutil.DebugPrintAt(screen, g.message, 4, chip8.Height*g.scale-20)
	}
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	if g.shadeImg == nil {
		g.shadeImg = ebiten.NewImage(1, 1)
		g.shadeImg.Fill(overlayShade)
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w), float64(h))
	screen.DrawImage(g.shadeImg, op)

	body := g.debug.text(g.emu.Machine(), g.romSummary(), g.hz, g.emu.Paused())
	text.Draw(screen, body, basicfont.Face7x13, 8, 16, chip8.DefaultOnColor)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.Width * g.scale, chip8.Height * g.scale
}
