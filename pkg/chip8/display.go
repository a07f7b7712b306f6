package chip8

import (
	"image"
	"image/color"
	"image/png"
	"math/bits"
	"os"

	"gochip8/pkg/grid"
)

const (
	Width       = 64
	Height      = 32
	SpriteWidth = 8
)

var (
	// DefaultOnColor is the lit pixel colour used by the frontends.
	DefaultOnColor  = color.RGBA{R: 0xB4, G: 0xE5, B: 0xAF, A: 0xFF}
	DefaultOffColor = color.RGBA{A: 0xFF}
)

// Frame is an immutable copy of the display. Each row is one uint64 with
// column 0 in the most significant bit.
type Frame [Height]uint64

// Pixel reports whether the pixel at (x, y) is lit. Coordinates wrap.
func (f Frame) Pixel(x, y int) bool {
	x = grid.Wrap(x, Width)
	y = grid.Wrap(y, Height)
	return f[y]&(1<<(Width-1-x)) != 0
}

// Lit counts the lit pixels.
func (f Frame) Lit() int {
	n := 0
	for _, row := range f {
		n += bits.OnesCount64(row)
	}
	return n
}

// RGBA decodes the frame into a Width*Height*4 byte slice suitable for
// ebiten.Image.WritePixels.
func (f Frame) RGBA(on, off color.RGBA) []byte {
	pixels := make([]byte, Width*Height*4)
	for i := 0; i < Width*Height; i++ {
		x, y := grid.GetGridCoords(i, Width)
		c := off
		if f.Pixel(x, y) {
			c = on
		}
		pixels[i*4+0] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = c.A
	}
	return pixels
}

// Image returns the frame as an *image.RGBA, each pixel enlarged to a
// scale x scale block.
func (f Frame) Image(on, off color.RGBA, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	for py := 0; py < Height*scale; py++ {
		for px := 0; px < Width*scale; px++ {
			c := off
			if f.Pixel(px/scale, py/scale) {
				c = on
			}
			img.SetRGBA(px, py, c)
		}
	}
	return img
}

// SaveScreenshot encodes the frame as a PNG and writes it to filename.
func (f Frame) SaveScreenshot(filename string, scale int) error {
	img := f.Image(DefaultOnColor, DefaultOffColor, scale)
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

// FrameBuffer is the 64x32 monochrome display.
type FrameBuffer struct {
	rows Frame
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Clear turns every pixel off.
func (fb *FrameBuffer) Clear() {
	fb.rows = Frame{}
}

// Draw XORs sprite onto the display with its top-left corner at (x, y). Rows
// are drawn top to bottom, bits most significant first, and every coordinate
// wraps around the edges. It reports whether any lit pixel was turned off.
func (fb *FrameBuffer) Draw(x, y int, sprite []byte) bool {
	collision := false
	col := grid.Wrap(x, Width)
	for i, row := range sprite {
		mask := bits.RotateLeft64(uint64(row)<<(Width-SpriteWidth), -col)
		r := grid.Wrap(y+i, Height)
		if fb.rows[r]&mask != 0 {
			collision = true
		}
		fb.rows[r] ^= mask
	}
	return collision
}

func (fb *FrameBuffer) Pixel(x, y int) bool {
	return fb.rows.Pixel(x, y)
}

// Frame returns a copy of the current pixels.
func (fb *FrameBuffer) Frame() Frame {
	return fb.rows
}
