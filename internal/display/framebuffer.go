// Package display provides an in-memory RGB matrix that the render loop
// draws into. It stands in for a HUB75 panel driver: frames are composed in
// a back buffer and presented by SwapBuffers. Consumers of presented frames
// (the PNG preview) poll from their own goroutine so drawing never waits on
// them.
package display

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Default panel geometry.
const (
	DefaultWidth  = 64 // px
	DefaultHeight = 32 // px
)

// Framebuffer is a double-buffered RGBA canvas.
type Framebuffer struct {
	mu sync.Mutex

	back       *image.RGBA
	front      *image.RGBA
	brightness int
	presented  uint64
}

// New returns a cleared Framebuffer at full brightness. Zero dimensions fall
// back to the default panel size.
func New(width, height int) *Framebuffer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	rect := image.Rect(0, 0, width, height)
	f := &Framebuffer{
		back:       image.NewRGBA(rect),
		front:      image.NewRGBA(rect),
		brightness: 100,
	}
	f.Clear()
	draw.Draw(f.front, rect, image.Black, image.Point{}, draw.Src)
	return f
}

func (f *Framebuffer) Width() int  { return f.back.Rect.Dx() }
func (f *Framebuffer) Height() int { return f.back.Rect.Dy() }

// SetPixel writes to the back buffer. Out of range coordinates are ignored.
func (f *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	f.mu.Lock()
	f.back.SetRGBA(x, y, c)
	f.mu.Unlock()
}

// DrawLine draws a Bresenham line between both endpoints inclusive.
func (f *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		f.back.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a one pixel ring of radius r around (cx, cy).
func (f *Framebuffer) DrawCircle(cx, cy, r int, c color.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r <= 0 {
		f.back.SetRGBA(cx, cy, c)
		return
	}
	inner, outer := (r-1)*(r-1), r*r
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if d := x*x + y*y; d >= inner && d <= outer {
				f.back.SetRGBA(cx+x, cy+y, c)
			}
		}
	}
}

// DrawText writes text with its baseline at y using the TomThumb font.
func (f *Framebuffer) DrawText(x, y int, c color.RGBA, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tinyfont.WriteLine(target{f.back}, &tinyfont.TomThumb, int16(x), int16(y), text, c)
}

// Clear blanks the back buffer.
func (f *Framebuffer) Clear() {
	f.mu.Lock()
	draw.Draw(f.back, f.back.Rect, image.Black, image.Point{}, draw.Src)
	f.mu.Unlock()
}

// SwapBuffers presents the back buffer. The new back buffer keeps the
// previous frame until the next Clear.
func (f *Framebuffer) SwapBuffers() {
	f.mu.Lock()
	f.back, f.front = f.front, f.back
	copy(f.back.Pix, f.front.Pix)
	f.presented++
	f.mu.Unlock()
}

// Presented counts SwapBuffers calls.
func (f *Framebuffer) Presented() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presented
}

// SetBrightness sets the panel brightness in percent, clamped to 0..100.
func (f *Framebuffer) SetBrightness(level int) {
	f.mu.Lock()
	f.brightness = max(0, min(level, 100))
	f.mu.Unlock()
}

// Frame returns a copy of the presented frame as it appears on the panel.
func (f *Framebuffer) Frame() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scaled()
}

// WritePNG encodes the presented frame as PNG.
func (f *Framebuffer) WritePNG(w io.Writer) error {
	return png.Encode(w, f.Frame())
}

// scaled must be called with mu held.
func (f *Framebuffer) scaled() *image.RGBA {
	out := image.NewRGBA(f.front.Rect)
	for i := 0; i < len(f.front.Pix); i += 4 {
		out.Pix[i] = uint8(int(f.front.Pix[i]) * f.brightness / 100)
		out.Pix[i+1] = uint8(int(f.front.Pix[i+1]) * f.brightness / 100)
		out.Pix[i+2] = uint8(int(f.front.Pix[i+2]) * f.brightness / 100)
		out.Pix[i+3] = f.front.Pix[i+3]
	}
	return out
}

// target adapts an RGBA image to the tinygo Displayer contract tinyfont
// draws through.
var _ drivers.Displayer = target{}

type target struct {
	img *image.RGBA
}

func (t target) Size() (int16, int16) {
	return int16(t.img.Rect.Dx()), int16(t.img.Rect.Dy())
}

func (t target) SetPixel(x, y int16, c color.RGBA) {
	t.img.SetRGBA(int(x), int(y), c)
}

func (t target) Display() error { return nil }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
