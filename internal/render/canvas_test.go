package render

import (
	"image/color"
)

type textCall struct {
	x, y int
	c    color.RGBA
	text string
}

type shapeCall struct {
	kind string
	args [4]int
	c    color.RGBA
}

// recordingCanvas remembers the draw calls of the current frame.
type recordingCanvas struct {
	width, height int

	texts      []textCall
	shapes     []shapeCall
	pixels     int
	brightness []int
	clears     int
	swaps      int
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{width: 64, height: 32}
}

func (c *recordingCanvas) Width() int  { return c.width }
func (c *recordingCanvas) Height() int { return c.height }

func (c *recordingCanvas) SetPixel(x, y int, col color.RGBA) { c.pixels++ }

func (c *recordingCanvas) DrawLine(x0, y0, x1, y1 int, col color.RGBA) {
	c.shapes = append(c.shapes, shapeCall{kind: "line", args: [4]int{x0, y0, x1, y1}, c: col})
}

func (c *recordingCanvas) DrawCircle(x, y, r int, col color.RGBA) {
	c.shapes = append(c.shapes, shapeCall{kind: "circle", args: [4]int{x, y, r}, c: col})
}

func (c *recordingCanvas) DrawText(x, y int, col color.RGBA, text string) {
	c.texts = append(c.texts, textCall{x: x, y: y, c: col, text: text})
}

func (c *recordingCanvas) Clear() {
	c.clears++
	c.texts = nil
	c.shapes = nil
	c.pixels = 0
}

func (c *recordingCanvas) SwapBuffers()            { c.swaps++ }
func (c *recordingCanvas) SetBrightness(level int) { c.brightness = append(c.brightness, level) }

// textAt returns the text drawn on baseline y starting at x, if any.
func (c *recordingCanvas) textAt(x, y int) (textCall, bool) {
	for _, t := range c.texts {
		if t.x == x && t.y == y {
			return t, true
		}
	}
	return textCall{}, false
}

// textOnRow returns the single text drawn on baseline y.
func (c *recordingCanvas) textOnRow(y int) (textCall, bool) {
	for _, t := range c.texts {
		if t.y == y {
			return t, true
		}
	}
	return textCall{}, false
}
