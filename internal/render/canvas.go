// Package render composes the clock/weather frame: colour mapping, icons,
// decorations and the per-frame scheduler that drives them.
package render

import "image/color"

// Canvas is the drawing surface of the pixel matrix. Coordinates outside the
// surface are clipped by the implementation. Text is positioned by its
// baseline.
type Canvas interface {
	Width() int
	Height() int
	SetPixel(x, y int, c color.RGBA)
	DrawLine(x0, y0, x1, y1 int, c color.RGBA)
	DrawCircle(x, y, radius int, c color.RGBA)
	DrawText(x, y int, c color.RGBA, text string)
	Clear()
	// SwapBuffers presents the frame drawn since the last Clear.
	SwapBuffers()
	// SetBrightness takes a percentage in [0,100].
	SetBrightness(level int)
}
