package render

import (
	"image/color"

	"github.com/i474232898/weather-clock/internal/weather"
)

var (
	sunYellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	cloudWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rainBlue   = color.RGBA{R: 100, G: 170, B: 255, A: 255}
	snowBlue   = color.RGBA{R: 173, G: 216, B: 230, A: 255}
	fogGray    = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// IconFunc draws a 15x15 icon with its top-left corner at (x, y).
type IconFunc func(c Canvas, x, y int)

var icons = map[string]IconFunc{
	weather.ConditionClear:        drawSun,
	weather.ConditionClouds:       drawCloud,
	weather.ConditionRain:         drawRain,
	weather.ConditionSnow:         drawSnow,
	weather.ConditionThunderstorm: drawThunder,
	weather.ConditionFog:          drawFog,
	weather.ConditionMist:         drawFog,
	weather.ConditionHaze:         drawFog,
}

// SelectIcon returns the icon for a condition label. Unknown labels,
// including the empty label of the initial snapshot, have none.
func SelectIcon(label string) (IconFunc, bool) {
	fn, ok := icons[label]
	return fn, ok
}

// DrawIcon draws the icon for label at (x, y) and reports whether one exists.
func DrawIcon(c Canvas, label string, x, y int) bool {
	fn, ok := SelectIcon(label)
	if !ok {
		return false
	}
	fn(c, x, y)
	return true
}

func drawSun(c Canvas, x, y int) {
	c.DrawCircle(x+7, y+7, 3, sunYellow)
}

func drawCloud(c Canvas, x, y int) {
	c.DrawCircle(x+4, y+8, 3, cloudWhite)
	c.DrawCircle(x+8, y+8, 4, cloudWhite)
}

func drawRain(c Canvas, x, y int) {
	drawCloud(c, x, y)
	c.DrawLine(x+4, y+12, x+3, y+14, rainBlue)
	c.DrawLine(x+9, y+12, x+8, y+14, rainBlue)
}

func drawSnow(c Canvas, x, y int) {
	drawCloud(c, x, y)
	c.DrawLine(x+6, y+12, x+6, y+14, snowBlue)
	c.DrawLine(x+5, y+13, x+7, y+13, snowBlue)
}

func drawThunder(c Canvas, x, y int) {
	drawCloud(c, x, y)
	c.DrawLine(x+8, y+10, x+7, y+12, sunYellow)
	c.DrawLine(x+7, y+12, x+9, y+14, sunYellow)
}

func drawFog(c Canvas, x, y int) {
	c.DrawLine(x, y+8, x+14, y+8, fogGray)
	c.DrawLine(x, y+10, x+14, y+10, fogGray)
}
