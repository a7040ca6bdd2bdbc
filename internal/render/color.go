package render

import (
	"image/color"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	Black     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Blue      = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Red       = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	OrangeRed = color.RGBA{R: 255, G: 69, B: 0, A: 255}
)

// TemperatureColor maps a display temperature onto a blue → cyan → yellow →
// red gradient over [0,100]. Values outside the range clamp to the ends.
func TemperatureColor(temp int) color.RGBA {
	switch {
	case temp <= 0:
		return Blue
	case temp >= 100:
		return Red
	case temp <= 50:
		return coldSegment(temp)
	case temp <= 75:
		return mildSegment(temp)
	default:
		return warmSegment(temp)
	}
}

// coldSegment covers [0,50]: green rises, blue stays at max.
func coldSegment(temp int) color.RGBA {
	f := float64(temp) / 50
	return rgb(0, channel(f), 255)
}

// mildSegment covers [50,75]: red rises, blue falls, green stays at max.
func mildSegment(temp int) color.RGBA {
	f := float64(temp-50) / 25
	return rgb(channel(f), 255, channel(1-f))
}

// warmSegment covers [75,100]: green falls, red stays at max.
func warmSegment(temp int) color.RGBA {
	f := float64(temp-75) / 25
	return rgb(255, channel(1-f), 0)
}

// HumidityColor bands relative humidity: dry, comfortable, humid.
func HumidityColor(humidity int) color.RGBA {
	switch {
	case humidity < 30:
		return Blue
	case humidity < 60:
		return Green
	default:
		return OrangeRed
	}
}

// HueColor returns a fully saturated colour whose hue is the position of t
// within period, so the colour walks the hue wheel once per period.
func HueColor(t time.Time, period time.Duration) color.RGBA {
	if period <= 0 {
		period = time.Second
	}
	ms := period.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	pos := float64(t.UnixMilli()%ms) / float64(ms)
	if pos < 0 {
		pos += 1
	}
	r, g, b := colorful.Hsv(pos*360, 1, 1).RGB255()
	return rgb(r, g, b)
}

func channel(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(255 * f)
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
