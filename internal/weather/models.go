package weather

import (
	"time"
)

// Unit is the temperature unit the display renders in.
type Unit string

const (
	Fahrenheit Unit = "F"
	Celsius    Unit = "C"
)

// Condition labels reported by OpenWeatherMap in weather[0].main that the
// display knows how to draw.
const (
	ConditionClear        = "Clear"
	ConditionClouds       = "Clouds"
	ConditionRain         = "Rain"
	ConditionSnow         = "Snow"
	ConditionThunderstorm = "Thunderstorm"
	ConditionFog          = "Fog"
	ConditionMist         = "Mist"
	ConditionHaze         = "Haze"
)

// Snapshot is the full weather view produced by a single successful fetch
// cycle. Temperatures are already converted to Unit.
//
// A Snapshot is a value: it is replaced wholesale on every publish and never
// modified field by field. The zero Snapshot is what the display shows before
// the first successful fetch.
type Snapshot struct {
	Temperature int    `json:"temperature"`
	FeelsLike   int    `json:"feelsLike"`
	Humidity    int    `json:"humidityPercent"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	Sunrise     int64  `json:"sunrise"` // unix seconds
	Sunset      int64  `json:"sunset"`  // unix seconds
	Unit        Unit   `json:"unit"`

	FetchedAt time.Time `json:"fetchedAt"` // always UTC
}

// HasDaylight reports whether both sunrise and sunset are known.
func (s Snapshot) HasDaylight() bool {
	return s.Sunrise != 0 && s.Sunset != 0
}

// IsDark reports whether t falls outside [sunrise, sunset]. It is false when
// the daylight window is unknown.
func (s Snapshot) IsDark(t time.Time) bool {
	if !s.HasDaylight() {
		return false
	}
	now := t.Unix()
	return now < s.Sunrise || now > s.Sunset
}

// ToFahrenheit converts a Celsius reading and rounds to the nearest degree.
func ToFahrenheit(celsius float64) int {
	return round(celsius*9/5 + 32)
}

// Convert renders a Celsius reading in unit u, rounded to the nearest degree.
func Convert(celsius float64, u Unit) int {
	if u == Fahrenheit {
		return ToFahrenheit(celsius)
	}
	return round(celsius)
}
