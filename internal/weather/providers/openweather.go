package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-clock/internal/weather"
)

const (
	// DefaultOpenWeatherEndpoint is the OpenWeatherMap current weather API.
	DefaultOpenWeatherEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	// DefaultRequestTimeout bounds a single request including the body read.
	DefaultRequestTimeout = 10 * time.Second
)

// OpenWeatherConfig configures an OpenWeather provider.
type OpenWeatherConfig struct {
	APIKey   string
	ZipCode  string
	Endpoint string
	Unit     weather.Unit
	Timeout  time.Duration
}

// OpenWeather implements weather.Provider for OpenWeatherMap, querying by
// zip code in metric units and converting to the display unit.
type OpenWeather struct {
	name    string
	apiKey  string
	zipCode string
	baseURL string
	unit    weather.Unit
	timeout time.Duration
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeather(client *http.Client, cfg OpenWeatherConfig) *OpenWeather {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultOpenWeatherEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	if cfg.Unit == "" {
		cfg.Unit = weather.Fahrenheit
	}

	return &OpenWeather{
		name:    "openweathermap",
		apiKey:  cfg.APIKey,
		zipCode: cfg.ZipCode,
		baseURL: cfg.Endpoint,
		unit:    cfg.Unit,
		timeout: cfg.Timeout,
		client:  client,
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeather) Name() string {
	return p.name
}

func (p *OpenWeather) Fetch(ctx context.Context) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrIncomplete)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("zip", p.zipCode)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}

	return parseOpenWeather(body, p.unit)
}

// openWeatherPayload uses pointers so absent fields can be told apart from
// zero values.
type openWeatherPayload struct {
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Sys struct {
		Sunrise *float64 `json:"sunrise"`
		Sunset  *float64 `json:"sunset"`
	} `json:"sys"`
	Weather []struct {
		Main        *string `json:"main"`
		Description *string `json:"description"`
	} `json:"weather"`
}

// parseOpenWeather extracts every required field or none: any absent or
// malformed field yields weather.ErrIncomplete.
func parseOpenWeather(body []byte, unit weather.Unit) (weather.Snapshot, error) {
	var payload openWeatherPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("%w: %v", weather.ErrIncomplete, err)
	}

	var missing []string
	check := func(present bool, field string) {
		if !present {
			missing = append(missing, field)
		}
	}
	check(payload.Main.Temp != nil, "main.temp")
	check(payload.Main.FeelsLike != nil, "main.feels_like")
	check(payload.Main.Humidity != nil, "main.humidity")
	check(payload.Sys.Sunrise != nil, "sys.sunrise")
	check(payload.Sys.Sunset != nil, "sys.sunset")
	if len(payload.Weather) == 0 {
		check(false, "weather[0].main")
		check(false, "weather[0].description")
	} else {
		check(payload.Weather[0].Main != nil, "weather[0].main")
		check(payload.Weather[0].Description != nil, "weather[0].description")
	}
	if len(missing) > 0 {
		return weather.Snapshot{}, fmt.Errorf("%w: missing %s", weather.ErrIncomplete, strings.Join(missing, ", "))
	}

	return weather.Snapshot{
		Temperature: weather.Convert(*payload.Main.Temp, unit),
		FeelsLike:   weather.Convert(*payload.Main.FeelsLike, unit),
		Humidity:    int(math.Round(*payload.Main.Humidity)),
		Condition:   *payload.Weather[0].Main,
		Description: *payload.Weather[0].Description,
		Sunrise:     int64(*payload.Sys.Sunrise),
		Sunset:      int64(*payload.Sys.Sunset),
		Unit:        unit,
	}, nil
}
