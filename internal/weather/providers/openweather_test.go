package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-clock/internal/weather"
)

const fullResponse = `{
	"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 20, "feels_like": 18.6, "temp_min": 19, "temp_max": 22, "pressure": 1012, "humidity": 45.4},
	"sys": {"country": "US", "sunrise": 1714557600, "sunset": 1714608000},
	"name": "Beverly Hills"
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc, unit weather.Unit) *OpenWeather {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenWeather(srv.Client(), OpenWeatherConfig{
		APIKey:   "test-key",
		ZipCode:  "90210,us",
		Endpoint: srv.URL,
		Unit:     unit,
		Timeout:  200 * time.Millisecond,
	})
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestOpenWeather_FetchConvertsToFahrenheit(t *testing.T) {
	var query atomic.Value
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query())
		respond(http.StatusOK, fullResponse)(w, r)
	}, weather.Fahrenheit)

	snap, err := p.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 68, snap.Temperature)
	assert.Equal(t, 65, snap.FeelsLike)
	assert.Equal(t, 45, snap.Humidity)
	assert.Equal(t, "Clear", snap.Condition)
	assert.Equal(t, "clear sky", snap.Description)
	assert.Equal(t, int64(1714557600), snap.Sunrise)
	assert.Equal(t, int64(1714608000), snap.Sunset)
	assert.Equal(t, weather.Fahrenheit, snap.Unit)

	q := query.Load().(url.Values)
	assert.Equal(t, []string{"90210,us"}, q["zip"])
	assert.Equal(t, []string{"test-key"}, q["appid"])
	assert.Equal(t, []string{"metric"}, q["units"])
}

func TestOpenWeather_FetchCelsius(t *testing.T) {
	p := newTestProvider(t, respond(http.StatusOK, fullResponse), weather.Celsius)

	snap, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Temperature)
	assert.Equal(t, 19, snap.FeelsLike)
}

func TestOpenWeather_IncompleteResponses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing string
	}{
		{
			name:    "missing sunset",
			body:    `{"weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":20,"feels_like":18,"humidity":45},"sys":{"sunrise":1}}`,
			missing: "sys.sunset",
		},
		{
			name:    "empty weather list",
			body:    `{"weather":[],"main":{"temp":20,"feels_like":18,"humidity":45},"sys":{"sunrise":1,"sunset":2}}`,
			missing: "weather[0].main",
		},
		{
			name:    "missing description",
			body:    `{"weather":[{"main":"Rain"}],"main":{"temp":20,"feels_like":18,"humidity":45},"sys":{"sunrise":1,"sunset":2}}`,
			missing: "weather[0].description",
		},
		{
			name:    "missing main block",
			body:    `{"weather":[{"main":"Rain","description":"rain"}],"sys":{"sunrise":1,"sunset":2}}`,
			missing: "main.temp",
		},
		{
			name: "malformed temperature",
			body: `{"weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":"warm","feels_like":18,"humidity":45},"sys":{"sunrise":1,"sunset":2}}`,
		},
		{
			name: "not json",
			body: `<html>maintenance</html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, respond(http.StatusOK, tt.body), weather.Fahrenheit)

			_, err := p.Fetch(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, weather.ErrIncomplete)
			if tt.missing != "" {
				assert.Contains(t, err.Error(), tt.missing)
			}
		})
	}
}

func TestOpenWeather_RejectedRequestIsIncomplete(t *testing.T) {
	p := newTestProvider(t, respond(http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`), weather.Fahrenheit)

	_, err := p.Fetch(context.Background())
	assert.ErrorIs(t, err, weather.ErrIncomplete)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenWeather_MissingAPIKey(t *testing.T) {
	p := NewOpenWeather(http.DefaultClient, OpenWeatherConfig{ZipCode: "90210"})

	_, err := p.Fetch(context.Background())
	assert.ErrorIs(t, err, weather.ErrIncomplete)
}

func TestOpenWeather_TransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"server error", respond(http.StatusBadGateway, ""), errServerError},
		{"rate limited", respond(http.StatusTooManyRequests, ""), errRateLimited},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.handler, weather.Fahrenheit)

			_, err := p.Fetch(context.Background())
			require.Error(t, err)
			assert.NotErrorIs(t, err, weather.ErrIncomplete)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenWeather_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	p := NewOpenWeather(http.DefaultClient, OpenWeatherConfig{APIKey: "k", Endpoint: endpoint, Timeout: time.Second})

	_, err := p.Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, weather.ErrIncomplete)
}

func TestOpenWeather_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, weather.Fahrenheit)

	// gobreaker trips after more than five consecutive failures.
	for i := 0; i < 6; i++ {
		_, err := p.Fetch(context.Background())
		require.ErrorIs(t, err, errServerError)
	}

	_, err := p.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.NotErrorIs(t, err, weather.ErrIncomplete)
	assert.Equal(t, int32(6), hits.Load())
}
