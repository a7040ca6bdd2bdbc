// Command weather-clock drives a 64x32 RGB matrix showing the time and the
// current weather.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-clock/internal/config"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:               "weather-clock",
	Short:             "Weather clock for RGB LED matrix panels",
	Long:              "weather-clock polls OpenWeatherMap and renders the time, temperature, humidity and current conditions on an RGB LED matrix.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runClock,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the INI configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(_ *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig never fails: a missing or invalid file falls back to defaults.
func loadConfig() *config.AppConfig {
	cfg, err := config.Load(afero.NewOsFs(), configPath)
	switch {
	case errors.Is(err, config.ErrNoConfigFile):
		slog.Warn("config: using defaults", "error", err)
	case err != nil:
		slog.Error("config: falling back to defaults", "path", configPath, "error", err)
		cfg = config.DefaultWithEnv()
	}
	if cfg.Weather.APIKey == "" || cfg.Weather.ZipCode == "" {
		slog.Warn("config: api_key or zip_code not set; weather will stay blank")
	}
	return cfg
}
