package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-clock/internal/weather/providers"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the current weather once and print it as JSON",
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	provider := providers.NewOpenWeather(&http.Client{Timeout: cfg.Weather.RequestTimeout}, cfg.OpenWeather())
	snap, err := provider.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch weather: %w", err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
