package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/i474232898/weather-clock/internal/api/http"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/render"
	"github.com/i474232898/weather-clock/internal/scheduler"
	"github.com/i474232898/weather-clock/internal/store"
	"github.com/i474232898/weather-clock/internal/weather"
	"github.com/i474232898/weather-clock/internal/weather/providers"
)

var previewPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the clock (default)",
	RunE:  runClock,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&previewPath, "preview", "", "Write the presented frame to this PNG file (at most once per second)")
	}
	rootCmd.AddCommand(runCmd)
}

func runClock(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.Weather.RequestTimeout}
	provider := providers.NewOpenWeather(httpClient, cfg.OpenWeather())

	// One clock stamps snapshots and ages them out of the history.
	clock := clockwork.NewRealClock()

	state := weather.NewState()
	history := store.NewHistory(cfg.Status.HistorySize, cfg.Status.HistoryMaxAge, clock)

	fetcherCfg := cfg.Fetcher()
	fetcherCfg.Store = history
	fetcherCfg.Clock = clock
	fetcher := weather.NewFetcher(provider, state, fetcherCfg)

	panel := display.New(cfg.Display.Width, cfg.Display.Height)
	renderer := render.NewScheduler(panel, state, cfg.RenderOptions(), clock)

	reporter := scheduler.NewReporter(fetcher, cfg.Status.ReportInterval, 3*cfg.Weather.PollInterval, clock)
	if err := reporter.Start(); err != nil {
		return fmt.Errorf("start status reporter: %w", err)
	}
	defer reporter.Stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetcher.Run(gCtx) })
	g.Go(func() error { return renderer.Run(gCtx) })

	if previewPath != "" {
		preview := display.NewPNGPreview(afero.NewOsFs(), previewPath, display.DefaultPreviewInterval, clock)
		g.Go(func() error { return preview.Run(gCtx, panel) })
	}

	if cfg.Status.ListenAddr != "" {
		app := newStatusApp(httpapi.Deps{State: state, History: history, Status: reporter})
		g.Go(func() error {
			slog.Info("status: listening", "addr", cfg.Status.ListenAddr)
			if err := app.Listen(cfg.Status.ListenAddr); err != nil {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		})
	}

	err := g.Wait()
	slog.Info("weather-clock: stopped")
	return err
}

func newStatusApp(deps httpapi.Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-clock",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, deps)
	return app
}
