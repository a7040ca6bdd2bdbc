package display

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// DefaultPreviewInterval limits how often the preview file is rewritten.
const DefaultPreviewInterval = time.Second

// FrameSource is what the preview copies frames from.
type FrameSource interface {
	Frame() *image.RGBA
	Presented() uint64
}

// PNGPreview writes presented frames to a PNG file, at most once per
// interval. The file is replaced atomically so readers never see a partial
// image.
type PNGPreview struct {
	fs       afero.Fs
	path     string
	interval time.Duration
	clock    clockwork.Clock

	written uint64
	wrote   bool
}

// NewPNGPreview returns a preview writing to path on fs.
func NewPNGPreview(fs afero.Fs, path string, interval time.Duration, clock clockwork.Clock) *PNGPreview {
	if interval <= 0 {
		interval = DefaultPreviewInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PNGPreview{fs: fs, path: path, interval: interval, clock: clock}
}

// Run copies the latest presented frame from src to the file once per
// interval until ctx is cancelled. Intervals with no new frame write
// nothing. Write errors are logged and do not stop the loop.
func (p *PNGPreview) Run(ctx context.Context, src FrameSource) error {
	slog.Info("display: preview enabled", "path", p.path, "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.clock.After(p.interval):
		}
		if err := p.flush(src); err != nil {
			slog.Warn("display: preview write failed", "path", p.path, "error", err)
		}
	}
}

// flush writes the current frame if src presented one since the last write.
func (p *PNGPreview) flush(src FrameSource) error {
	n := src.Presented()
	if p.wrote && n == p.written {
		return nil
	}
	p.written, p.wrote = n, true
	return p.Write(src.Frame())
}

// Write replaces the preview file with frame.
func (p *PNGPreview) Write(frame *image.RGBA) error {
	tmp := p.path + ".tmp"
	file, err := p.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := png.Encode(file, frame); err != nil {
		file.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close preview: %w", err)
	}
	if err := p.fs.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace preview: %w", err)
	}
	return nil
}
