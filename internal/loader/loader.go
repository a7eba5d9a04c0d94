// Package loader resolves the pixel dimensions of a source image for the
// editor. Resolution is asynchronous from the caller's point of view,
// retried up to a configurable bound, and cancellable; a cancelled or
// superseded request never publishes a stale result.
package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/MeKo-Tech/cropkit/internal/editor"
)

// SupportedImageExtensions lists the file extensions the loader accepts.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ConfigurationError reports a missing or invalid source at setup time. It
// is fatal and raised before any retry or geometry state construction.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid image source: " + e.Reason
}

// ImageLoadError is the terminal failure surfaced after retries exhaust.
type ImageLoadError struct {
	Source   string
	Attempts int
	Err      error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("loading image %q failed after %d attempts: %v",
		e.Source, e.Attempts, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// Config holds retry behavior for dimension resolution.
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the stock retry policy.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 10,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Loader resolves SourceImage descriptors from image files. Only the image
// header is decoded; pixel data is never read.
type Loader struct {
	cfg Config

	// resolve is swappable in tests to exercise the retry path without
	// touching the filesystem.
	resolve func(source string) (editor.SourceImage, error)
}

// New creates a loader with the given retry policy.
func New(cfg Config) *Loader {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	l := &Loader{cfg: cfg}
	l.resolve = resolveFile
	return l
}

// Load resolves the dimensions of source, retrying transient failures up to
// the configured bound and honoring ctx between attempts. An empty or
// unsupported source fails immediately with *ConfigurationError; exhaustion
// returns *ImageLoadError wrapping the last cause.
func (l *Loader) Load(ctx context.Context, source string) (editor.SourceImage, error) {
	if source == "" {
		return editor.SourceImage{}, &ConfigurationError{Reason: "empty path"}
	}
	if !IsSupportedImage(source) {
		return editor.SourceImage{}, &ConfigurationError{
			Reason: fmt.Sprintf("unsupported format %q", filepath.Ext(source)),
		}
	}

	var lastErr error
	for attempt := 1; attempt <= l.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return editor.SourceImage{}, err
		}
		src, err := l.resolve(source)
		if err == nil {
			return src, nil
		}
		lastErr = err
		slog.Debug("image dimension resolution failed",
			"source", source, "attempt", attempt, "error", err)
		if attempt < l.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return editor.SourceImage{}, ctx.Err()
			case <-time.After(l.cfg.RetryDelay):
			}
		}
	}
	return editor.SourceImage{}, &ImageLoadError{
		Source:   source,
		Attempts: l.cfg.MaxRetries,
		Err:      lastErr,
	}
}

// Result is the outcome of an asynchronous load.
type Result struct {
	Image editor.SourceImage
	Err   error
}

// LoadAsync runs Load in its own goroutine and delivers the outcome on the
// returned channel. If ctx is cancelled first, nothing is ever delivered, so
// a superseded request cannot apply a stale result; the caller cancels on
// teardown or when the image identity changes.
func (l *Loader) LoadAsync(ctx context.Context, source string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		src, err := l.Load(ctx, source)
		select {
		case <-ctx.Done():
		case ch <- Result{Image: src, Err: err}:
		}
	}()
	return ch
}

// resolveFile decodes only the image header to obtain pixel dimensions.
func resolveFile(source string) (editor.SourceImage, error) {
	f, err := os.Open(source) //nolint:gosec // G304: reading a user-provided image path is expected
	if err != nil {
		return editor.SourceImage{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("closing image file failed", "source", source, "error", cerr)
		}
	}()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return editor.SourceImage{}, fmt.Errorf("decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return editor.SourceImage{}, errors.New("image reports empty dimensions")
	}
	return editor.SourceImage{
		PixelWidth:  cfg.Width,
		PixelHeight: cfg.Height,
		AspectRatio: float64(cfg.Width) / float64(cfg.Height),
	}, nil
}
