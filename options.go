package pbitdoc

import (
	"io"
	"log/slog"

	"github.com/lvillar/pbitdoc/document"
)

// Option is a functional option for configuring Process.
type Option func(*processConfig)

type processConfig struct {
	logger      *slog.Logger
	fingerprint bool
	render      []document.Option
}

func newProcessConfig(opts []Option) *processConfig {
	cfg := &processConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger sets the logger used to report pipeline stages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *processConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFingerprintQR prints the schema fingerprint as a QR code on the title
// page.
func WithFingerprintQR(enabled bool) Option {
	return func(c *processConfig) {
		c.fingerprint = enabled
	}
}

// WithRenderOptions passes options through to the document renderer.
func WithRenderOptions(opts ...document.Option) Option {
	return func(c *processConfig) {
		c.render = append(c.render, opts...)
	}
}
