package tokensmith

import (
	"time"

	"github.com/vitwit/tokensmith/gateway"
	"github.com/vitwit/tokensmith/llm"
	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/metrics"
)

type Option func(*Tokensmith)

func WithLogger(l logger.Logger) Option {
	return func(t *Tokensmith) {
		t.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(t *Tokensmith) {
		t.metrics = r
	}
}

// WithTimeout bounds payment verification RPC calls.
func WithTimeout(d time.Duration) Option {
	return func(t *Tokensmith) {
		t.timeout = d
	}
}

// WithModel replaces the Gemini model built from the config.
func WithModel(m llm.Model) Option {
	return func(t *Tokensmith) {
		t.model = m
	}
}

// WithVerifier replaces the payment verifier built from the config.
func WithVerifier(v gateway.PaymentVerifier) Option {
	return func(t *Tokensmith) {
		t.verifier = v
	}
}
