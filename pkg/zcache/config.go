// config.go defines the internal configuration object and the functional
// options users pass to New: a private config struct, a defaultConfig()
// constructor, With* option functions, and an applyOptions that validates
// and derives values. All fields are immutable once the Cache is
// constructed.
//
// © 2025 zcache authors. MIT License.
package zcache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ashgrove/zcache/internal/writeback"
)

type config struct {
	maxPoolPercent      int
	maxCompressionRatio int // percent, default 80
	codecName           string
	writebackEnabled    bool
	spareBufferCapacity int
	writebackBatchSize  int
	writebackCeiling    int64

	registry *prometheus.Registry
	logger   *zap.Logger
}

func defaultConfig() *config {
	return &config{
		maxPoolPercent:      50,
		maxCompressionRatio: 80,
		codecName:           "zstd",
		writebackEnabled:    true,
		spareBufferCapacity: 8,
		writebackBatchSize:  writeback.DefaultBatchSize,
		writebackCeiling:    writeback.DefaultInFlightCeiling,
		logger:              zap.NewNop(),
	}
}

// Option configures a Cache at construction time.
type Option func(*config)

// WithMaxPoolPercent sets the runtime tunable bounding live pool pages to
// this percentage of total physical RAM (default 50).
func WithMaxPoolPercent(pct int) Option {
	return func(c *config) { c.maxPoolPercent = pct }
}

// WithMaxCompressionRatio sets the admission ratio tunable (default 80):
// pages compressing worse than this percentage of page size are rejected.
func WithMaxCompressionRatio(pct int) Option {
	return func(c *config) { c.maxCompressionRatio = pct }
}

// WithCodec selects the boot-time compression codec by name ("zstd", "lz4",
// "snappy"). Unknown names fall back to the built-in default.
func WithCodec(name string) Option {
	return func(c *config) { c.codecName = name }
}

// WithWriteback toggles the writeback-enabled flag. When disabled,
// compressed-object-store allocation failure during Store is an immediate
// rejection rather than triggering a reclaim attempt.
func WithWriteback(enabled bool) Option {
	return func(c *config) { c.writebackEnabled = enabled }
}

// WithSpareBufferCapacity sets the fixed size of the cross-Index spare
// scratch-buffer pool.
func WithSpareBufferCapacity(n int) Option {
	return func(c *config) { c.spareBufferCapacity = n }
}

// WithMetrics enables Prometheus metrics collection. Passing nil disables
// metrics (default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The cache never logs on the hot
// Store/Load path; only slow/rare events are emitted: a debug entry for each
// Store-triggered writeback reclaim wave and a warning for codec fallback at
// boot. Admission rejections are counted, not logged.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func applyOptions(cfg *config, opts []Option) error {
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxPoolPercent <= 0 || cfg.maxPoolPercent > 100 {
		return errInvalidPoolPercent
	}
	if cfg.maxCompressionRatio <= 0 || cfg.maxCompressionRatio > 100 {
		return errInvalidRatio
	}
	if cfg.spareBufferCapacity < 0 {
		return errInvalidSpareCap
	}
	return nil
}

var (
	errInvalidPoolPercent = errors.New("zcache: max pool percent must be in (0,100]")
	errInvalidRatio       = errors.New("zcache: max compression ratio must be in (0,100]")
	errInvalidSpareCap    = errors.New("zcache: spare buffer capacity must be >= 0")
)
