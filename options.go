package tuplego

import (
	"log/slog"

	"github.com/hupe1980/tuplego/store"
	"golang.org/x/time/rate"
)

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	writeLimit  *rate.Limiter
	compression store.Compression
}

func defaultOptions() options {
	return options{
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		compression: store.CompressionZstd,
	}
}

// Option configures a DB.
type Option func(*options)

// WithLogger sets the logger used by the DB facade.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLogLevel installs a text logger at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) { o.logger = NewTextLogger(level) }
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithWriteRateLimit throttles writes to limit rows per second with the
// given burst. The burst must cover the largest record group, or writes
// carrying bigger groups will stall forever.
func WithWriteRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) { o.writeLimit = rate.NewLimiter(limit, burst) }
}

// WithSnapshotCompression sets the codec used by Save. Load detects the
// codec from the snapshot header regardless of this setting.
func WithSnapshotCompression(c store.Compression) Option {
	return func(o *options) { o.compression = c }
}
