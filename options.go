package vectorlite

import (
	"log/slog"

	"github.com/vectorlite/vectorlite/distance"
)

type options struct {
	dimension int
	metric    distance.Metric
	metricSet bool
	logger    *Logger
	metrics   MetricsCollector
	autoFlush bool
	readOnly  bool
}

// Option configures Open behavior.
type Option func(*options)

// WithDimension sets the vector dimensionality used when Open creates a new
// database. Opening an existing file ignores a conflicting dimension; the
// stored one wins and the conflict is reported through Warnings.
func WithDimension(dim int) Option {
	return func(o *options) {
		o.dimension = dim
	}
}

// WithMetric sets the similarity metric used when Open creates a new
// database. The default is cosine. Opening an existing file ignores a
// conflicting metric; the stored one wins and the conflict is reported
// through Warnings.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
		o.metricSet = true
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithAutoFlush persists the database after every successful mutation.
// Without it, state reaches disk on Flush and Close.
func WithAutoFlush() Option {
	return func(o *options) {
		o.autoFlush = true
	}
}

// WithReadOnly opens the database for queries only. Mutations fail with
// ErrReadOnly and Close does not write.
func WithReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metric:  distance.Cosine,
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
