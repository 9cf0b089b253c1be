package segmenta

import (
	"log/slog"

	"github.com/hupe1980/segmenta/catalog"
	"github.com/hupe1980/segmenta/cluster"
	"github.com/hupe1980/segmenta/rank"
	"github.com/hupe1980/segmenta/resource"
)

type options struct {
	logger             *Logger
	metricsCollector   MetricsCollector
	resourceConfig     resource.Config
	resourceController *resource.Controller
	buildOptions       []catalog.BuildOption
	scorerOptions      []rank.Option
	clusterOptions     []func(*cluster.Options)
}

// Option configures engine constructor behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. signal-specific constructor variants).
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := segmenta.NewJSONLogger(slog.LevelInfo)
//	eng, _ := segmenta.New(ctx, sources, segmenta.WithLogger(logger))
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
//
// Example with BasicMetricsCollector:
//
//	metrics := &segmenta.BasicMetricsCollector{}
//	eng, _ := segmenta.New(ctx, sources, segmenta.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceConfig configures memory, run-slot and ingest limits.
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceConfig = cfg
	}
}

// WithResourceController shares an existing controller with the engine, so
// partition runs and source-side ingest throttling draw from the same limits:
//
//	ctrl := resource.NewController(resource.Config{IngestBytesPerSec: 1 << 20})
//	src := source.NewLocalSource(path, source.WithThrottle(ctrl))
//	eng, _ := segmenta.New(ctx, []source.Source{src}, segmenta.WithResourceController(ctrl))
//
// Takes precedence over WithResourceConfig.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = c
	}
}

// WithCatalogOptions forwards options to the initial catalog build, e.g.
// catalog.WithMinCount.
func WithCatalogOptions(optFns ...catalog.BuildOption) Option {
	return func(o *options) {
		o.buildOptions = append(o.buildOptions, optFns...)
	}
}

// WithScorerOptions forwards options to the relevance scorer, e.g.
// rank.WithSynonymTable, rank.WithWeights, rank.WithEmbedder.
func WithScorerOptions(optFns ...rank.Option) Option {
	return func(o *options) {
		o.scorerOptions = append(o.scorerOptions, optFns...)
	}
}

// WithClusterOptions forwards options to every partition run, e.g. iteration
// caps or worker counts.
func WithClusterOptions(optFns ...func(*cluster.Options)) Option {
	return func(o *options) {
		o.clusterOptions = append(o.clusterOptions, optFns...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
