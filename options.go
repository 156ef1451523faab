package assetstream

import (
	"fmt"
	"log/slog"
)

// Config holds the controller tunables.
type Config struct {
	// Budget is the aggregate cost the controller tries to stay under.
	Budget uint64

	// BudgetPerIteration caps the estimated cost activated by one pass.
	// The first activation of a pass may exceed it.
	BudgetPerIteration uint64

	// BackpressureSlack is how many generations the async completion signal
	// may lag behind before Iterate skips a pass.
	BackpressureSlack uint64

	// EvictionHeadroom is the fraction of Budget above which assets with
	// priority <= 0 are evicted proactively. Must be in [0, 1].
	EvictionHeadroom float64

	// MaxAssets bounds the id space.
	MaxAssets uint32
}

// DefaultConfig returns the defaults used by New.
func DefaultConfig() Config {
	return Config{
		Budget:             256 << 20,
		BudgetPerIteration: 16 << 20,
		BackpressureSlack:  3,
		EvictionHeadroom:   0.75,
		MaxAssets:          1 << 18,
	}
}

// Validate checks the config for impossible values.
func (c Config) Validate() error {
	if c.EvictionHeadroom < 0 || c.EvictionHeadroom > 1 {
		return fmt.Errorf("%w: eviction headroom %v not in [0, 1]", ErrInvalidConfig, c.EvictionHeadroom)
	}
	if c.MaxAssets == 0 || AssetID(c.MaxAssets) == InvalidAssetID {
		return fmt.Errorf("%w: max assets %d out of range", ErrInvalidConfig, c.MaxAssets)
	}
	return nil
}

type options struct {
	cfg              Config
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Manager.
type Option func(*options)

// WithConfig replaces all tunables at once.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithBudget sets the initial aggregate budget. See Manager.SetBudget.
func WithBudget(budget uint64) Option {
	return func(o *options) {
		o.cfg.Budget = budget
	}
}

// WithBudgetPerIteration sets the initial per-pass activation cap.
func WithBudgetPerIteration(budget uint64) Option {
	return func(o *options) {
		o.cfg.BudgetPerIteration = budget
	}
}

// WithBackpressureSlack sets how far completed async units may trail the
// generation counter before passes are skipped.
func WithBackpressureSlack(slack uint64) Option {
	return func(o *options) {
		o.cfg.BackpressureSlack = slack
	}
}

// WithEvictionHeadroom sets the low-water fraction for proactive eviction.
func WithEvictionHeadroom(f float64) Option {
	return func(o *options) {
		o.cfg.EvictionHeadroom = f
	}
}

// WithMaxAssets bounds how many assets may be registered.
func WithMaxAssets(n uint32) Option {
	return func(o *options) {
		o.cfg.MaxAssets = n
	}
}

// WithMetricsCollector sets a custom metrics collector.
//
// If nil is passed, metrics are disabled.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a custom structured logger.
//
// If nil is passed, logging is disabled.
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

func applyOptions(optFns []Option) options {
	o := options{
		cfg:              DefaultConfig(),
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
