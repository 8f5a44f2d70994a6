package binding

import (
	"log/slog"
	"time"
)

type Strategy int

const (
	// PerProperty gives every bound property its own subscription and state
	// commit.
	PerProperty Strategy = iota
	// Combined joins every bound property with combine latest and debounce,
	// so near simultaneous emissions end in one commit.
	Combined
)

type Commit int

const (
	CommitAsync Commit = iota
	CommitSync
)

type ErrorPolicy int

const (
	// ErrorResubscribe logs the error and subscribes to the same source again.
	ErrorResubscribe ErrorPolicy = iota
	// ErrorLog logs the error and ends the binding.
	ErrorLog
	// ErrorSurface ends the binding and commits the error under ErrorKey.
	ErrorSurface
)

func (p ErrorPolicy) String() string {
	switch p {
	case ErrorResubscribe:
		return "resubscribe"
	case ErrorLog:
		return "log"
	case ErrorSurface:
		return "surface"
	default:
		return "unknown"
	}
}

type Variant int

const (
	// VariantStore binds per property, skips repeated values, resubscribes on
	// error and commits asynchronously.
	VariantStore Variant = iota
	// VariantInferno binds per property, logs errors and commits in the mode
	// set by WithCommit.
	VariantInferno
	// VariantGeneric combines every property into one debounced commit and
	// resubscribes on error.
	VariantGeneric
)

type options struct {
	logger     *slog.Logger
	strategy   Strategy
	commit     Commit
	policy     ErrorPolicy
	maxRetries int
	distinct   bool
	debounce   time.Duration
}

func defaultOptions() options {
	o := options{logger: slog.Default()}
	WithVariant(VariantStore)(&o)
	return o
}

// Option configures a Binder. Options apply in order, so WithVariant should
// come first.
type Option func(*options)

func WithVariant(v Variant) Option {
	return func(o *options) {
		switch v {
		case VariantInferno:
			o.strategy = PerProperty
			o.distinct = false
			o.policy = ErrorLog
		case VariantGeneric:
			o.strategy = Combined
			o.distinct = true
			o.policy = ErrorResubscribe
			o.commit = CommitAsync
			o.debounce = 0
		default:
			o.strategy = PerProperty
			o.distinct = true
			o.policy = ErrorResubscribe
			o.commit = CommitAsync
		}
		o.maxRetries = 1
	}
}

func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

func WithCommit(c Commit) Option {
	return func(o *options) { o.commit = c }
}

func WithErrorPolicy(p ErrorPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithMaxRetries sets how many times ErrorResubscribe subscribes again to a
// failed stream before giving up. n <= 0 disables resubscription.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

func WithDistinct(distinct bool) Option {
	return func(o *options) { o.distinct = distinct }
}

// WithDebounce sets the quiet period of the Combined strategy. A negative
// duration commits every combined emission synchronously.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

type bindOptions struct {
	key    string
	spread bool
}

type BindOption func(*bindOptions)

// To commits emissions under key instead of the property name.
func To(key string) BindOption {
	return func(o *bindOptions) { o.key = key }
}

// Spread merges every emission into the state key by key.
func Spread() BindOption {
	return func(o *bindOptions) { o.spread = true }
}
