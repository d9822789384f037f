package spfeed

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	logger      *zap.Logger
	now         func() time.Time
	strictPaths bool
	cacheTTL    time.Duration
}

// Option configures a Feed.
type Option func(*options)

// WithLogger sets the logger used for skipped items. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock replaces time.Now when deciding which alerts are active.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithStrictPaths makes term set validation compare each PathOfTerm with
// the names of the term's ancestors.
func WithStrictPaths() Option {
	return func(o *options) {
		o.strictPaths = true
	}
}

// WithCacheTTL sets how long decoded term sets stay available to Term.
// Default: 0, no expiry.
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = d
	}
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop(),
		now:    time.Now,
	}
}
