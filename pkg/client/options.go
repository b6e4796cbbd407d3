package client

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackoffConfig bounds the reconnect retry schedule. Delays start at Initial
// and double up to Max. MaxAttempts of zero retries forever.
type BackoffConfig struct {
	Initial     time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultBackoff is the reconnect schedule used unless WithBackoff overrides it.
var DefaultBackoff = BackoffConfig{
	Initial: 250 * time.Millisecond,
	Max:     30 * time.Second,
}

type options struct {
	logger      *slog.Logger
	dialTimeout time.Duration
	backoff     BackoffConfig

	onConnect         func()
	onDisconnect      func(error)
	onReconnectFailed func(attempt int, err error)

	registry prometheus.Registerer
}

func defaultOptions() options {
	return options{
		logger:      slog.Default(),
		dialTimeout: 10 * time.Second,
		backoff:     DefaultBackoff,
	}
}

// Option configures a connection at Open time.
type Option func(*options)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDialTimeout bounds each dial attempt, initial and reconnect alike.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithBackoff replaces the reconnect schedule.
func WithBackoff(cfg BackoffConfig) Option {
	return func(o *options) {
		o.backoff = cfg
	}
}

// WithOnConnect registers a callback fired after every successful connect,
// the initial one included. A typical callback reissues a full status request
// to resynchronize the cache.
func WithOnConnect(fn func()) Option {
	return func(o *options) {
		o.onConnect = fn
	}
}

// WithOnDisconnect registers a callback fired when the connection drops, with
// the transport error that killed it.
func WithOnDisconnect(fn func(error)) Option {
	return func(o *options) {
		o.onDisconnect = fn
	}
}

// WithOnStatusChange registers a single callback for both transitions:
// connected is true after each successful connect, false when the connection
// drops with the error that killed it. Composes with WithOnConnect and
// WithOnDisconnect rather than replacing them.
func WithOnStatusChange(fn func(connected bool, err error)) Option {
	return func(o *options) {
		prevConnect, prevDisconnect := o.onConnect, o.onDisconnect
		o.onConnect = func() {
			if prevConnect != nil {
				prevConnect()
			}
			fn(true, nil)
		}
		o.onDisconnect = func(err error) {
			if prevDisconnect != nil {
				prevDisconnect(err)
			}
			fn(false, err)
		}
	}
}

// WithOnReconnectFailed registers a callback fired after each failed
// reconnect attempt.
func WithOnReconnectFailed(fn func(attempt int, err error)) Option {
	return func(o *options) {
		o.onReconnectFailed = fn
	}
}

// WithMetrics registers connection metrics with the given registerer. Without
// this option no metrics are collected.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}
