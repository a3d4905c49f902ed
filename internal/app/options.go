package app

import "log"

// Option configures a SessionManager or CartStore.
type Option func(*options)

type options struct {
	signalPath string
}

// WithSignalFile makes every durable write also touch the notify signal file.
func WithSignalFile(path string) Option {
	return func(o *options) { o.signalPath = path }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// logf logs through logger when one is configured.
func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
