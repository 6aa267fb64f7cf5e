package pgl

import "log"

//Option tunes ProximalGradient and Step without touching Config.
type Option func(*options)

type options struct {
	logger       *log.Logger
	zeroDiagonal bool
	trace        *Trace
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

//WithLogger prints one line per iteration to logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

//WithZeroDiagonal clears the diagonal after every proximal step, so the learned
//matrix never carries self-loops.
func WithZeroDiagonal() Option {
	return func(o *options) { o.zeroDiagonal = true }
}

//WithTrace records every iterate and its loss into trace.
func WithTrace(trace *Trace) Option {
	return func(o *options) { o.trace = trace }
}
