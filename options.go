package vector

// options holds construction-time configuration shared by all variants.
type options struct {
	initialCapacity int
	compression     Compression
	logger          *Logger
}

// Option configures container construction.
type Option func(*options)

// WithInitialCapacity pre-sizes the content buffer to n scalar units,
// avoiding early growth reallocations when the final size is known.
// Values below one are clamped to one.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.initialCapacity = n
	}
}

// WithCompression selects whole-stream compression for snapshots written
// by WriteTo. Reads auto-detect the mode from the stream header.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger configures structured logging for container operations.
// Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		initialCapacity: 1,
		compression:     CompressionNone,
		logger:          NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
