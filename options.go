package csvresync

import "runtime"

// Default tunables, exposed as Options fields rather than hardcoded so
// callers can retune them for unusually long records.
const (
	DefaultSampleSize       = 64
	DefaultWindowMultiplier = 16
)

// Options configures delimiter/quote handling, the sample scanner, the
// resync oracle's window, and the parallel driver's thread count. The zero
// value is not directly usable; construct via NewOptions or fill in the
// fields it leaves at their zero value before use — Normalize() applies
// the documented defaults in place.
type Options struct {
	// Delimiter is the field separator. Defaults to ',' when zero.
	Delimiter rune
	// Quote is the byte delimiting quoted spans. Defaults to '"' when
	// zero.
	Quote byte
	// SampleSize is the number of records the sample scanner reads past
	// the header (default DefaultSampleSize).
	SampleSize int
	// WindowMultiplier is the constant in window = WindowMultiplier *
	// max_record_size, the resync oracle's forward search bound (default
	// DefaultWindowMultiplier).
	WindowMultiplier int
	// Threads is the parallel driver's worker count. Zero selects
	// runtime.NumCPU() or 4, whichever is larger.
	Threads int
}

// NewOptions returns an Options populated with every documented default.
func NewOptions() Options {
	o := Options{}
	o.Normalize()
	return o
}

// Normalize fills zero-valued fields with their documented defaults,
// in place.
func (o *Options) Normalize() {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.SampleSize == 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.WindowMultiplier == 0 {
		o.WindowMultiplier = DefaultWindowMultiplier
	}
	if o.Threads == 0 {
		o.Threads = runtime.NumCPU()
		if o.Threads < 4 {
			o.Threads = 4
		}
	}
}
