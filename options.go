package xlcalc

// Options holds configuration for a Sheet.
type Options struct {
	registry   Registry
	autoRecalc bool
}

func defaultOptions() *Options {
	return &Options{}
}

// Option configures a Sheet.
type Option func(*Options)

// WithRegistry sets the operation registry the sheet evaluates
// function calls against. By default each sheet gets its own
// registry preloaded with the built-in operations.
func WithRegistry(reg Registry) Option {
	return func(o *Options) { o.registry = reg }
}

// WithAutoRecalc makes every edit run a recalculation pass
// immediately instead of waiting for an explicit Recalculate.
func WithAutoRecalc(auto bool) Option {
	return func(o *Options) { o.autoRecalc = auto }
}
