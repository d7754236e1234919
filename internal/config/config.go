// Package config centralizes the ambient numeric defaults of a run:
// fabrication grid size, iteration budget, precision, swarm population, and
// verbosity. The CLI uses these defaults for its flags; the solver
// constructors carry their own literal defaults.
package config

// Config holds the ambient run settings: the package defaults with any
// Options applied.
type Config struct {
	// GridSize is the fabrication grid, in the same units as parameter
	// values; 0 disables grid rounding.
	GridSize float64
	// MaxIterations bounds every solver's iteration budget.
	MaxIterations int
	// Precision is the cost threshold below which a solve is considered
	// converged.
	Precision float64
	// PSOPopulation is the default particle count when population isn't
	// otherwise specified.
	PSOPopulation int
	// Verbose enables per-iteration progress printing.
	Verbose bool
}

// Default grid size and iteration/precision defaults, used as the CLI's
// flag defaults.
const (
	DefaultGridSize      = 5e-9
	DefaultMaxIterations = 500
	DefaultPrecision     = 1e-6
	DefaultPSOPopulation = 20
)

// New returns a Config populated with the package defaults.
func New() Config {
	return Config{
		GridSize:      DefaultGridSize,
		MaxIterations: DefaultMaxIterations,
		Precision:     DefaultPrecision,
		PSOPopulation: DefaultPSOPopulation,
	}
}

// Option mutates a Config; used to override defaults from CLI flags.
type Option func(*Config)

// WithGridSize overrides the fabrication grid size.
func WithGridSize(size float64) Option {
	return func(c *Config) { c.GridSize = size }
}

// WithMaxIterations overrides the iteration budget.
func WithMaxIterations(n int) Option {
	return func(c *Config) { c.MaxIterations = n }
}

// WithPrecision overrides the convergence precision.
func WithPrecision(p float64) Option {
	return func(c *Config) { c.Precision = p }
}

// WithVerbose overrides verbosity.
func WithVerbose(v bool) Option {
	return func(c *Config) { c.Verbose = v }
}

// Load returns a Config built from the defaults with opts applied in order.
func Load(opts ...Option) Config {
	c := New()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
