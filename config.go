package memsim

// Backing selects which Store implementation backs the simulated
// address range.
type Backing int

const (
	// BackingHeap reserves the region as a plain Go byte slice.
	BackingHeap Backing = iota
	// BackingAnonMmap reserves the region as an anonymous mmap mapping.
	BackingAnonMmap
)

// AdaptiveParameters are the tuning knobs the adaptive supervisor
// reads and mutates during each adaptation cycle. See spec §3/§4.D.
type AdaptiveParameters struct {
	// FragmentationThreshold in (0,1); above it the supervisor switches
	// the allocator's strategy to the profiler's recommendation.
	FragmentationThreshold float64
	// PoolCreationThreshold is the minimum number of observations of a
	// size before the supervisor will poolify it.
	PoolCreationThreshold float64
	// AdaptationInterval is the number of operations between
	// adaptation cycles.
	AdaptationInterval int

	operationsSinceLastAdaptation int
}

// Config carries the construction parameters for an Allocator or
// Supervisor, mirroring the teacher's Config/DefaultConfig pair.
type Config struct {
	// TotalSize is the size in bytes of the simulated address range.
	TotalSize uint64
	// InitialStrategy is the placement strategy the allocator starts
	// with.
	InitialStrategy Strategy
	// Backing selects the Store implementation for the simulated range.
	Backing Backing

	AdaptiveParameters
}

// Option mutates a Config produced by DefaultConfig.
type Option func(*Config)

// WithInitialStrategy overrides the allocator's starting strategy.
func WithInitialStrategy(s Strategy) Option {
	return func(c *Config) { c.InitialStrategy = s }
}

// WithBacking overrides the Store implementation used for the
// simulated address range.
func WithBacking(b Backing) Option {
	return func(c *Config) { c.Backing = b }
}

// WithFragmentationThreshold overrides AdaptiveParameters.FragmentationThreshold.
func WithFragmentationThreshold(t float64) Option {
	return func(c *Config) { c.FragmentationThreshold = t }
}

// WithPoolCreationThreshold overrides AdaptiveParameters.PoolCreationThreshold.
func WithPoolCreationThreshold(t float64) Option {
	return func(c *Config) { c.PoolCreationThreshold = t }
}

// WithAdaptationInterval overrides AdaptiveParameters.AdaptationInterval.
func WithAdaptationInterval(n int) Option {
	return func(c *Config) { c.AdaptationInterval = n }
}

// DefaultConfig returns the spec-mandated defaults for totalSize:
// first-fit, heap-backed, fragmentationThreshold=0.30,
// poolCreationThreshold=100, adaptationInterval=1000.
func DefaultConfig(totalSize uint64, opts ...Option) *Config {
	c := &Config{
		TotalSize:       totalSize,
		InitialStrategy: FirstFit,
		Backing:         BackingHeap,
		AdaptiveParameters: AdaptiveParameters{
			FragmentationThreshold: 0.30,
			PoolCreationThreshold:  100,
			AdaptationInterval:     1000,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
