package fireflies

// FirefliesBuilderOption is a functional option for configuring a firefly population.
type FirefliesBuilderOption func(*fireflies)

// WithCount sets the number of fireflies.
func WithCount(n int) FirefliesBuilderOption {
	return func(f *fireflies) {
		f.count = n
	}
}

// WithRateRange sets the range each firefly's per-tick rotation rate is drawn from.
//
// Parameters:
//   - lo: the inclusive lower bound
//   - hi: the exclusive upper bound
//
// Returns:
//   - FirefliesBuilderOption: the option
func WithRateRange(lo, hi float64) FirefliesBuilderOption {
	return func(f *fireflies) {
		f.rateMin = lo
		f.rateMax = hi
	}
}

// WithOrbitRadius sets the distance between a firefly and its pivot.
func WithOrbitRadius(r float64) FirefliesBuilderOption {
	return func(f *fireflies) {
		f.orbitRadius = r
	}
}

// WithSeed sets the seed of the random rates, phases and colors.
func WithSeed(seed uint64) FirefliesBuilderOption {
	return func(f *fireflies) {
		f.seed = seed
	}
}
