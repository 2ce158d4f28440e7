package boxfield

// BoxFieldBuilderOption is a functional option for configuring a box field.
type BoxFieldBuilderOption func(*boxField)

// WithCount sets the number of boxes.
func WithCount(n int) BoxFieldBuilderOption {
	return func(f *boxField) {
		f.count = n
	}
}

// WithRadius sets the outer radius of the shell; boxes are placed between a
// quarter of it and the full radius.
func WithRadius(r float64) BoxFieldBuilderOption {
	return func(f *boxField) {
		f.radius = r
	}
}

// WithSpeedRange sets the range each box's spin rate is drawn from.
func WithSpeedRange(lo, hi float64) BoxFieldBuilderOption {
	return func(f *boxField) {
		f.speedMin = lo
		f.speedMax = hi
	}
}

// WithGroupRate sets the per-tick rotation of the whole field around X and Y.
func WithGroupRate(x, y float64) BoxFieldBuilderOption {
	return func(f *boxField) {
		f.groupRateX = x
		f.groupRateY = y
	}
}

// WithBoxSize sets the visual size of every box.
func WithBoxSize(s float64) BoxFieldBuilderOption {
	return func(f *boxField) {
		f.boxSize = s
	}
}

// WithSeed sets the seed of the layout, spin rates and colors.
func WithSeed(seed uint64) BoxFieldBuilderOption {
	return func(f *boxField) {
		f.seed = seed
	}
}
