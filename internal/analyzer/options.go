package analyzer

// ExtractionOptions provides flexible configuration for color extraction
type ExtractionOptions struct {
	// PaletteSize is the target number of representative colors (k)
	PaletteSize int

	// Sampling and convergence controls
	MaxSamples    int
	MaxIterations int
	Convergence   float64

	// Restarts reruns the clustering and keeps the run with the lowest
	// within-cluster sum of squares, avoiding poor local minima
	Restarts int

	// Seed fixes the random source so identical input always produces an
	// identical palette
	Seed int64
}

// DefaultOptions returns default extraction options
func DefaultOptions() ExtractionOptions {
	return ExtractionOptions{
		PaletteSize:   5,
		MaxSamples:    2000,
		MaxIterations: 20,
		Convergence:   2.0,
		Restarts:      3,
		Seed:          1,
	}
}

// FastOptions returns options tuned for quick previews
func FastOptions() ExtractionOptions {
	opts := DefaultOptions()
	opts.MaxSamples = 500
	opts.MaxIterations = 10
	opts.Restarts = 1
	return opts
}

// WithPaletteSize returns options with a custom target color count
func (opts ExtractionOptions) WithPaletteSize(k int) ExtractionOptions {
	if k >= 1 {
		opts.PaletteSize = k
	}
	return opts
}

// WithSeed returns options with a custom random seed
func (opts ExtractionOptions) WithSeed(seed int64) ExtractionOptions {
	opts.Seed = seed
	return opts
}
