package analyzer

import "github.com/anime-shed/blur-culler/internal/sharpness"

// BatchOptions provides flexible configuration for batch scoring
type BatchOptions struct {
	// Blur threshold handed to the scorer
	Threshold float64

	// MaxDecodeDimension bounds the longer side before scoring. Zero scores
	// at full resolution.
	MaxDecodeDimension int

	// Feature toggles
	IncludeMetadata bool
	RequireJPEG     bool

	// Performance options
	MaxWorkers int
}

// DefaultOptions returns default batch options
func DefaultOptions() BatchOptions {
	return BatchOptions{
		Threshold:          sharpness.DefaultThreshold,
		MaxDecodeDimension: 0,
		IncludeMetadata:    true,
		RequireJPEG:        true,
		MaxWorkers:         0, // Use default CPU count
	}
}

// FastOptions returns options for quick previews of large libraries
func FastOptions() BatchOptions {
	opts := DefaultOptions()
	opts.MaxDecodeDimension = 1024
	opts.IncludeMetadata = false
	return opts
}

// QualityOptions returns options that score at full resolution
func QualityOptions() BatchOptions {
	opts := DefaultOptions()
	opts.MaxDecodeDimension = 0
	opts.IncludeMetadata = true
	return opts
}

// WithThreshold returns options with a custom blur threshold
func (opts BatchOptions) WithThreshold(threshold float64) BatchOptions {
	opts.Threshold = threshold
	return opts
}

// WithWorkers returns options with a custom worker count
func (opts BatchOptions) WithWorkers(workers int) BatchOptions {
	opts.MaxWorkers = workers
	return opts
}

// WithMaxDimension returns options that downscale images above max pixels
func (opts BatchOptions) WithMaxDimension(max int) BatchOptions {
	opts.MaxDecodeDimension = max
	return opts
}

// WithoutMetadata disables EXIF extraction
func (opts BatchOptions) WithoutMetadata() BatchOptions {
	opts.IncludeMetadata = false
	return opts
}

// AnyFormat accepts every registered image format instead of JPEG only
func (opts BatchOptions) AnyFormat() BatchOptions {
	opts.RequireJPEG = false
	return opts
}

// ScoringConfig returns the scorer configuration for these options
func (opts BatchOptions) ScoringConfig() sharpness.Config {
	return sharpness.DefaultConfig().WithThreshold(opts.Threshold)
}
