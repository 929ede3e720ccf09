package sharpness

import "fmt"

// Band is the user-facing sharpness class.
type Band string

const (
	BandSharp      Band = "sharp"
	BandBorderline Band = "borderline"
	BandBlurry     Band = "blurry"
)

// Classify places score into a band relative to threshold.
func Classify(score, threshold float64) Band {
	switch {
	case score < threshold*LowRatio:
		return BandBlurry
	case score < threshold*HighRatio:
		return BandBorderline
	default:
		return BandSharp
	}
}

// ParseBand parses a band name
func ParseBand(s string) (Band, error) {
	switch b := Band(s); b {
	case BandSharp, BandBorderline, BandBlurry:
		return b, nil
	default:
		return "", fmt.Errorf("unknown band %q", s)
	}
}

// Rank orders bands from blurriest (0) to sharpest (2).
func (b Band) Rank() int {
	switch b {
	case BandBlurry:
		return 0
	case BandBorderline:
		return 1
	case BandSharp:
		return 2
	default:
		return -1
	}
}
