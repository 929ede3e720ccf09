// Package sharpness scores how in-focus a photograph is.
//
// The score is a centre-weighted variance of the discrete Laplacian: the
// variance over the whole interior of the frame is blended with the variance
// over a centred crop so that a blurred subject cannot hide behind a sharp
// background. Everything here is a pure function of the pixel data and the
// threshold, and is safe for concurrent use.
package sharpness

import "math"

// Fixed scoring constants. They are part of the reproducible contract and are
// deliberately not user-configurable.
const (
	// CenterCropFraction is the share of width and height covered by the
	// centre region.
	CenterCropFraction = 0.5

	// FullFrameWeight and CenterWeight blend the two variances. They sum to 1
	// and the centre dominates.
	FullFrameWeight = 0.3
	CenterWeight    = 0.7

	// LowRatio and HighRatio bracket the threshold to form the borderline band.
	LowRatio  = 0.8
	HighRatio = 1.2
)

// DecodedImage is a row-major 8-bit pixel buffer with a known channel count.
type DecodedImage struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// Validate reports an *InvalidImageError when the dimensions or buffer length
// are inconsistent.
func (img DecodedImage) Validate() error {
	switch {
	case img.Width <= 0:
		return newInvalidImageError("width", "must be positive, got %d", img.Width)
	case img.Height <= 0:
		return newInvalidImageError("height", "must be positive, got %d", img.Height)
	case img.Channels <= 0:
		return newInvalidImageError("channels", "must be positive, got %d", img.Channels)
	}

	if img.Width > math.MaxInt/img.Height/img.Channels {
		return newInvalidImageError("dimensions", "%dx%dx%d overflows the buffer size",
			img.Width, img.Height, img.Channels)
	}

	want := img.Width * img.Height * img.Channels
	if len(img.Pix) != want {
		return newInvalidImageError("pix", "length %d does not match %dx%dx%d=%d",
			len(img.Pix), img.Width, img.Height, img.Channels, want)
	}
	return nil
}

// Result is the outcome of scoring one image.
type Result struct {
	Score             float64 `json:"score"`
	Band              Band    `json:"band"`
	FullFrameVariance float64 `json:"full_frame_variance"`
	CenterVariance    float64 `json:"center_variance"`
}

// Score computes the centre-weighted Laplacian variance of img and classifies
// it against cfg.Threshold.
func Score(img DecodedImage, cfg Config) (Result, error) {
	if err := img.Validate(); err != nil {
		return Result{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	gray, err := ToGrayscale(img)
	if err != nil {
		return Result{}, err
	}

	resp, err := Laplacian(gray, img.Width, img.Height)
	if err != nil {
		return Result{}, err
	}

	full := RegionVariance(resp, resp.Interior())
	center := RegionVariance(resp, CenterRegion(img.Width, img.Height))
	score := Composite(full, center)

	return Result{
		Score:             score,
		Band:              Classify(score, cfg.Threshold),
		FullFrameVariance: full,
		CenterVariance:    center,
	}, nil
}

// Composite blends the full-frame and centre variances.
func Composite(fullFrameVariance, centerVariance float64) float64 {
	return FullFrameWeight*fullFrameVariance + CenterWeight*centerVariance
}
