package sharpness

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CenterRegion returns the centred crop covering CenterCropFraction of the
// frame in each dimension, clipped to the interior. When clipping leaves
// nothing but an interior exists, the single interior pixel nearest the centre
// is returned instead.
func CenterRegion(width, height int) Rect {
	in := interior(width, height)

	cw := int(math.Round(float64(width) * CenterCropFraction))
	ch := int(math.Round(float64(height) * CenterCropFraction))
	x0 := (width - cw) / 2
	y0 := (height - ch) / 2

	r := Rect{X0: x0, Y0: y0, X1: x0 + cw - 1, Y1: y0 + ch - 1}.Intersect(in)
	if r.Empty() && !in.Empty() {
		cx := min(max(width/2, in.X0), in.X1)
		cy := min(max(height/2, in.Y0), in.Y1)
		return Rect{X0: cx, Y0: cy, X1: cx, Y1: cy}
	}
	return r
}

// RegionVariance returns the population variance of the responses inside
// region. Fewer than two samples give 0.
func RegionVariance(resp Response, region Rect) float64 {
	region = region.Intersect(resp.Interior())
	if region.Area() < 2 || resp.Len() == 0 {
		return 0
	}

	samples := make([]float64, 0, region.Area())
	for y := region.Y0; y <= region.Y1; y++ {
		samples = append(samples, resp.row(y)[region.X0-1:region.X1]...)
	}

	v := stat.PopVariance(samples, nil)
	// Rounding in the compensated sum can dip just below zero.
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
