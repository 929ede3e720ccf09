package sharpness

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// ToGrayscale converts img to one float64 intensity per pixel.
//
// One channel passes through. Two channels are read as gray+alpha. Three or
// more are read as R, G, B with any further channels (alpha) ignored.
func ToGrayscale(img DecodedImage) ([]float64, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	n := img.Width * img.Height
	gray := make([]float64, n)
	c := img.Channels

	if c >= 3 {
		for i, p := 0, 0; i < n; i, p = i+1, p+c {
			gray[i] = lumaR*float64(img.Pix[p]) + lumaG*float64(img.Pix[p+1]) + lumaB*float64(img.Pix[p+2])
		}
		return gray, nil
	}

	for i, p := 0, 0; i < n; i, p = i+1, p+c {
		gray[i] = float64(img.Pix[p])
	}
	return gray, nil
}
