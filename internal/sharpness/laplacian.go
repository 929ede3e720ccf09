package sharpness

import "math"

// Rect is an inclusive pixel rectangle. It is empty when X1 < X0 or Y1 < Y0.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Empty reports whether r contains no pixels
func (r Rect) Empty() bool {
	return r.X1 < r.X0 || r.Y1 < r.Y0
}

// Area returns the pixel count of r
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return (r.X1 - r.X0 + 1) * (r.Y1 - r.Y0 + 1)
}

// Intersect returns the overlap of r and s
func (r Rect) Intersect(s Rect) Rect {
	return Rect{
		X0: max(r.X0, s.X0),
		Y0: max(r.Y0, s.Y0),
		X1: min(r.X1, s.X1),
		Y1: min(r.Y1, s.Y1),
	}
}

// interior is the frame minus its one-pixel border.
func interior(width, height int) Rect {
	return Rect{X0: 1, Y0: 1, X1: width - 2, Y1: height - 2}
}

// Response holds Laplacian magnitudes for the interior pixels of a frame.
// Border pixels have no entry.
type Response struct {
	Width  int
	Height int

	// values is row-major over the interior, (Width-2)*(Height-2) long.
	values []float64
}

// Interior returns the rectangle of pixels that carry a response.
func (r Response) Interior() Rect {
	return interior(r.Width, r.Height)
}

// Len returns the number of response samples
func (r Response) Len() int {
	return len(r.values)
}

// At returns the response at interior pixel (x, y) in frame coordinates.
// It panics for border or out-of-range pixels.
func (r Response) At(x, y int) float64 {
	in := r.Interior()
	if x < in.X0 || x > in.X1 || y < in.Y0 || y > in.Y1 {
		panic("sharpness: Response.At outside interior")
	}
	return r.values[(y-1)*(r.Width-2)+(x-1)]
}

// row returns the responses for frame row y, indexed by x-1.
func (r Response) row(y int) []float64 {
	stride := r.Width - 2
	start := (y - 1) * stride
	return r.values[start : start+stride]
}

// Laplacian computes |4*I(x,y) - I(x-1,y) - I(x+1,y) - I(x,y-1) - I(x,y+1)|
// for every interior pixel of a width×height intensity buffer. Frames
// narrower or shorter than 3 pixels yield an empty response.
func Laplacian(gray []float64, width, height int) (Response, error) {
	if width <= 0 || height <= 0 {
		return Response{}, newInvalidImageError("dimensions", "must be positive, got %dx%d", width, height)
	}
	if len(gray) != width*height {
		return Response{}, newInvalidImageError("gray", "length %d does not match %dx%d", len(gray), width, height)
	}

	resp := Response{Width: width, Height: height}
	if width < 3 || height < 3 {
		return resp, nil
	}

	resp.values = make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		above := gray[(y-1)*width : y*width]
		cur := gray[y*width : (y+1)*width]
		below := gray[(y+1)*width : (y+2)*width]
		for x := 1; x < width-1; x++ {
			v := 4*cur[x] - cur[x-1] - cur[x+1] - above[x] - below[x]
			resp.values = append(resp.values, math.Abs(v))
		}
	}
	return resp, nil
}
