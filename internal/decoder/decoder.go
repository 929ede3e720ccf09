// Package decoder turns encoded image bytes into pixel buffers for the
// sharpness scorer.
package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/anime-shed/blur-culler/internal/sharpness"
)

// ErrNotJPEG is returned when data does not start with a JPEG SOI marker.
var ErrNotJPEG = errors.New("not a JPEG image")

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// ValidateJPEGHeader checks the first three bytes for FF D8 FF
func ValidateJPEGHeader(data []byte) error {
	if !bytes.HasPrefix(data, jpegMagic) {
		return ErrNotJPEG
	}
	return nil
}

// Decoder decodes images and optionally bounds their size before scoring.
type Decoder struct {
	// MaxDimension caps the longer side in pixels. Zero keeps full resolution.
	MaxDimension int
}

// New creates a decoder with the given size cap
func New(maxDimension int) *Decoder {
	return &Decoder{MaxDimension: maxDimension}
}

// DecodeJPEG validates the JPEG header and decodes data
func (d *Decoder) DecodeJPEG(data []byte) (sharpness.DecodedImage, error) {
	if err := ValidateJPEGHeader(data); err != nil {
		return sharpness.DecodedImage{}, err
	}
	return d.Decode(data)
}

// Decode decodes any registered format (JPEG, PNG, GIF, BMP, TIFF, WebP),
// applying EXIF orientation.
func (d *Decoder) Decode(data []byte) (sharpness.DecodedImage, error) {
	img, err := d.DecodeImage(data)
	if err != nil {
		return sharpness.DecodedImage{}, err
	}
	return ToDecodedImage(img), nil
}

// DecodeImage returns the oriented and size-bounded image.Image
func (d *Decoder) DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if d.MaxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > d.MaxDimension || b.Dy() > d.MaxDimension {
			img = imaging.Fit(img, d.MaxDimension, d.MaxDimension, imaging.Lanczos)
		}
	}
	return img, nil
}

// DecodeFile reads path and decodes it as a JPEG
func (d *Decoder) DecodeFile(path string) (sharpness.DecodedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sharpness.DecodedImage{}, err
	}
	return d.DecodeJPEG(data)
}

// ToDecodedImage copies img into a row-major buffer. Grayscale images keep one
// channel; everything else is converted to 4-channel NRGBA.
func ToDecodedImage(img image.Image) sharpness.DecodedImage {
	if g, ok := img.(*image.Gray); ok {
		return fromGray(g)
	}

	n := imaging.Clone(img)
	w, h := n.Rect.Dx(), n.Rect.Dy()
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		copy(pix[y*w*4:(y+1)*w*4], n.Pix[y*n.Stride:y*n.Stride+w*4])
	}
	return sharpness.DecodedImage{Width: w, Height: h, Channels: 4, Pix: pix}
}

func fromGray(g *image.Gray) sharpness.DecodedImage {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		start := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w:(y+1)*w], g.Pix[start:start+w])
	}
	return sharpness.DecodedImage{Width: w, Height: h, Channels: 1, Pix: pix}
}
