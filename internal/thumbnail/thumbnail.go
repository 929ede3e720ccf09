// Package thumbnail renders small JPEG previews for the review surface.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// DefaultSize bounds the longer side of a thumbnail.
	DefaultSize = 256

	jpegQuality = 80
)

// Generator produces JPEG thumbnails bounded to Size×Size.
type Generator struct {
	Size int
}

// New creates a generator. Non-positive sizes select DefaultSize.
func New(size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{Size: size}
}

// Generate opens the image at path and returns an encoded JPEG thumbnail
func (g *Generator) Generate(path string) ([]byte, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return g.encode(img)
}

// GenerateFromBytes builds a thumbnail from encoded image data
func (g *Generator) GenerateFromBytes(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return g.encode(img)
}

func (g *Generator) encode(img image.Image) ([]byte, error) {
	thumb := imaging.Fit(img, g.Size, g.Size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
