package analyzer

import (
	"context"

	"github.com/anime-shed/blur-culler/internal/sharpness"
)

// Scorer scores batches of images
type Scorer interface {
	ScoreFiles(ctx context.Context, paths []string) []FileResult
	ScoreBytes(ctx context.Context, data []byte, name string) FileResult
}

// ImageDecoder turns encoded bytes into pixel buffers
type ImageDecoder interface {
	DecodeJPEG(data []byte) (sharpness.DecodedImage, error)
	Decode(data []byte) (sharpness.DecodedImage, error)
}
