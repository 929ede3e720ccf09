package service

import (
	"context"
	"errors"
	"os"

	"github.com/anime-shed/blur-culler/internal/analyzer"
	"github.com/anime-shed/blur-culler/internal/decoder"
	apperrors "github.com/anime-shed/blur-culler/internal/errors"
	"github.com/anime-shed/blur-culler/internal/sharpness"
	"github.com/anime-shed/blur-culler/pkg/models"
)

// toScoreResult converts an analyzer result to the shared response model
func toScoreResult(r analyzer.FileResult, threshold float64) models.ScoreResult {
	out := models.ScoreResult{
		Name:              r.Name,
		Path:              r.Path,
		Width:             r.Width,
		Height:            r.Height,
		Score:             r.Score,
		Band:              string(r.Band),
		FullFrameVariance: r.FullFrameVariance,
		CenterVariance:    r.CenterVariance,
		Threshold:         threshold,
		ProcessingTimeMS:  float64(r.ProcessingTime.Microseconds()) / 1000,
		Error:             r.Error,
	}
	if r.Metadata != nil {
		out.Metadata = &models.ImageMetadata{
			CapturedAt:  r.Metadata.CapturedAt,
			CameraMake:  r.Metadata.CameraMake,
			CameraModel: r.Metadata.CameraModel,
			Orientation: r.Metadata.Orientation,
		}
	}
	return out
}

func toSummary(s analyzer.Summary) models.ScanSummary {
	return models.ScanSummary{
		Total:      s.Total,
		Sharp:      s.Sharp,
		Borderline: s.Borderline,
		Blurry:     s.Blurry,
		Failed:     s.Failed,
		MeanScore:  s.MeanScore,
	}
}

// mapScoreError wraps a scoring failure in the matching AppError
func mapScoreError(err error) error {
	var invalid *sharpness.InvalidImageError
	switch {
	case errors.Is(err, sharpness.ErrInvalidThreshold):
		return apperrors.NewValidationError("invalid threshold", err)
	case errors.Is(err, decoder.ErrNotJPEG), errors.As(err, &invalid):
		return apperrors.NewInvalidImageError("image rejected", err)
	case errors.Is(err, os.ErrNotExist):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("scoring timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewProcessingError("scoring cancelled", err)
	default:
		return apperrors.NewInvalidImageError("failed to decode image", err)
	}
}
