package repository

import (
	"context"

	"github.com/anime-shed/blur-culler/pkg/models"
)

// ImageRepository defines the interface for remote image access
type ImageRepository interface {
	// FetchURL retrieves image bytes from an HTTP(S) URL
	FetchURL(ctx context.Context, imageURL string) ([]byte, error)

	// FetchBlob retrieves image bytes from blob storage
	FetchBlob(ctx context.Context, ref string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error

	// BlobEnabled reports whether a blob source is configured
	BlobEnabled() bool
}

// ScanRepository stores recent scan results for later review
type ScanRepository interface {
	// SaveScan stores a scan result under its ID
	SaveScan(ctx context.Context, scan *models.ScanResponse) error

	// GetScan retrieves a stored scan result
	GetScan(ctx context.Context, id string) (*models.ScanResponse, error)

	// ListScans returns stored scans, newest first, without per-file results
	ListScans(ctx context.Context) ([]*models.ScanResponse, error)
}
