package repository

import (
	"context"
	"fmt"

	"github.com/anime-shed/blur-culler/internal/storage"
	"github.com/anime-shed/blur-culler/pkg/validation"
)

// RemoteImageRepository implements ImageRepository over HTTP and optional
// blob storage
type RemoteImageRepository struct {
	http      storage.ImageFetcher
	blob      storage.ImageFetcher
	validator *validation.URLValidator
}

// NewRemoteImageRepository creates a repository. blob may be nil.
func NewRemoteImageRepository(http, blob storage.ImageFetcher, validator *validation.URLValidator) *RemoteImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &RemoteImageRepository{
		http:      http,
		blob:      blob,
		validator: validator,
	}
}

// FetchURL validates and downloads an image URL
func (r *RemoteImageRepository) FetchURL(ctx context.Context, imageURL string) ([]byte, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	return r.http.FetchImage(ctx, imageURL)
}

// FetchBlob downloads a blob ref
func (r *RemoteImageRepository) FetchBlob(ctx context.Context, ref string) ([]byte, error) {
	if r.blob == nil {
		return nil, fmt.Errorf("blob storage: %w", ErrRepositoryUnavailable)
	}
	return r.blob.FetchImage(ctx, ref)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *RemoteImageRepository) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return ErrInvalidImageURL
	}
	return r.validator.ValidateImageURL(imageURL)
}

// BlobEnabled reports whether a blob fetcher is configured
func (r *RemoteImageRepository) BlobEnabled() bool {
	return r.blob != nil
}
