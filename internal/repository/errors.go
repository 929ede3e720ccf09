package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrScanNotFound indicates the scan result was not found
	ErrScanNotFound = errors.New("scan result not found")

	// ErrRepositoryUnavailable indicates the image source is not configured
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
