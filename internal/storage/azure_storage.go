package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// ErrInvalidBlobRef is returned for refs that do not name a container and blob.
var ErrInvalidBlobRef = errors.New("blob reference must be container/blob")

// AzureBlobFetcher implements ImageFetcher for Azure Blob Storage. Refs are
// "container/path/to/blob.jpg" or a full blob URL.
type AzureBlobFetcher struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureBlobFetcher creates a fetcher authenticated with a shared key
func NewAzureBlobFetcher(accountName, accountKey string) (*AzureBlobFetcher, error) {
	if accountName == "" || accountKey == "" {
		return nil, errors.New("azure storage account and key are required")
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &AzureBlobFetcher{client: client, maxBytes: DefaultMaxImageBytes}, nil
}

// FetchImage downloads the referenced blob
func (s *AzureBlobFetcher) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	containerName, blobName, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	body := resp.Body
	defer body.Close()

	if resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	return readLimited(body, s.maxBytes)
}

// ParseBlobRef splits a ref into container and blob names
func ParseBlobRef(ref string) (string, string, error) {
	path := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidBlobRef, err)
		}
		path = u.Path
	}

	path = strings.TrimPrefix(path, "/")
	containerName, blobName, ok := strings.Cut(path, "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidBlobRef, ref)
	}
	return containerName, blobName, nil
}
