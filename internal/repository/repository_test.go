package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/anime-shed/blur-culler/internal/errors"
	"github.com/anime-shed/blur-culler/pkg/models"
	"github.com/anime-shed/blur-culler/pkg/validation"
)

type stubFetcher struct {
	data []byte
	err  error
	refs []string
}

func (s *stubFetcher) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	s.refs = append(s.refs, ref)
	return s.data, s.err
}

func TestRemoteImageRepository_FetchURL(t *testing.T) {
	fetcher := &stubFetcher{data: []byte{1, 2, 3}}
	repo := NewRemoteImageRepository(fetcher, nil, nil)

	data, err := repo.FetchURL(context.Background(), "https://example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, []string{"https://example.com/a.jpg"}, fetcher.refs)
}

func TestRemoteImageRepository_FetchURL_Invalid(t *testing.T) {
	fetcher := &stubFetcher{}
	repo := NewRemoteImageRepository(fetcher, nil, validation.NewURLValidatorWithOptions([]string{"https"}, nil))

	_, err := repo.FetchURL(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidImageURL)

	_, err = repo.FetchURL(context.Background(), "http://example.com/a.jpg")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, fetcher.refs, "invalid URLs must not be fetched")
}

func TestRemoteImageRepository_FetchBlob(t *testing.T) {
	repo := NewRemoteImageRepository(&stubFetcher{}, nil, nil)
	assert.False(t, repo.BlobEnabled())

	_, err := repo.FetchBlob(context.Background(), "photos/a.jpg")
	assert.ErrorIs(t, err, ErrRepositoryUnavailable)

	blob := &stubFetcher{err: errors.New("403")}
	repo = NewRemoteImageRepository(&stubFetcher{}, blob, nil)
	assert.True(t, repo.BlobEnabled())

	_, err = repo.FetchBlob(context.Background(), "photos/a.jpg")
	assert.EqualError(t, err, "403")
	assert.Equal(t, []string{"photos/a.jpg"}, blob.refs)
}

func TestMemoryScanRepository(t *testing.T) {
	repo := NewMemoryScanRepository(2)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.SaveScan(ctx, &models.ScanResponse{
			ID:      fmt.Sprintf("scan-%d", i),
			Results: []models.ScoreResult{{Name: "a.jpg"}},
		}))
	}

	_, err := repo.GetScan(ctx, "scan-1")
	assert.ErrorIs(t, err, ErrScanNotFound, "oldest scan should be evicted")

	scan, err := repo.GetScan(ctx, "scan-3")
	require.NoError(t, err)
	assert.Len(t, scan.Results, 1)

	list, err := repo.ListScans(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "scan-3", list[0].ID)
	assert.Equal(t, "scan-2", list[1].ID)
	assert.Nil(t, list[0].Results)

	// Listing must not strip the stored copy
	scan, err = repo.GetScan(ctx, "scan-3")
	require.NoError(t, err)
	assert.Len(t, scan.Results, 1)
}

func TestMemoryScanRepository_Overwrite(t *testing.T) {
	repo := NewMemoryScanRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.SaveScan(ctx, &models.ScanResponse{ID: "a", Folder: "one"}))
	require.NoError(t, repo.SaveScan(ctx, &models.ScanResponse{ID: "a", Folder: "two"}))

	list, err := repo.ListScans(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "two", list[0].Folder)
}
