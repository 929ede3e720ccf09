package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/blur-culler/internal/analyzer"
	apperrors "github.com/anime-shed/blur-culler/internal/errors"
	"github.com/anime-shed/blur-culler/internal/logger"
	"github.com/anime-shed/blur-culler/internal/mover"
	"github.com/anime-shed/blur-culler/internal/observer"
	"github.com/anime-shed/blur-culler/internal/repository"
	"github.com/anime-shed/blur-culler/internal/scanner"
	"github.com/anime-shed/blur-culler/internal/sharpness"
	"github.com/anime-shed/blur-culler/internal/thumbnail"
	"github.com/anime-shed/blur-culler/pkg/models"
	"github.com/anime-shed/blur-culler/pkg/validation"
)

// CullService scores image libraries and manages the review folder
type CullService interface {
	// Scoring
	ScanFolder(ctx context.Context, req models.ScanRequest) (*models.ScanResponse, error)
	ScoreUpload(ctx context.Context, data []byte, name string, threshold *float64) (*models.ScoreResult, error)
	ScoreURL(ctx context.Context, req models.ScoreURLRequest) (*models.ScoreResult, error)
	ScoreBlob(ctx context.Context, req models.ScoreBlobRequest) (*models.ScoreResult, error)

	// Scan history
	GetScan(ctx context.Context, id string) (*models.ScanResponse, error)
	ListScans(ctx context.Context) ([]*models.ScanResponse, error)

	// Review folder
	MoveToReview(ctx context.Context, req models.MoveRequest) (*models.MoveResponse, error)
	RestoreFromReview(ctx context.Context, req models.MoveRequest) (*models.MoveResponse, error)
	Thumbnail(ctx context.Context, path string) ([]byte, error)
}

// Dependencies groups the collaborators of the cull service
type Dependencies struct {
	Options    analyzer.BatchOptions
	Paths      *validation.PathValidator
	Images     repository.ImageRepository
	Scans      repository.ScanRepository
	Mover      *mover.Mover
	Thumbnails *thumbnail.Generator
	Publisher  observer.Subject
}

type cullService struct {
	opts       analyzer.BatchOptions
	paths      *validation.PathValidator
	images     repository.ImageRepository
	scans      repository.ScanRepository
	mover      *mover.Mover
	thumbnails *thumbnail.Generator
	publisher  observer.Subject
}

// NewCullService creates a new cull service. Missing collaborators get
// defaults, except Images which disables remote scoring when nil.
func NewCullService(deps Dependencies) CullService {
	if deps.Paths == nil {
		deps.Paths = validation.NewPathValidator("")
	}
	if deps.Scans == nil {
		deps.Scans = repository.NewMemoryScanRepository(0)
	}
	if deps.Mover == nil {
		deps.Mover = mover.New("", 0)
	}
	if deps.Thumbnails == nil {
		deps.Thumbnails = thumbnail.New(0)
	}
	if deps.Publisher == nil {
		deps.Publisher = observer.NewEventPublisher()
	}
	return &cullService{
		opts:       deps.Options,
		paths:      deps.Paths,
		images:     deps.Images,
		scans:      deps.Scans,
		mover:      deps.Mover,
		thumbnails: deps.Thumbnails,
		publisher:  deps.Publisher,
	}
}

// ScanFolder scores every JPEG directly inside the requested folder
func (s *cullService) ScanFolder(ctx context.Context, req models.ScanRequest) (*models.ScanResponse, error) {
	opts, err := s.optionsFor(req.Threshold)
	if err != nil {
		return nil, err
	}
	if req.Fast {
		opts = opts.WithMaxDimension(analyzer.FastOptions().MaxDecodeDimension)
	}

	bands, err := parseBands(req.Bands)
	if err != nil {
		return nil, err
	}
	order, err := analyzer.ParseSortOrder(req.Sort)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid sort order", err)
	}

	folder, err := s.paths.ResolveFolder(req.Folder)
	if err != nil {
		return nil, err
	}
	paths, err := scanner.ListJPEGs(folder, s.mover.ReviewDirName)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list folder", err)
	}

	scanID := uuid.NewString()
	ctx = observer.WithScanID(ctx, scanID)
	start := time.Now()

	s.publisher.NotifyObservers(ctx, observer.Event{
		EventType: observer.ScanStarted,
		Path:      folder,
		Count:     len(paths),
		Success:   true,
	})

	results := analyzer.NewBatchScorer(opts, s.publisher).ScoreFiles(ctx, paths)
	if err := ctx.Err(); err != nil {
		s.publisher.NotifyObservers(ctx, observer.Event{
			EventType:      observer.ScanCompleted,
			Path:           folder,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("scan did not finish in time", err)
		}
		return nil, apperrors.NewProcessingError("scan cancelled", err)
	}

	summary := analyzer.Summarize(results)
	visible := analyzer.FilterByBand(results, bands, req.IncludeFailed)
	analyzer.SortResults(visible, order)

	resp := &models.ScanResponse{
		ID:                scanID,
		Folder:            folder,
		Threshold:         opts.Threshold,
		Timestamp:         start.UTC(),
		ProcessingTimeSec: time.Since(start).Seconds(),
		Summary:           toSummary(summary),
		Results:           make([]models.ScoreResult, 0, len(visible)),
	}
	for _, r := range visible {
		resp.Results = append(resp.Results, toScoreResult(r, opts.Threshold))
	}

	s.publisher.NotifyObservers(ctx, observer.Event{
		EventType:      observer.ScanCompleted,
		Path:           folder,
		ProcessingTime: time.Since(start),
		Count:          summary.Total,
		Success:        true,
		Metadata: map[string]interface{}{
			"sharp":      summary.Sharp,
			"borderline": summary.Borderline,
			"blurry":     summary.Blurry,
			"failed":     summary.Failed,
		},
	})

	if err := s.scans.SaveScan(ctx, resp); err != nil {
		logger.WithError(err).WithField("scan_id", scanID).Warn("Failed to store scan result")
	}
	return resp, nil
}

// ScoreUpload scores an uploaded image of any supported format
func (s *cullService) ScoreUpload(ctx context.Context, data []byte, name string, threshold *float64) (*models.ScoreResult, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("uploaded file is empty", nil)
	}
	return s.scoreBytes(ctx, data, name, threshold)
}

// ScoreURL downloads and scores an image
func (s *cullService) ScoreURL(ctx context.Context, req models.ScoreURLRequest) (*models.ScoreResult, error) {
	if s.images == nil {
		return nil, apperrors.NewInternalError("remote images are not configured", repository.ErrRepositoryUnavailable)
	}
	if err := s.images.ValidateImageURL(req.URL); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			return nil, err
		}
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	data, err := s.fetch(ctx, req.URL, s.images.FetchURL)
	if err != nil {
		return nil, err
	}
	return s.scoreBytes(ctx, data, req.URL, req.Threshold)
}

// ScoreBlob downloads and scores an image from blob storage
func (s *cullService) ScoreBlob(ctx context.Context, req models.ScoreBlobRequest) (*models.ScoreResult, error) {
	if s.images == nil || !s.images.BlobEnabled() {
		return nil, apperrors.NewValidationError("blob storage is not configured", repository.ErrRepositoryUnavailable)
	}

	data, err := s.fetch(ctx, req.Ref, s.images.FetchBlob)
	if err != nil {
		return nil, err
	}
	return s.scoreBytes(ctx, data, req.Ref, req.Threshold)
}

func (s *cullService) fetch(ctx context.Context, ref string, fetch func(context.Context, string) ([]byte, error)) ([]byte, error) {
	start := time.Now()
	data, err := fetch(ctx, ref)
	event := observer.Event{
		EventType:      observer.ImageFetched,
		Path:           ref,
		ProcessingTime: time.Since(start),
		Success:        err == nil,
	}
	if err != nil {
		event.EventType = observer.ImageFetchFailed
		event.ErrorMessage = err.Error()
	}
	s.publisher.NotifyObservers(ctx, event)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image fetch timed out", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	return data, nil
}

func (s *cullService) scoreBytes(ctx context.Context, data []byte, name string, threshold *float64) (*models.ScoreResult, error) {
	opts, err := s.optionsFor(threshold)
	if err != nil {
		return nil, err
	}

	res := analyzer.NewBatchScorer(opts.AnyFormat(), s.publisher).ScoreBytes(ctx, data, name)
	if !res.OK() {
		return nil, mapScoreError(res.Err)
	}
	out := toScoreResult(res, opts.Threshold)
	return &out, nil
}

// GetScan returns a stored scan
func (s *cullService) GetScan(ctx context.Context, id string) (*models.ScanResponse, error) {
	scan, err := s.scans.GetScan(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScanNotFound) {
			return nil, apperrors.NewNotFoundError("scan not found", err).WithDetails(id)
		}
		return nil, apperrors.NewInternalError("failed to load scan", err)
	}
	return scan, nil
}

// ListScans returns recent scans without per-file results
func (s *cullService) ListScans(ctx context.Context) ([]*models.ScanResponse, error) {
	scans, err := s.scans.ListScans(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list scans", err)
	}
	return scans, nil
}

// MoveToReview moves files into the review subfolder
func (s *cullService) MoveToReview(ctx context.Context, req models.MoveRequest) (*models.MoveResponse, error) {
	return s.move(ctx, req, observer.FilesMoved, s.mover.MoveToReview)
}

// RestoreFromReview moves files back out of the review subfolder
func (s *cullService) RestoreFromReview(ctx context.Context, req models.MoveRequest) (*models.MoveResponse, error) {
	return s.move(ctx, req, observer.FilesRestored, s.mover.Restore)
}

type moveFunc func(ctx context.Context, folder string, names []string) ([]mover.MoveResult, error)

func (s *cullService) move(ctx context.Context, req models.MoveRequest, event observer.EventType, fn moveFunc) (*models.MoveResponse, error) {
	if len(req.Files) == 0 {
		return nil, apperrors.NewValidationError("no files given", nil)
	}
	folder, err := s.paths.ResolveFolder(req.Folder)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := fn(ctx, folder, req.Files)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, apperrors.NewNotFoundError("review folder not found", err)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.NewTimeoutError("move did not finish in time", err)
		case results == nil:
			return nil, apperrors.NewInternalError("failed to move files", err)
		}
	}

	resp := &models.MoveResponse{
		Folder:       folder,
		ReviewFolder: s.mover.ReviewDir(folder),
		Results:      make([]models.MoveResult, 0, len(results)),
	}
	for _, r := range results {
		if r.OK() {
			resp.Moved++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, models.MoveResult{
			Name:        r.Name,
			Destination: r.Destination,
			Error:       r.Error,
		})
	}

	s.publisher.NotifyObservers(ctx, observer.Event{
		EventType:      event,
		Path:           folder,
		ProcessingTime: time.Since(start),
		Count:          resp.Moved,
		Success:        resp.Failed == 0,
	})
	logger.WithFields(logrus.Fields{
		"folder": folder,
		"moved":  resp.Moved,
		"failed": resp.Failed,
		"event":  event,
	}).Info("Review folder updated")

	return resp, nil
}

// Thumbnail renders a preview of a library image
func (s *cullService) Thumbnail(ctx context.Context, path string) ([]byte, error) {
	file, err := s.paths.ResolveFile(path)
	if err != nil {
		return nil, err
	}
	if !scanner.IsJPEGName(filepath.Base(file)) {
		return nil, apperrors.NewValidationError("thumbnails are only served for JPEG files", nil).WithDetails(path)
	}
	data, err := s.thumbnails.Generate(file)
	if err != nil {
		return nil, apperrors.NewInvalidImageError("failed to render thumbnail", err)
	}
	return data, nil
}

func (s *cullService) optionsFor(threshold *float64) (analyzer.BatchOptions, error) {
	opts := s.opts
	if threshold != nil {
		opts = opts.WithThreshold(*threshold)
	}
	if err := opts.ScoringConfig().Validate(); err != nil {
		return opts, apperrors.NewValidationError("invalid threshold", err)
	}
	return opts, nil
}

func parseBands(names []string) ([]sharpness.Band, error) {
	bands := make([]sharpness.Band, 0, len(names))
	for _, n := range names {
		b, err := sharpness.ParseBand(n)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid band filter", err)
		}
		bands = append(bands, b)
	}
	return bands, nil
}
