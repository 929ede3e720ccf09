package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/blur-culler/internal/analyzer"
	"github.com/anime-shed/blur-culler/internal/config"
	"github.com/anime-shed/blur-culler/internal/logger"
	"github.com/anime-shed/blur-culler/internal/mover"
	"github.com/anime-shed/blur-culler/internal/observer"
	"github.com/anime-shed/blur-culler/internal/repository"
	"github.com/anime-shed/blur-culler/internal/service"
	"github.com/anime-shed/blur-culler/internal/storage"
	"github.com/anime-shed/blur-culler/internal/thumbnail"
	"github.com/anime-shed/blur-culler/internal/transport"
	"github.com/anime-shed/blur-culler/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config      *config.Config
	publisher   *observer.EventPublisher
	metrics     *observer.MetricsObserver
	cullService service.CullService
	handler     http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Events
	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	// Image sources
	var blobFetcher storage.ImageFetcher
	if cfg.AzureEnabled() {
		azure, err := storage.NewAzureBlobFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
		blobFetcher = azure
	}
	httpFetcher := storage.NewHTTPImageFetcher(storage.WithTimeout(cfg.ImageFetchTimeout))
	images := repository.NewRemoteImageRepository(httpFetcher, blobFetcher, validation.NewURLValidator())

	opts := analyzer.DefaultOptions().
		WithThreshold(cfg.BlurThreshold).
		WithWorkers(cfg.Workers).
		WithMaxDimension(cfg.MaxDecodeDimension)

	cullService := service.NewCullService(service.Dependencies{
		Options:    opts,
		Paths:      validation.NewPathValidator(cfg.LibraryRoot),
		Images:     images,
		Scans:      repository.NewMemoryScanRepository(repository.DefaultScanHistory),
		Mover:      mover.New(cfg.ReviewDirName, 0),
		Thumbnails: thumbnail.New(cfg.ThumbnailSize),
		Publisher:  publisher,
	})
	handler := transport.NewHandler(cullService, metrics, cfg)

	logger.WithField("library_root", cfg.LibraryRoot).
		WithField("threshold", cfg.BlurThreshold).
		WithField("azure", cfg.AzureEnabled()).
		Info("Container initialized")

	return &Container{
		config:      cfg,
		publisher:   publisher,
		metrics:     metrics,
		cullService: cullService,
		handler:     handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the cull service
func (c *Container) Service() service.CullService {
	return c.cullService
}

// Close waits for pending event deliveries
func (c *Container) Close() {
	c.publisher.Wait()
}
