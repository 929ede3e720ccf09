package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event represents a culling event
type Event struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ScanID         string                 `json:"scan_id,omitempty"`
	Path           string                 `json:"path,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	Score          float64                `json:"score,omitempty"`
	Band           string                 `json:"band,omitempty"`
	Count          int                    `json:"count,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of culling event
type EventType string

const (
	// ScanStarted when a folder scan begins
	ScanStarted EventType = "scan_started"
	// ScanCompleted when every file of a scan has a result
	ScanCompleted EventType = "scan_completed"
	// ImageScored when an image is decoded and scored
	ImageScored EventType = "image_scored"
	// ImageFailed when an image cannot be read, decoded or scored
	ImageFailed EventType = "image_failed"
	// ImageFetched when a remote image is downloaded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote image cannot be downloaded
	ImageFetchFailed EventType = "image_fetch_failed"
	// FilesMoved when files are moved into the review folder
	FilesMoved EventType = "files_moved"
	// FilesRestored when files are moved back out of the review folder
	FilesRestored EventType = "files_restored"
)

type scanIDKey struct{}

// WithScanID attaches a scan ID to ctx so events raised below it carry it
func WithScanID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, scanIDKey{}, id)
}

// ScanIDFrom returns the scan ID attached to ctx, if any
func ScanIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(scanIDKey{}).(string)
	return id
}

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event Event)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event Event)
}

// LoggingObserver logs culling events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event Event) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ScanID != "" {
		fields["scan_id"] = event.ScanID
	}
	if event.Path != "" {
		fields["path"] = event.Path
	}
	if event.Band != "" {
		fields["score"] = event.Score
		fields["band"] = event.Band
	}
	if event.Count > 0 {
		fields["count"] = event.Count
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ScanStarted:
		entry.Info("Scan started")
	case ScanCompleted:
		entry.Info("Scan completed")
	case ImageScored:
		entry.Debug("Image scored")
	case ImageFailed:
		entry.Warn("Image could not be scored")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	case FilesMoved:
		entry.Info("Files moved to review folder")
	case FilesRestored:
		entry.Info("Files restored from review folder")
	default:
		entry.Info("Cull event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from events
type MetricsObserver struct {
	mu                  sync.RWMutex
	scansStarted        int64
	scansCompleted      int64
	imagesScored        int64
	imagesFailed        int64
	fetchFailures       int64
	filesMoved          int64
	filesRestored       int64
	bandCounts          map[string]int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{bandCounts: make(map[string]int64)}
}

// OnEvent handles events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ScanStarted:
		o.scansStarted++
	case ScanCompleted:
		o.scansCompleted++
	case ImageScored:
		o.imagesScored++
		o.bandCounts[event.Band]++
		o.totalProcessingTime += event.ProcessingTime
	case ImageFailed:
		o.imagesFailed++
	case ImageFetchFailed:
		o.fetchFailures++
	case FilesMoved:
		o.filesMoved += int64(event.Count)
	case FilesRestored:
		o.filesRestored += int64(event.Count)
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.imagesScored > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.imagesScored)
	}

	bands := make(map[string]int64, len(o.bandCounts))
	for k, v := range o.bandCounts {
		bands[k] = v
	}

	return map[string]interface{}{
		"scans_started":         o.scansStarted,
		"scans_completed":       o.scansCompleted,
		"images_scored":         o.imagesScored,
		"images_failed":         o.imagesFailed,
		"fetch_failures":        o.fetchFailures,
		"files_moved":           o.filesMoved,
		"files_restored":        o.filesRestored,
		"bands":                 bands,
		"total_processing_time": o.totalProcessingTime.String(),
		"avg_processing_time":   avgProcessingTime.String(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ScanID == "" {
		event.ScanID = ScanIDFrom(ctx)
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification delivered so far has been handled
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}
