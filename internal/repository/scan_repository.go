package repository

import (
	"context"
	"sync"

	"github.com/anime-shed/blur-culler/pkg/models"
)

// DefaultScanHistory is the number of scans kept in memory.
const DefaultScanHistory = 50

// MemoryScanRepository keeps the most recent scans in memory. The oldest scan
// is evicted once the limit is reached.
type MemoryScanRepository struct {
	mu    sync.RWMutex
	limit int
	order []string
	scans map[string]*models.ScanResponse
}

// NewMemoryScanRepository creates a repository holding up to limit scans
func NewMemoryScanRepository(limit int) *MemoryScanRepository {
	if limit <= 0 {
		limit = DefaultScanHistory
	}
	return &MemoryScanRepository{
		limit: limit,
		scans: make(map[string]*models.ScanResponse),
	}
}

// SaveScan stores a scan result under its ID
func (r *MemoryScanRepository) SaveScan(ctx context.Context, scan *models.ScanResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scans[scan.ID]; !exists {
		r.order = append(r.order, scan.ID)
	}
	r.scans[scan.ID] = scan

	for len(r.order) > r.limit {
		delete(r.scans, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

// GetScan retrieves a stored scan result
func (r *MemoryScanRepository) GetScan(ctx context.Context, id string) (*models.ScanResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scan, ok := r.scans[id]
	if !ok {
		return nil, ErrScanNotFound
	}
	return scan, nil
}

// ListScans returns stored scans, newest first, without per-file results
func (r *MemoryScanRepository) ListScans(ctx context.Context) ([]*models.ScanResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.ScanResponse, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		s := *r.scans[r.order[i]]
		s.Results = nil
		out = append(out, &s)
	}
	return out, nil
}
