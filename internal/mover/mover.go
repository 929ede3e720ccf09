// Package mover moves culled images into a review subfolder and back.
package mover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/anime-shed/blur-culler/internal/logger"
)

// DefaultReviewDirName is the review subfolder used when none is configured.
const DefaultReviewDirName = "_blurry"

// ErrInvalidName is returned for names that are not plain file names.
var ErrInvalidName = errors.New("invalid file name")

// MoveResult reports the outcome for one file.
type MoveResult struct {
	Name        string `json:"name"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`

	Err error `json:"-"`
}

// OK reports whether the file was moved
func (r MoveResult) OK() bool {
	return r.Err == nil
}

// Mover relocates files between a folder and its review subfolder. Existing
// files are never overwritten.
type Mover struct {
	ReviewDirName string
	Concurrency   int
}

// New creates a mover. An empty reviewDir selects DefaultReviewDirName.
func New(reviewDir string, concurrency int) *Mover {
	if reviewDir == "" {
		reviewDir = DefaultReviewDirName
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Mover{ReviewDirName: reviewDir, Concurrency: concurrency}
}

// ReviewDir returns the review folder path for folder
func (m *Mover) ReviewDir(folder string) string {
	return filepath.Join(folder, m.ReviewDirName)
}

// MoveToReview moves the named files from folder into its review subfolder.
// Per-file failures are reported in the results; the error is non-nil only
// when the review folder cannot be created or ctx is cancelled.
func (m *Mover) MoveToReview(ctx context.Context, folder string, names []string) ([]MoveResult, error) {
	reviewDir := m.ReviewDir(folder)
	if err := os.MkdirAll(reviewDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create review folder: %w", err)
	}
	return m.moveAll(ctx, folder, reviewDir, names)
}

// Restore moves the named files from the review subfolder back into folder.
func (m *Mover) Restore(ctx context.Context, folder string, names []string) ([]MoveResult, error) {
	reviewDir := m.ReviewDir(folder)
	if _, err := os.Stat(reviewDir); err != nil {
		return nil, fmt.Errorf("review folder unavailable: %w", err)
	}
	return m.moveAll(ctx, reviewDir, folder, names)
}

func (m *Mover) moveAll(ctx context.Context, srcDir, dstDir string, names []string) ([]MoveResult, error) {
	results := make([]MoveResult, len(names))
	res := &reservations{taken: make(map[string]bool)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.Concurrency)

	for i, name := range names {
		results[i].Name = name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}

			dst, err := moveOne(srcDir, dstDir, name, res)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"file":  name,
					"from":  srcDir,
					"to":    dstDir,
					"error": err.Error(),
				}).Warn("Failed to move file")
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Destination = dst
			return nil
		})
	}

	_ = g.Wait()
	return results, ctx.Err()
}

func moveOne(srcDir, dstDir, name string, res *reservations) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	src := filepath.Join(srcDir, name)
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", name)
	}

	dst, err := res.reserve(dstDir, name)
	if err != nil {
		return "", err
	}
	defer res.release(dst)

	if err := os.Rename(src, dst); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
			os.Remove(dst)
			return "", fmt.Errorf("failed to move %s: %w", name, err)
		}
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("copied %s but could not remove source: %w", name, err)
		}
	}
	return dst, nil
}

// ValidateName rejects empty names, path separators and dot entries
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// reservations hands out destination paths so concurrent moves never pick
// the same free name.
type reservations struct {
	mu    sync.Mutex
	taken map[string]bool
}

func (r *reservations) reserve(dir, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < 10000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		if r.taken[path] {
			continue
		}
		if _, err := os.Lstat(path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		r.taken[path] = true
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", name, dir)
}

func (r *reservations) release(path string) {
	r.mu.Lock()
	delete(r.taken, path)
	r.mu.Unlock()
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
