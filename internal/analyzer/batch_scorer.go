package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/blur-culler/internal/decoder"
	"github.com/anime-shed/blur-culler/internal/logger"
	"github.com/anime-shed/blur-culler/internal/observer"
	"github.com/anime-shed/blur-culler/internal/sharpness"
)

// BatchScorer decodes and scores images on a worker pool
type BatchScorer struct {
	decoder   ImageDecoder
	opts      BatchOptions
	config    sharpness.Config
	publisher observer.Subject
	readFile  func(string) ([]byte, error)
}

// NewBatchScorer creates a scorer using the decoder package with opts
func NewBatchScorer(opts BatchOptions, publisher observer.Subject) *BatchScorer {
	return NewBatchScorerWithDecoder(decoder.New(opts.MaxDecodeDimension), opts, publisher)
}

// NewBatchScorerWithDecoder creates a scorer with a custom decoder
func NewBatchScorerWithDecoder(dec ImageDecoder, opts BatchOptions, publisher observer.Subject) *BatchScorer {
	return &BatchScorer{
		decoder:   dec,
		opts:      opts,
		config:    opts.ScoringConfig(),
		publisher: publisher,
		readFile:  os.ReadFile,
	}
}

// Options returns the options the scorer was built with
func (b *BatchScorer) Options() BatchOptions {
	return b.opts
}

// ScoreFiles scores every path and returns one result per path in input
// order. Unreadable or undecodable files are reported, not dropped. Jobs
// that have not started when ctx is cancelled carry ctx.Err().
func (b *BatchScorer) ScoreFiles(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}
	if err := b.config.Validate(); err != nil {
		for i, p := range paths {
			results[i] = FileResult{Path: p, Name: filepath.Base(p)}
			results[i].fail(err)
		}
		return results
	}

	workers := b.opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := NewWorkerPool(min(workers, len(paths)))
	pool.Start()

	for i, path := range paths {
		results[i] = FileResult{Path: path, Name: filepath.Base(path)}
		if err := ctx.Err(); err != nil {
			results[i].fail(err)
			continue
		}
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				results[i].fail(err)
				return
			}
			b.scoreFile(ctx, &results[i])
		})
	}

	pool.Close()
	pool.Wait()

	stats := pool.GetStats()
	logger.WithFields(logrus.Fields{
		"scan_id":        observer.ScanIDFrom(ctx),
		"files":          len(paths),
		"workers":        stats.Workers,
		"completed_jobs": stats.CompletedJobs,
	}).Debug("Batch scoring finished")

	return results
}

func (b *BatchScorer) scoreFile(ctx context.Context, res *FileResult) {
	start := time.Now()
	data, err := b.readFile(res.Path)
	if err != nil {
		res.fail(err)
		res.ProcessingTime = time.Since(start)
		b.publishResult(ctx, res)
		return
	}
	b.scoreData(ctx, data, res, start)
}

// ScoreBytes scores a single in-memory image. name is used for reporting.
func (b *BatchScorer) ScoreBytes(ctx context.Context, data []byte, name string) FileResult {
	res := FileResult{Name: name}
	if err := b.config.Validate(); err != nil {
		res.fail(err)
		return res
	}
	if err := ctx.Err(); err != nil {
		res.fail(err)
		return res
	}
	b.scoreData(ctx, data, &res, time.Now())
	return res
}

func (b *BatchScorer) scoreData(ctx context.Context, data []byte, res *FileResult, start time.Time) {
	defer func() {
		res.ProcessingTime = time.Since(start)
		b.publishResult(ctx, res)
	}()

	decode := b.decoder.Decode
	if b.opts.RequireJPEG {
		decode = b.decoder.DecodeJPEG
	}

	img, err := decode(data)
	if err != nil {
		res.fail(err)
		return
	}

	score, err := sharpness.Score(img, b.config)
	if err != nil {
		res.fail(err)
		return
	}

	res.Width = img.Width
	res.Height = img.Height
	res.Score = score.Score
	res.Band = score.Band
	res.FullFrameVariance = score.FullFrameVariance
	res.CenterVariance = score.CenterVariance

	if b.opts.IncludeMetadata {
		md := decoder.ReadMetadata(data)
		if md != (decoder.Metadata{}) {
			res.Metadata = &md
		}
	}
}

func (b *BatchScorer) publishResult(ctx context.Context, res *FileResult) {
	if b.publisher == nil {
		return
	}

	event := observer.Event{
		Path:           res.Path,
		ProcessingTime: res.ProcessingTime,
		Success:        res.OK(),
	}
	if event.Path == "" {
		event.Path = res.Name
	}
	if res.OK() {
		event.EventType = observer.ImageScored
		event.Score = res.Score
		event.Band = string(res.Band)
	} else {
		event.EventType = observer.ImageFailed
		event.ErrorMessage = res.Error
	}
	b.publisher.NotifyObservers(ctx, event)
}
