package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/blur-culler/internal/analyzer"
	"github.com/anime-shed/blur-culler/internal/logger"
	"github.com/anime-shed/blur-culler/internal/mover"
	"github.com/anime-shed/blur-culler/internal/scanner"
	"github.com/anime-shed/blur-culler/internal/sharpness"
)

type options struct {
	folder            string
	threshold         float64
	workers           int
	maxDim            int
	asJSON            bool
	sortBy            string
	move              bool
	includeBorderline bool
	reviewDir         string
	verbose           bool
}

// report is the -json output
type report struct {
	Folder    string                `json:"folder"`
	Threshold float64               `json:"threshold"`
	Summary   analyzer.Summary      `json:"summary"`
	Results   []analyzer.FileResult `json:"results"`
	Moved     []mover.MoveResult    `json:"moved,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "cull: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("cull", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.folder, "folder", "", "folder of JPEGs to score (or pass it as the first argument)")
	fs.Float64Var(&o.threshold, "threshold", sharpness.DefaultThreshold, "blur threshold; scores below 0.8x are blurry, at or above 1.2x sharp")
	fs.IntVar(&o.workers, "workers", 0, "decode workers, 0=number of CPUs")
	fs.IntVar(&o.maxDim, "max-dim", 0, "downscale images whose long side exceeds this before scoring, 0=off")
	fs.BoolVar(&o.asJSON, "json", false, "print JSON instead of a table")
	fs.StringVar(&o.sortBy, "sort", string(analyzer.SortScoreAsc), "result order: score_asc|score_desc|name")
	fs.BoolVar(&o.move, "move", false, "move blurry images into the review folder")
	fs.BoolVar(&o.includeBorderline, "borderline", false, "with -move, move borderline images too")
	fs.StringVar(&o.reviewDir, "review-dir", mover.DefaultReviewDirName, "review subfolder name")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.folder == "" && fs.NArg() > 0 {
		o.folder = fs.Arg(0)
	}
	if o.folder == "" {
		fs.Usage()
		return o, errors.New("a folder is required")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger.SetOutput(stderr)
	if o.verbose {
		logger.Logger.SetLevel(logrus.DebugLevel)
	}

	opts := analyzer.DefaultOptions().
		WithThreshold(o.threshold).
		WithWorkers(o.workers).
		WithMaxDimension(o.maxDim)
	if err := opts.ScoringConfig().Validate(); err != nil {
		return err
	}
	order, err := analyzer.ParseSortOrder(o.sortBy)
	if err != nil {
		return err
	}
	if err := mover.ValidateName(o.reviewDir); err != nil {
		return fmt.Errorf("invalid review folder: %w", err)
	}

	folder, err := filepath.Abs(o.folder)
	if err != nil {
		return err
	}
	paths, err := scanner.ListJPEGs(folder, o.reviewDir)
	if err != nil {
		return err
	}

	results := analyzer.NewBatchScorer(opts, nil).ScoreFiles(ctx, paths)
	if err := ctx.Err(); err != nil {
		return err
	}
	summary := analyzer.Summarize(results)
	analyzer.SortResults(results, order)

	rep := report{Folder: folder, Threshold: o.threshold, Summary: summary, Results: results}

	if o.move {
		names := culled(results, o.includeBorderline)
		if len(names) > 0 {
			moved, err := mover.New(o.reviewDir, 0).MoveToReview(ctx, folder, names)
			if err != nil && moved == nil {
				return fmt.Errorf("move failed: %w", err)
			}
			rep.Moved = moved
		}
	}

	if o.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return writeTable(stdout, rep, o.reviewDir)
}

// culled returns the names of scored images selected for review
func culled(results []analyzer.FileResult, includeBorderline bool) []string {
	var names []string
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if r.Band == sharpness.BandBlurry || (includeBorderline && r.Band == sharpness.BandBorderline) {
			names = append(names, r.Name)
		}
	}
	return names
}

func writeTable(w io.Writer, rep report, reviewDir string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCORE\tBAND\tSIZE")
	for _, r := range rep.Results {
		if !r.OK() {
			fmt.Fprintf(tw, "%s\t-\terror\t%s\n", r.Name, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%dx%d\n", r.Name, r.Score, r.Band, r.Width, r.Height)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := rep.Summary
	fmt.Fprintf(w, "\n%d images: %d sharp, %d borderline, %d blurry, %d failed (threshold %g)\n",
		s.Total, s.Sharp, s.Borderline, s.Blurry, s.Failed, rep.Threshold)

	if len(rep.Moved) > 0 {
		var failed []string
		ok := 0
		for _, m := range rep.Moved {
			if m.OK() {
				ok++
			} else {
				failed = append(failed, m.Name+": "+m.Error)
			}
		}
		fmt.Fprintf(w, "moved %d to %s\n", ok, filepath.Join(rep.Folder, reviewDir))
		if len(failed) > 0 {
			fmt.Fprintf(w, "could not move:\n  %s\n", strings.Join(failed, "\n  "))
		}
	}
	return nil
}
