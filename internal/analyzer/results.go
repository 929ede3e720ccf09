package analyzer

import (
	"fmt"
	"sort"

	"github.com/anime-shed/blur-culler/internal/sharpness"
)

// SortOrder selects how results are ordered for review
type SortOrder string

const (
	SortScoreAsc  SortOrder = "score_asc"
	SortScoreDesc SortOrder = "score_desc"
	SortName      SortOrder = "name"
)

// ParseSortOrder parses a sort order. Empty selects SortScoreAsc so the
// blurriest images come first.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return SortScoreAsc, nil
	case SortScoreAsc, SortScoreDesc, SortName:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Summarize counts results per band
func Summarize(results []FileResult) Summary {
	s := Summary{Total: len(results)}
	var sum float64
	for _, r := range results {
		if !r.OK() {
			s.Failed++
			continue
		}
		sum += r.Score
		switch r.Band {
		case sharpness.BandSharp:
			s.Sharp++
		case sharpness.BandBorderline:
			s.Borderline++
		case sharpness.BandBlurry:
			s.Blurry++
		}
	}
	if scored := s.Total - s.Failed; scored > 0 {
		s.MeanScore = sum / float64(scored)
	}
	return s
}

// FilterByBand keeps scored results in any of bands. Failed results are kept
// only when includeFailed is set. No bands keeps every scored result.
func FilterByBand(results []FileResult, bands []sharpness.Band, includeFailed bool) []FileResult {
	want := make(map[sharpness.Band]bool, len(bands))
	for _, b := range bands {
		want[b] = true
	}

	out := make([]FileResult, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			if includeFailed {
				out = append(out, r)
			}
			continue
		}
		if len(want) == 0 || want[r.Band] {
			out = append(out, r)
		}
	}
	return out
}

// SortResults orders results in place. Failed results always sort last.
func SortResults(results []FileResult, order SortOrder) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.OK() != b.OK() {
			return a.OK()
		}
		switch order {
		case SortScoreDesc:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		case SortName:
			// name order below
		default:
			if a.Score != b.Score {
				return a.Score < b.Score
			}
		}
		return a.Name < b.Name
	})
}

// Names returns the base names of results
func Names(results []FileResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}
