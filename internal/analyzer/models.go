package analyzer

import (
	"time"

	"github.com/anime-shed/blur-culler/internal/decoder"
	"github.com/anime-shed/blur-culler/internal/sharpness"
)

// FileResult is the outcome of scoring one image. Failed images keep their
// place in a batch with Err set.
type FileResult struct {
	Path              string            `json:"path"`
	Name              string            `json:"name"`
	Width             int               `json:"width,omitempty"`
	Height            int               `json:"height,omitempty"`
	Score             float64           `json:"score"`
	Band              sharpness.Band    `json:"band,omitempty"`
	FullFrameVariance float64           `json:"full_frame_variance"`
	CenterVariance    float64           `json:"center_variance"`
	Metadata          *decoder.Metadata `json:"metadata,omitempty"`
	ProcessingTime    time.Duration     `json:"processing_time"`
	Error             string            `json:"error,omitempty"`

	Err error `json:"-"`
}

// OK reports whether the image was scored
func (r FileResult) OK() bool {
	return r.Err == nil
}

func (r *FileResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Summary counts a batch by band
type Summary struct {
	Total      int     `json:"total"`
	Sharp      int     `json:"sharp"`
	Borderline int     `json:"borderline"`
	Blurry     int     `json:"blurry"`
	Failed     int     `json:"failed"`
	MeanScore  float64 `json:"mean_score"`
}
