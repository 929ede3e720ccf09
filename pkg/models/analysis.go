package models

import "time"

// ScoreResult is the sharpness verdict for one image
type ScoreResult struct {
	Name              string         `json:"name"`
	Path              string         `json:"path,omitempty"`
	Width             int            `json:"width,omitempty"`
	Height            int            `json:"height,omitempty"`
	Score             float64        `json:"score"`
	Band              string         `json:"band,omitempty"`
	FullFrameVariance float64        `json:"full_frame_variance"`
	CenterVariance    float64        `json:"center_variance"`
	Threshold         float64        `json:"threshold"`
	Metadata          *ImageMetadata `json:"metadata,omitempty"`
	ProcessingTimeMS  float64        `json:"processing_time_ms"`
	Error             string         `json:"error,omitempty"`
}

// ImageMetadata holds EXIF fields useful when reviewing a cull
type ImageMetadata struct {
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	CameraMake  string     `json:"camera_make,omitempty"`
	CameraModel string     `json:"camera_model,omitempty"`
	Orientation int        `json:"orientation,omitempty"`
}

// ScanSummary counts a scan by band
type ScanSummary struct {
	Total      int     `json:"total"`
	Sharp      int     `json:"sharp"`
	Borderline int     `json:"borderline"`
	Blurry     int     `json:"blurry"`
	Failed     int     `json:"failed"`
	MeanScore  float64 `json:"mean_score"`
}

// ScanResponse is the result of scoring a folder. Summary covers every file
// scanned; Results is filtered and sorted as requested.
type ScanResponse struct {
	ID                string        `json:"id"`
	Folder            string        `json:"folder"`
	Threshold         float64       `json:"threshold"`
	Timestamp         time.Time     `json:"timestamp"`
	ProcessingTimeSec float64       `json:"processing_time_sec"`
	Summary           ScanSummary   `json:"summary"`
	Results           []ScoreResult `json:"results"`
}

// MoveResult reports one moved file
type MoveResult struct {
	Name        string `json:"name"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

// MoveResponse is the result of a move or restore
type MoveResponse struct {
	Folder       string       `json:"folder"`
	ReviewFolder string       `json:"review_folder"`
	Moved        int          `json:"moved"`
	Failed       int          `json:"failed"`
	Results      []MoveResult `json:"results"`
}
