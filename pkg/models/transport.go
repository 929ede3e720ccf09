package models

// ScanRequest asks for every JPEG in a folder to be scored
type ScanRequest struct {
	Folder        string   `json:"folder" binding:"required"`
	Threshold     *float64 `json:"threshold,omitempty"`
	Bands         []string `json:"bands,omitempty"`
	Sort          string   `json:"sort,omitempty"`
	IncludeFailed bool     `json:"include_failed,omitempty"`
	Fast          bool     `json:"fast,omitempty"`
}

// ScoreURLRequest scores an image downloaded over HTTP(S)
type ScoreURLRequest struct {
	URL       string   `json:"url" binding:"required,url"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// ScoreBlobRequest scores an image stored in Azure Blob Storage.
// Ref is "container/blob".
type ScoreBlobRequest struct {
	Ref       string   `json:"ref" binding:"required"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// MoveRequest names files to move into, or restore from, the review folder
type MoveRequest struct {
	Folder string   `json:"folder" binding:"required"`
	Files  []string `json:"files" binding:"required,min=1"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}
