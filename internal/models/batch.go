package models

import "time"

// Batch statuses. A batch is processing until every member has
// finished, failed only when every member failed.
const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
)

// Per-file statuses at upload time. Once a member's run starts, its
// status reflects the live run state instead.
const (
	BatchFileQueued = "queued"
	BatchFileFailed = "failed"
)

// BatchFile is one file's outcome within a batch upload
type BatchFile struct {
	MediaID  string `json:"media_id,omitempty"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Batch groups media items uploaded in one request and tracks their
// analysis as a unit
type Batch struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	TotalFiles int         `json:"total_files"`
	Files      []BatchFile `json:"files"`
	CreatedAt  time.Time   `json:"created_at"`
}
