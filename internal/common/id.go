package common

import (
	"github.com/google/uuid"
)

// NewMediaID generates a unique media ID with the "media_" prefix
// Format: media_<uuid>
func NewMediaID() string {
	return "media_" + uuid.New().String()
}

// NewResultID generates a unique stage result ID with the "result_" prefix
func NewResultID() string {
	return "result_" + uuid.New().String()
}

// NewSegmentID generates a unique transcript segment ID with the "seg_" prefix
func NewSegmentID() string {
	return "seg_" + uuid.New().String()
}

// NewBatchID generates a unique batch ID with the "batch_" prefix
func NewBatchID() string {
	return "batch_" + uuid.New().String()
}
