package models

import (
	"encoding/json"
	"time"
)

// MediaType identifies the analysis pipeline a media item is routed to
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
	MediaTypeAudio MediaType = "audio"
	MediaTypeText  MediaType = "text"
)

// IsValid returns true for the four supported media types
func (t MediaType) IsValid() bool {
	switch t {
	case MediaTypeVideo, MediaTypeImage, MediaTypeAudio, MediaTypeText:
		return true
	}
	return false
}

// MediaStatus tracks an item through its lifecycle
type MediaStatus string

const (
	MediaStatusUploaded   MediaStatus = "uploaded"
	MediaStatusProcessing MediaStatus = "processing"
	MediaStatusCompleted  MediaStatus = "completed"
	MediaStatusFailed     MediaStatus = "failed"
)

// Media represents an uploaded media item and its lifecycle state
type Media struct {
	ID          string      `json:"id" badgerhold:"key"`
	Filename    string      `json:"filename" validate:"required"`
	MediaType   MediaType   `json:"media_type" validate:"required"`
	ContentType string      `json:"content_type,omitempty"`
	SizeBytes   int64       `json:"size_bytes"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	Duration    float64     `json:"duration,omitempty"`
	StoragePath string      `json:"storage_path,omitempty"`
	Status      MediaStatus `json:"status"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// ToMap converts the media item to a map for JSON responses
func (m *Media) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return result, nil
}
