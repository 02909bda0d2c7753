package models

import (
	"encoding/json"
	"time"
)

// Stage labels produced by the analysis pipelines. The "error" label marks
// a failed run; every other label carries analysis output.
const (
	StageVideo = "video"
	StageImage = "image"
	StageAudio = "audio"
	StageText  = "text"
	StageError = "error"
)

// StageResult is one append-only record of a pipeline stage outcome for a
// media item. Records are never updated in place; the latest record wins.
type StageResult struct {
	Seq       uint64                 `json:"seq" badgerhold:"key"` // Insertion order, assigned by the store
	ID        string                 `json:"id"`
	MediaID   string                 `json:"media_id" badgerhold:"index"`
	Stage     string                 `json:"stage"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// IsError reports whether this record marks a failed run
func (r *StageResult) IsError() bool {
	return r.Stage == StageError
}

// ToMap converts the record to a map for JSON responses
func (r *StageResult) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return result, nil
}
