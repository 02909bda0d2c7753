package models

// TranscriptSegment is one timed span of transcribed speech for an audio
// or video item
type TranscriptSegment struct {
	Seq     uint64  `json:"seq" badgerhold:"key"` // Insertion order, assigned by the store
	ID      string  `json:"id"`
	MediaID string  `json:"media_id" badgerhold:"index"`
	Index   int     `json:"index"`
	Start   float64 `json:"start"` // Seconds from start of media
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}
