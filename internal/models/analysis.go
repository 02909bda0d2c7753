package models

import "encoding/json"

// SummaryFallback is used when no provider-generated summary is available
const SummaryFallback = "Analysis completed. Ask questions to explore the content."

// Sentiment is a label plus confidence score from the audio provider
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FrameAnalysis holds the vision output for a single sampled video frame
type FrameAnalysis struct {
	Index     int      `json:"index"`
	Timestamp float64  `json:"timestamp"` // Seconds from start of video
	Caption   string   `json:"caption"`
	Objects   []string `json:"objects,omitempty"`
}

// ImageAnalysis is the payload of an image stage record
type ImageAnalysis struct {
	Caption     string   `json:"caption"`
	Objects     []string `json:"objects,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`
	AspectRatio float64  `json:"aspect_ratio,omitempty"`
	Summary     string   `json:"summary"`
	MediaType   string   `json:"media_type"`
	Filename    string   `json:"filename"`
}

// AudioAnalysis is the payload of an audio stage record
type AudioAnalysis struct {
	Transcript string     `json:"transcript"`
	Language   string     `json:"language,omitempty"`
	Sentiment  *Sentiment `json:"sentiment,omitempty"`
	WordCount  int        `json:"word_count"`
	Duration   float64    `json:"duration,omitempty"`
	Summary    string     `json:"summary"`
	MediaType  string     `json:"media_type"`
	Filename   string     `json:"filename"`
}

// VideoAnalysis is the payload of a video stage record.
// Audio fields stay empty when the embedded audio pass fails; frame
// analysis proceeds regardless.
type VideoAnalysis struct {
	Duration      float64         `json:"duration"`
	Width         int             `json:"width,omitempty"`
	Height        int             `json:"height,omitempty"`
	AspectRatio   float64         `json:"aspect_ratio,omitempty"`
	Format        string          `json:"format,omitempty"`
	Frames        []FrameAnalysis `json:"frames"`
	FrameCount    int             `json:"frame_count"`
	VisualSummary string          `json:"visual_summary"`
	Transcript    string          `json:"transcript,omitempty"`
	Language      string          `json:"language,omitempty"`
	Sentiment     *Sentiment      `json:"sentiment,omitempty"`
	Summary       string          `json:"summary"`
	MediaType     string          `json:"media_type"`
	Filename      string          `json:"filename"`
}

// TextAnalysis is the payload of a text stage record
type TextAnalysis struct {
	Transcript string `json:"transcript"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	Summary    string `json:"summary"`
	MediaType  string `json:"media_type"`
	Filename   string `json:"filename"`
}

// ToPayload converts a typed analysis struct into the generic payload map
// stored on a StageResult
func ToPayload(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}
