package models

// Event type discriminators on the WebSocket wire
const (
	EventTypeProgress         = "progress"
	EventTypeAnalysisComplete = "analysis_complete"
	EventTypeError            = "error"
)

// Event is any message delivered to subscribers of a media item.
// Exactly one terminal event (analysis_complete or error) is published
// per analysis run.
type Event interface {
	EventType() string
	Terminal() bool
}

// ProgressEvent reports pipeline progress at a named stage
type ProgressEvent struct {
	Type     string `json:"type"`
	Stage    string `json:"stage"`
	Progress int    `json:"progress"` // 0-100
	Message  string `json:"message"`
}

func NewProgressEvent(stage string, progress int, message string) *ProgressEvent {
	return &ProgressEvent{
		Type:     EventTypeProgress,
		Stage:    stage,
		Progress: progress,
		Message:  message,
	}
}

func (e *ProgressEvent) EventType() string { return e.Type }
func (e *ProgressEvent) Terminal() bool    { return false }

// AnalysisCompleteEvent carries the final analysis payload for a media item
type AnalysisCompleteEvent struct {
	Type     string                 `json:"type"`
	MediaID  string                 `json:"media_id"`
	Analysis map[string]interface{} `json:"analysis"`
}

func NewAnalysisCompleteEvent(mediaID string, analysis map[string]interface{}) *AnalysisCompleteEvent {
	return &AnalysisCompleteEvent{
		Type:     EventTypeAnalysisComplete,
		MediaID:  mediaID,
		Analysis: analysis,
	}
}

func (e *AnalysisCompleteEvent) EventType() string { return e.Type }
func (e *AnalysisCompleteEvent) Terminal() bool    { return true }

// ErrorEvent reports a failed analysis run
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewErrorEvent(message string) *ErrorEvent {
	return &ErrorEvent{
		Type:  EventTypeError,
		Error: message,
	}
}

func (e *ErrorEvent) EventType() string { return e.Type }
func (e *ErrorEvent) Terminal() bool    { return true }
