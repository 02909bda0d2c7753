package models

import "time"

// ChatMessage is one question/answer exchange about a media item
type ChatMessage struct {
	Seq       uint64    `json:"seq" badgerhold:"key"`
	ID        string    `json:"id"`
	MediaID   string    `json:"media_id" badgerhold:"index"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AskRequest is the request body for a question about a media item
type AskRequest struct {
	MediaID  string `json:"media_id" validate:"required"`
	Question string `json:"question" validate:"required"`
}

// AskResponse is the answer returned for a question
type AskResponse struct {
	MediaID  string   `json:"media_id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Provider string   `json:"provider,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}
