package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

const promptHeader = `You are a media analysis assistant. Answer questions about the analyzed media item using only the analysis context below. If the context does not contain the answer, say so rather than guessing.

Analysis context:
`

// transcriptExcerptLimit bounds how much transcript goes into the prompt
const transcriptExcerptLimit = 500

// buildSystemPrompt serializes the grounding context into the system
// prompt, with long transcripts truncated to an excerpt. An empty context
// still produces a valid prompt; the model is told nothing has been
// analyzed yet.
func buildSystemPrompt(grounding map[string]interface{}) (string, error) {
	condensed := make(map[string]interface{}, len(grounding))
	for k, v := range grounding {
		condensed[k] = v
	}
	if transcript, ok := condensed["transcript"].(string); ok && len(transcript) > transcriptExcerptLimit {
		condensed["transcript"] = transcript[:transcriptExcerptLimit] + "..."
	}

	data, err := json.MarshalIndent(condensed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize context: %w", err)
	}
	return promptHeader + string(data), nil
}

// contextSources names which parts of the analysis can ground an answer
func contextSources(grounding map[string]interface{}) []string {
	var sources []string
	if transcript, ok := grounding["transcript"].(string); ok && transcript != "" {
		sources = append(sources, "transcript")
	}
	if _, ok := grounding["frames"]; ok {
		sources = append(sources, "frames")
	}
	if caption, ok := grounding["caption"].(string); ok && caption != "" {
		sources = append(sources, "image_caption")
	}
	return sources
}

// fallbackAnswer composes a facts-only answer when no LLM is reachable
func fallbackAnswer(grounding map[string]interface{}) string {
	if len(grounding) == 0 {
		return "This media item has not been analyzed yet."
	}

	var facts []string
	if caption, ok := grounding["caption"].(string); ok && caption != "" {
		facts = append(facts, "The image shows: "+caption+".")
	}
	if summary, ok := grounding["visual_summary"].(string); ok && summary != "" {
		facts = append(facts, "Visually: "+summary)
	}
	if transcript, ok := grounding["transcript"].(string); ok && transcript != "" {
		excerpt := transcript
		if len(excerpt) > transcriptExcerptLimit {
			excerpt = excerpt[:transcriptExcerptLimit] + "..."
		}
		facts = append(facts, "Transcript: \""+excerpt+"\"")
	}
	if sentiment, ok := grounding["sentiment"].(map[string]interface{}); ok {
		if label, ok := sentiment["label"].(string); ok && label != "" {
			facts = append(facts, "The overall sentiment is "+label+".")
		}
	}

	if len(facts) == 0 {
		return "The analysis is available but I cannot elaborate on it right now."
	}
	return strings.Join(facts, " ")
}
