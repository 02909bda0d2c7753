package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/mediascope/internal/models"
)

// renderMarkdown builds the Markdown report for a media item from its
// latest analysis, transcript segments, and chat history
func renderMarkdown(media *models.Media, latest *models.StageResult, segments []*models.TranscriptSegment, chats []*models.ChatMessage) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report: %s\n\n", media.Filename)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Media type | %s |\n", media.MediaType)
	fmt.Fprintf(&b, "| Status | %s |\n", media.Status)
	fmt.Fprintf(&b, "| Uploaded | %s |\n", media.CreatedAt.Format("2006-01-02 15:04:05"))
	if media.SizeBytes > 0 {
		fmt.Fprintf(&b, "| Size | %.1f KB |\n", float64(media.SizeBytes)/1024)
	}
	b.WriteString("\n")

	if latest == nil {
		b.WriteString("No analysis available yet.\n")
		return []byte(b.String())
	}

	if summary, ok := latest.Payload["summary"].(string); ok && summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	writePayloadSection(&b, latest.Payload)

	if len(segments) > 0 {
		b.WriteString("## Transcript Segments\n\n")
		b.WriteString("| Start | End | Text |\n|---|---|---|\n")
		for _, segment := range segments {
			fmt.Fprintf(&b, "| %.1fs | %.1fs | %s |\n", segment.Start, segment.End, escapeCell(segment.Text))
		}
		b.WriteString("\n")
	}

	if len(chats) > 0 {
		b.WriteString("## Questions & Answers\n\n")
		for _, chat := range chats {
			fmt.Fprintf(&b, "**Q:** %s\n\n**A:** %s\n\n", chat.Question, chat.Answer)
		}
	}

	return []byte(b.String())
}

// payloadSkipKeys are rendered elsewhere in the report or add no value
var payloadSkipKeys = map[string]struct{}{
	"summary":    {},
	"media_type": {},
	"filename":   {},
	"frames":     {},
	"segments":   {},
}

// writePayloadSection renders the scalar analysis fields as a details
// table, keys sorted for stable output
func writePayloadSection(b *strings.Builder, payload map[string]interface{}) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		if _, skip := payloadSkipKeys[key]; skip {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	b.WriteString("## Analysis Details\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, key := range keys {
		fmt.Fprintf(b, "| %s | %s |\n", key, escapeCell(formatValue(payload[key])))
	}
	b.WriteString("\n")
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+": "+formatValue(val[key]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// escapeCell keeps free text from breaking table rows
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
