package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeResult represents the parsed output from an ffprobe inspection
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

// ProbeStream describes a single stream in the media container
type ProbeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

// ProbeFormat captures container-level metadata
type ProbeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Probe executes ffprobe against the given path and decodes the JSON output
func Probe(ctx context.Context, path string) (*ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	return &result, nil
}

// Duration returns the container duration in seconds, preferring the
// format-level value over per-stream durations
func (r *ProbeResult) Duration() float64 {
	if d, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64); err == nil && d > 0 {
		return d
	}
	for _, stream := range r.Streams {
		if d, err := strconv.ParseFloat(strings.TrimSpace(stream.Duration), 64); err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// VideoStream returns the first video stream, or nil when none exists
func (r *ProbeResult) VideoStream() *ProbeStream {
	for i, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return &r.Streams[i]
		}
	}
	return nil
}

// HasAudio reports whether the container carries at least one audio stream
func (r *ProbeResult) HasAudio() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return true
		}
	}
	return false
}
