package ffmpeg

import (
	"context"

	"github.com/ternarybob/mediascope/internal/interfaces"
)

// Toolchain implements the media toolchain with the ffmpeg and ffprobe
// binaries on PATH
type Toolchain struct{}

// NewToolchain creates the ffmpeg-backed toolchain
func NewToolchain() *Toolchain {
	return &Toolchain{}
}

func (t *Toolchain) Probe(ctx context.Context, path string) (*interfaces.VideoProbe, error) {
	result, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	probe := &interfaces.VideoProbe{
		Duration: result.Duration(),
		Format:   result.Format.FormatName,
		HasAudio: result.HasAudio(),
	}
	if stream := result.VideoStream(); stream != nil {
		probe.Width = stream.Width
		probe.Height = stream.Height
	}
	return probe, nil
}

func (t *Toolchain) ExtractAudio(ctx context.Context, videoPath, workDir string) (string, error) {
	return ExtractAudio(ctx, videoPath, workDir)
}

func (t *Toolchain) ExtractFrames(ctx context.Context, videoPath, framesDir string, fps float64) ([]string, error) {
	return ExtractFrames(ctx, videoPath, framesDir, fps)
}
