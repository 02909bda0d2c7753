package interfaces

import "context"

// VideoProbe is the container metadata used by the video pipeline and
// the upload-time probe
type VideoProbe struct {
	Duration float64
	Format   string
	Width    int
	Height   int
	HasAudio bool
}

// MediaToolchain probes media containers and extracts audio tracks and
// sampled frames. The production implementation shells out to the
// ffmpeg and ffprobe binaries.
type MediaToolchain interface {
	Probe(ctx context.Context, path string) (*VideoProbe, error)

	// ExtractAudio writes the audio track of a video as WAV into workDir
	// and returns its path
	ExtractAudio(ctx context.Context, videoPath, workDir string) (string, error)

	// ExtractFrames samples frames at the given rate into framesDir and
	// returns the frame paths in timestamp order
	ExtractFrames(ctx context.Context, videoPath, framesDir string, fps float64) ([]string, error)
}
