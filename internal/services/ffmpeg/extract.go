package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ExtractFrames samples frames from a video at the given rate into workDir
// as sequentially numbered JPEGs. Returns the frame paths in timestamp
// order.
func ExtractFrames(ctx context.Context, videoPath, workDir string, fps float64) ([]string, error) {
	if fps <= 0 {
		return nil, errors.New("ffmpeg: frame rate must be positive")
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("ffmpeg: create frame dir: %w", err)
	}

	pattern := filepath.Join(workDir, "frame_%04d.jpg")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%g", fps),
		"-q:v", "2",
		"-y", pattern)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg extract frames: %w: %s", err, strings.TrimSpace(string(output)))
	}

	matches, err := filepath.Glob(filepath.Join(workDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: list frames: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ExtractAudio strips the audio track into a mono 16 kHz WAV suitable for
// transcription. Fails when the container has no audio stream.
func ExtractAudio(ctx context.Context, videoPath, workDir string) (string, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("ffmpeg: create audio dir: %w", err)
	}

	audioPath := filepath.Join(workDir, "audio.wav")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		"-y", audioPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return audioPath, nil
}

// Available reports whether the ffmpeg and ffprobe binaries are on PATH
func Available() bool {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return false
	}
	return true
}
