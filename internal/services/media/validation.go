package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ternarybob/mediascope/internal/models"
)

// extensionTypes maps file extensions to the pipeline that handles them
var extensionTypes = map[string]models.MediaType{
	".jpg":  models.MediaTypeImage,
	".jpeg": models.MediaTypeImage,
	".png":  models.MediaTypeImage,
	".gif":  models.MediaTypeImage,
	".webp": models.MediaTypeImage,
	".bmp":  models.MediaTypeImage,

	".mp3":  models.MediaTypeAudio,
	".wav":  models.MediaTypeAudio,
	".m4a":  models.MediaTypeAudio,
	".flac": models.MediaTypeAudio,
	".ogg":  models.MediaTypeAudio,

	".mp4":  models.MediaTypeVideo,
	".mov":  models.MediaTypeVideo,
	".avi":  models.MediaTypeVideo,
	".mkv":  models.MediaTypeVideo,
	".webm": models.MediaTypeVideo,

	".txt": models.MediaTypeText,
	".md":  models.MediaTypeText,
	".rtf": models.MediaTypeText,
}

// ClassifyMediaType resolves the media type from the filename extension,
// falling back to the declared content type's major part
func ClassifyMediaType(filename, contentType string) (models.MediaType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if mediaType, ok := extensionTypes[ext]; ok {
		return mediaType, nil
	}

	major, _, _ := strings.Cut(contentType, "/")
	switch strings.ToLower(strings.TrimSpace(major)) {
	case "image":
		return models.MediaTypeImage, nil
	case "audio":
		return models.MediaTypeAudio, nil
	case "video":
		return models.MediaTypeVideo, nil
	case "text":
		return models.MediaTypeText, nil
	}

	return "", fmt.Errorf("unsupported file type: %s", filename)
}

// SanitizeFilename strips path components and characters that could
// escape the upload directory
func SanitizeFilename(filename string) string {
	name := filepath.Base(filepath.Clean(filename))
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	return name
}
