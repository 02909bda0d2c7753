package media

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// Service owns the media item lifecycle: upload validation, file storage,
// and cascading deletion
type Service struct {
	config   *common.UploadConfig
	storage  interfaces.StorageManager
	tools    interfaces.MediaToolchain
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a new media service. The toolchain may be nil;
// upload-time duration probing is then skipped.
func NewService(config *common.UploadConfig, storage interfaces.StorageManager, tools interfaces.MediaToolchain, logger arbor.ILogger) interfaces.MediaService {
	return &Service{
		config:   config,
		storage:  storage,
		tools:    tools,
		validate: validator.New(),
		logger:   logger,
	}
}

// Upload validates and stores an uploaded file, classifies its media type,
// and persists the media record
func (s *Service) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*models.Media, error) {
	maxBytes := int64(s.config.MaxFileSizeMB) * 1024 * 1024
	if maxBytes > 0 && size > maxBytes {
		return nil, fmt.Errorf("file exceeds maximum size of %dMB", s.config.MaxFileSizeMB)
	}

	filename = SanitizeFilename(filename)
	mediaType, err := ClassifyMediaType(filename, contentType)
	if err != nil {
		return nil, err
	}

	media := &models.Media{
		ID:          common.NewMediaID(),
		Filename:    filename,
		MediaType:   mediaType,
		ContentType: contentType,
		Status:      models.MediaStatusUploaded,
	}

	if err := s.validate.Struct(media); err != nil {
		return nil, fmt.Errorf("invalid media record: %w", err)
	}

	dir := filepath.Join(s.config.Dir, media.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	media.StoragePath = filepath.Join(dir, filename)

	written, err := s.writeFile(media.StoragePath, r, maxBytes)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	if written == 0 {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("file is empty")
	}
	media.SizeBytes = written

	s.probeMetadata(ctx, media)

	if err := s.storage.MediaStorage().Store(ctx, media); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to persist media record: %w", err)
	}

	s.logger.Info().
		Str("media_id", media.ID).
		Str("filename", filename).
		Str("media_type", string(mediaType)).
		Int("size_kb", int(written/1024)).
		Msg("Media uploaded")

	return media, nil
}

// probeMetadata fills intrinsic metadata on the record at upload time:
// image dimensions, audio duration, video dimensions and duration.
// Probe failures are not fatal; the analysis run derives them again.
func (s *Service) probeMetadata(ctx context.Context, media *models.Media) {
	switch media.MediaType {
	case models.MediaTypeImage:
		f, err := os.Open(media.StoragePath)
		if err != nil {
			return
		}
		defer f.Close()
		config, _, err := image.DecodeConfig(f)
		if err != nil {
			s.logger.Debug().Err(err).Str("media_id", media.ID).Msg("Image dimension probe failed")
			return
		}
		media.Width = config.Width
		media.Height = config.Height

	case models.MediaTypeAudio, models.MediaTypeVideo:
		if s.tools == nil {
			return
		}
		probe, err := s.tools.Probe(ctx, media.StoragePath)
		if err != nil {
			s.logger.Debug().Err(err).Str("media_id", media.ID).Msg("Container probe failed")
			return
		}
		media.Duration = probe.Duration
		media.Width = probe.Width
		media.Height = probe.Height
	}
}

// writeFile streams the upload to disk, enforcing the size cap even when
// the declared size was wrong
func (s *Service) writeFile(path string, r io.Reader, maxBytes int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if maxBytes > 0 && written > maxBytes {
		return 0, fmt.Errorf("file exceeds maximum size of %dMB", s.config.MaxFileSizeMB)
	}
	return written, nil
}

// Get retrieves a media record by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Media, error) {
	return s.storage.MediaStorage().Get(ctx, id)
}

// List returns media records, newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Media, error) {
	return s.storage.MediaStorage().List(ctx, limit, offset)
}

// Delete removes the media record, its stored file, and every dependent
// record
func (s *Service) Delete(ctx context.Context, id string) error {
	media, err := s.storage.MediaStorage().Get(ctx, id)
	if err != nil {
		return err
	}
	if media == nil {
		return fmt.Errorf("media %s not found", id)
	}

	if err := s.storage.ResultStorage().DeleteByMedia(ctx, id); err != nil {
		return err
	}
	if err := s.storage.SegmentStorage().DeleteByMedia(ctx, id); err != nil {
		return err
	}
	if err := s.storage.ChatStorage().DeleteByMedia(ctx, id); err != nil {
		return err
	}
	if err := s.storage.MediaStorage().Delete(ctx, id); err != nil {
		return err
	}

	if media.StoragePath != "" {
		if err := os.RemoveAll(filepath.Dir(media.StoragePath)); err != nil {
			s.logger.Warn().Err(err).Str("media_id", id).Msg("Failed to remove uploaded file")
		}
	}

	s.logger.Info().Str("media_id", id).Msg("Media deleted")
	return nil
}
