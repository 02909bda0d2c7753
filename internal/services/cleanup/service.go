package cleanup

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
)

// Evictor drops finished registry entries older than a TTL
type Evictor interface {
	EvictFinished(ttl time.Duration) int
}

// Service periodically evicts finished pipeline runs, their work
// directories, and finished batch jobs so the in-memory registries
// stay bounded
type Service struct {
	config   *common.CleanupConfig
	evictors []Evictor
	cron     *cron.Cron
	logger   arbor.ILogger
}

// NewService creates a new cleanup service over the given registries
func NewService(config *common.CleanupConfig, logger arbor.ILogger, evictors ...Evictor) *Service {
	return &Service{
		config:   config,
		evictors: evictors,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Start schedules the cleanup job
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Cleanup service disabled")
		return nil
	}

	if err := common.ValidateCleanupSchedule(s.config.Schedule); err != nil {
		return err
	}

	ttl := common.ParseDurationOr(s.config.TTL, 2*time.Hour)

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		evicted := 0
		for _, evictor := range s.evictors {
			evicted += evictor.EvictFinished(ttl)
		}
		if evicted > 0 {
			s.logger.Info().Int("evicted", evicted).Msg("Evicted finished registry entries")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Str("ttl", ttl.String()).
		Msg("Cleanup service started")

	return nil
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Cleanup service stopped")
}
