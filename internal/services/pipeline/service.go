package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/models"
)

// ErrUnknownMediaType marks a submission whose media type has no pipeline.
// Nothing is written for such a run.
var ErrUnknownMediaType = errors.New("unknown media type")

// ErrQueueFull marks a submission rejected because the worker queue is at
// capacity
var ErrQueueFull = errors.New("analysis queue is full")

// Service routes media items to their analysis pipeline and runs them on
// a bounded worker pool. Stages within one run are sequential; runs for
// different media items proceed independently.
type Service struct {
	config   *common.Config
	storage  interfaces.StorageManager
	notifier interfaces.Notifier
	vision   interfaces.VisionProvider
	audio    interfaces.AudioProvider
	llm      interfaces.LLMService
	tools    interfaces.MediaToolchain
	logger   arbor.ILogger

	queue   chan *models.Media
	runs    map[string]*interfaces.RunStatus
	runsMu  sync.RWMutex
	workDir string

	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// NewService creates a new pipeline service. Vision, audio, and llm may be
// nil when the matching provider is not configured; runs needing them fail
// with a provider error.
func NewService(
	config *common.Config,
	storage interfaces.StorageManager,
	notifier interfaces.Notifier,
	vision interfaces.VisionProvider,
	audioProvider interfaces.AudioProvider,
	llmService interfaces.LLMService,
	tools interfaces.MediaToolchain,
	logger arbor.ILogger,
) *Service {
	queueSize := config.Pipeline.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Service{
		config:   config,
		storage:  storage,
		notifier: notifier,
		vision:   vision,
		audio:    audioProvider,
		llm:      llmService,
		tools:    tools,
		logger:   logger,
		queue:    make(chan *models.Media, queueSize),
		runs:     make(map[string]*interfaces.RunStatus),
		workDir:  filepath.Join(config.Upload.Dir, "work"),
		stopped:  make(chan struct{}),
	}
}

// Start launches the worker pool
func (s *Service) Start() {
	workers := s.config.Pipeline.Concurrency
	if workers <= 0 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		worker := i
		common.SafeGo(s.logger, fmt.Sprintf("pipeline-worker-%d", worker), func() {
			defer s.wg.Done()
			s.workerLoop(worker)
		})
	}

	s.logger.Info().Int("workers", workers).Msg("Pipeline worker pool started")
}

// Stop drains the pool. Queued runs that have not started are abandoned;
// their registry entries stay queued.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
	s.wg.Wait()
	s.logger.Info().Msg("Pipeline worker pool stopped")
}

func (s *Service) workerLoop(worker int) {
	for {
		select {
		case <-s.stopped:
			return
		case media := <-s.queue:
			if err := s.Run(context.Background(), media); err != nil {
				s.logger.Warn().
					Err(err).
					Int("worker", worker).
					Str("media_id", media.ID).
					Msg("Analysis run failed")
			}
		}
	}
}

// Submit enqueues an analysis run. The caller gets an immediate answer;
// the run itself is fire-and-forget.
func (s *Service) Submit(ctx context.Context, media *models.Media) error {
	if !media.MediaType.IsValid() {
		return fmt.Errorf("%w: %s", ErrUnknownMediaType, media.MediaType)
	}

	s.runsMu.Lock()
	s.runs[media.ID] = &interfaces.RunStatus{
		MediaID:  media.ID,
		State:    interfaces.RunStateQueued,
		QueuedAt: time.Now(),
	}
	s.runsMu.Unlock()

	select {
	case s.queue <- media:
		media.Status = models.MediaStatusProcessing
		if err := s.storage.MediaStorage().Store(ctx, media); err != nil {
			s.logger.Warn().Err(err).Str("media_id", media.ID).Msg("Failed to mark media processing")
		}
		return nil
	default:
		s.runsMu.Lock()
		delete(s.runs, media.ID)
		s.runsMu.Unlock()
		return ErrQueueFull
	}
}

// Status returns the run snapshot for a media item
func (s *Service) Status(mediaID string) (*interfaces.RunStatus, bool) {
	s.runsMu.RLock()
	defer s.runsMu.RUnlock()

	status, ok := s.runs[mediaID]
	if !ok {
		return nil, false
	}
	copied := *status
	return &copied, true
}

// ActiveRuns counts runs that are queued or currently executing
func (s *Service) ActiveRuns() int {
	s.runsMu.RLock()
	defer s.runsMu.RUnlock()

	active := 0
	for _, status := range s.runs {
		if status.State == interfaces.RunStateQueued || status.State == interfaces.RunStateRunning {
			active++
		}
	}
	return active
}

// EvictFinished drops finished registry entries older than ttl and removes
// their work directories. Returns the number of evicted entries.
func (s *Service) EvictFinished(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	evicted := 0

	s.runsMu.Lock()
	for id, status := range s.runs {
		done := status.State == interfaces.RunStateCompleted || status.State == interfaces.RunStateFailed
		if done && status.FinishedAt != nil && status.FinishedAt.Before(cutoff) {
			delete(s.runs, id)
			evicted++
			os.RemoveAll(s.runDir(id))
		}
	}
	s.runsMu.Unlock()

	return evicted
}

func (s *Service) runDir(mediaID string) string {
	return filepath.Join(s.workDir, mediaID)
}

// Run executes an analysis synchronously. Exactly one terminal event is
// published per run, and the terminal stage record is durably written
// before that event goes out.
func (s *Service) Run(ctx context.Context, media *models.Media) error {
	started := time.Now()
	s.setRun(media.ID, func(r *interfaces.RunStatus) {
		r.State = interfaces.RunStateRunning
		r.StartedAt = &started
	})

	media.Status = models.MediaStatusProcessing
	if err := s.storage.MediaStorage().Store(ctx, media); err != nil {
		return s.fail(ctx, media, fmt.Errorf("failed to mark media processing: %w", err))
	}

	reporter := &progressReporter{service: s, mediaID: media.ID}
	outcome, err := s.execute(ctx, media, reporter)
	if err != nil {
		return s.fail(ctx, media, err)
	}

	// Segments and terminal record commit only after the run succeeded;
	// a failed run leaves nothing behind but its error record
	reporter.report("save", 80, "Saving analysis results")
	if len(outcome.segments) > 0 {
		if err := s.storage.SegmentStorage().AppendBatch(ctx, outcome.segments); err != nil {
			return s.fail(ctx, media, fmt.Errorf("failed to save transcript segments: %w", err))
		}
	}

	reporter.report("summary", 90, "Generating summary")
	outcome.payload["summary"] = s.summarize(ctx, outcome.payload)

	record := &models.StageResult{
		MediaID: media.ID,
		Stage:   outcome.stage,
		Payload: outcome.payload,
	}
	if err := s.storage.ResultStorage().Append(ctx, record); err != nil {
		return s.fail(ctx, media, fmt.Errorf("failed to save analysis record: %w", err))
	}

	now := time.Now()
	media.Status = models.MediaStatusCompleted
	media.CompletedAt = &now
	if err := s.storage.MediaStorage().Store(ctx, media); err != nil {
		s.logger.Warn().Err(err).Str("media_id", media.ID).Msg("Failed to mark media completed")
	}

	s.setRun(media.ID, func(r *interfaces.RunStatus) {
		r.State = interfaces.RunStateCompleted
		r.Progress = 100
		r.FinishedAt = &now
	})

	// The record is durable by now, so a client reacting to this event
	// can immediately read it back
	reporter.report("done", 100, "Analysis complete")
	s.notifier.Publish(media.ID, models.NewAnalysisCompleteEvent(media.ID, outcome.payload))

	s.logger.Info().
		Str("media_id", media.ID).
		Str("stage", outcome.stage).
		Dur("elapsed", time.Since(started)).
		Msg("Analysis run completed")

	return nil
}

// runOutcome is the in-memory result of a pipeline execution before any
// durable write happens
type runOutcome struct {
	stage    string
	payload  map[string]interface{}
	segments []*models.TranscriptSegment
}

func (s *Service) execute(ctx context.Context, media *models.Media, reporter *progressReporter) (*runOutcome, error) {
	reporter.report("start", 0, "Starting analysis")

	switch media.MediaType {
	case models.MediaTypeImage:
		return s.analyzeImage(ctx, media, reporter)
	case models.MediaTypeAudio:
		return s.analyzeAudio(ctx, media, reporter)
	case models.MediaTypeVideo:
		return s.analyzeVideo(ctx, media, reporter)
	case models.MediaTypeText:
		return s.analyzeText(ctx, media, reporter)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMediaType, media.MediaType)
	}
}

// fail finishes a run on its error path: one "error" stage record, one
// error event, and the media record marked failed. An unknown media type
// writes no record at all.
func (s *Service) fail(ctx context.Context, media *models.Media, runErr error) error {
	s.logger.Error().Err(runErr).Str("media_id", media.ID).Msg("Analysis run failed")

	if !errors.Is(runErr, ErrUnknownMediaType) {
		// Roll back segments committed earlier in this run so the error
		// record is the only thing the run leaves behind
		if err := s.storage.SegmentStorage().DeleteByMedia(ctx, media.ID); err != nil {
			s.logger.Error().Err(err).Str("media_id", media.ID).Msg("Failed to roll back transcript segments")
		}

		record := &models.StageResult{
			MediaID: media.ID,
			Stage:   models.StageError,
			Payload: map[string]interface{}{"error": runErr.Error()},
		}
		if err := s.storage.ResultStorage().Append(ctx, record); err != nil {
			s.logger.Error().Err(err).Str("media_id", media.ID).Msg("Failed to save error record")
		}
	}

	now := time.Now()
	media.Status = models.MediaStatusFailed
	media.Error = runErr.Error()
	if err := s.storage.MediaStorage().Store(ctx, media); err != nil {
		s.logger.Warn().Err(err).Str("media_id", media.ID).Msg("Failed to mark media failed")
	}

	s.setRun(media.ID, func(r *interfaces.RunStatus) {
		r.State = interfaces.RunStateFailed
		r.Error = runErr.Error()
		r.FinishedAt = &now
	})

	s.notifier.Publish(media.ID, models.NewErrorEvent(runErr.Error()))

	return runErr
}

func (s *Service) setRun(mediaID string, update func(*interfaces.RunStatus)) {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	status, ok := s.runs[mediaID]
	if !ok {
		status = &interfaces.RunStatus{MediaID: mediaID, QueuedAt: time.Now()}
		s.runs[mediaID] = status
	}
	update(status)
}

// progressReporter publishes checkpoint events, clamping progress so it
// never goes backwards within one run
type progressReporter struct {
	service *Service
	mediaID string
	last    int
}

func (p *progressReporter) report(stage string, progress int, message string) {
	if progress < p.last {
		progress = p.last
	}
	p.last = progress

	p.service.setRun(p.mediaID, func(r *interfaces.RunStatus) {
		r.Stage = stage
		r.Progress = progress
	})

	p.service.notifier.Publish(p.mediaID, models.NewProgressEvent(stage, progress, message))
}
