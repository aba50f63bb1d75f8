package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
	"github.com/noah-isme/sma-adp-scoring/pkg/jobs"
)

const (
	recalculationJobType = "scheme_recalculation"
	// finished jobs stay queryable this long before they are evicted
	recalcStatusRetention = time.Hour
)

// Recalculation job states.
const (
	RecalcQueued    = "queued"
	RecalcRunning   = "running"
	RecalcCompleted = "completed"
	RecalcFailed    = "failed"
)

type schemeRecalculator interface {
	RecalculateScheme(ctx context.Context, schoolID, schemeID string) (updated, invalid int, err error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type recalculationPayload struct {
	SchoolID string
	SchemeID string
}

// RecalculationService schedules explicit re-runs of the engine over a scheme's stored
// scores. Configuration edits never trigger it on their own.
type RecalculationService struct {
	recalculator schemeRecalculator
	queue        jobEnqueuer
	metrics      *MetricsService
	logger       *zap.Logger

	mu       sync.RWMutex
	statuses map[string]*dto.RecalculationStatus
	finished map[string]time.Time
	now      func() time.Time
}

// NewRecalculationService constructs the service. Attach a queue with SetQueue before
// enqueueing jobs.
func NewRecalculationService(recalculator schemeRecalculator, metrics *MetricsService, logger *zap.Logger) *RecalculationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalculationService{
		recalculator: recalculator,
		metrics:      metrics,
		logger:       logger,
		statuses:     make(map[string]*dto.RecalculationStatus),
		finished:     make(map[string]time.Time),
		now:          time.Now,
	}
}

// SetQueue attaches the job queue feeding Handle.
func (s *RecalculationService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Enqueue schedules a recalculation of the scheme and returns its tracking status.
func (s *RecalculationService) Enqueue(ctx context.Context, schoolID, schemeID string) (*dto.RecalculationStatus, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrQueueUnavailable, "recalculation queue not configured")
	}
	jobID := uuid.NewString()
	status := &dto.RecalculationStatus{JobID: jobID, SchemeID: schemeID, State: RecalcQueued}
	s.mu.Lock()
	s.evictFinishedLocked()
	s.statuses[jobID] = status
	s.mu.Unlock()

	job := jobs.Job{
		ID:      jobID,
		Type:    recalculationJobType,
		Key:     schoolID + ":" + schemeID,
		Payload: recalculationPayload{SchoolID: schoolID, SchemeID: schemeID},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.mu.Lock()
		delete(s.statuses, jobID)
		s.mu.Unlock()
		if errors.Is(err, jobs.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "recalculation already in progress for scheme")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrQueueUnavailable.Code, appErrors.ErrQueueUnavailable.Status, "failed to enqueue recalculation")
	}
	s.logger.Info("recalculation queued", zap.String("job_id", jobID), zap.String("scheme_id", schemeID))
	snapshot := *status
	return &snapshot, nil
}

// Status returns the tracked state of a job.
func (s *RecalculationService) Status(jobID string) (*dto.RecalculationStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[jobID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "recalculation job not found")
	}
	snapshot := *status
	return &snapshot, nil
}

// Handle is the queue handler executing recalculation jobs.
func (s *RecalculationService) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(recalculationPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	s.update(job.ID, func(st *dto.RecalculationStatus) { st.State = RecalcRunning })

	updated, invalid, err := s.recalculator.RecalculateScheme(ctx, payload.SchoolID, payload.SchemeID)
	if err != nil {
		// stays running while the queue retries; GiveUp marks it failed
		s.update(job.ID, func(st *dto.RecalculationStatus) { st.Error = err.Error() })
		return err
	}
	s.finish(job.ID, func(st *dto.RecalculationStatus) {
		st.State = RecalcCompleted
		st.Updated = updated
		st.Invalid = invalid
		st.Error = ""
	})
	s.metrics.ObserveRecalculation(RecalcCompleted)
	s.logger.Info("recalculation completed",
		zap.String("job_id", job.ID),
		zap.String("scheme_id", payload.SchemeID),
		zap.Int("updated", updated),
		zap.Int("invalid", invalid),
	)
	return nil
}

// GiveUp records a job that exhausted its retries. Wire it as the queue's OnGiveUp hook.
func (s *RecalculationService) GiveUp(job jobs.Job, err error) {
	s.finish(job.ID, func(st *dto.RecalculationStatus) {
		st.State = RecalcFailed
		st.Error = err.Error()
	})
	s.metrics.ObserveRecalculation(RecalcFailed)
	s.logger.Error("recalculation abandoned", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
}

func (s *RecalculationService) update(jobID string, fn func(*dto.RecalculationStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.statuses[jobID]; ok {
		fn(status)
	}
}

func (s *RecalculationService) finish(jobID string, fn func(*dto.RecalculationStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.statuses[jobID]; ok {
		fn(status)
		s.finished[jobID] = s.now()
	}
}

func (s *RecalculationService) evictFinishedLocked() {
	cutoff := s.now().Add(-recalcStatusRetention)
	for jobID, at := range s.finished {
		if at.Before(cutoff) {
			delete(s.finished, jobID)
			delete(s.statuses, jobID)
		}
	}
}
