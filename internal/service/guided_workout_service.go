package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/repflow/internal/carousel"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/session"
	"github.com/mansoorceksport/repflow/internal/telemetry"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidStartRequest = errors.New("workout_id or exercise_series is required")
	ErrServiceClosed       = errors.New("guided workout service is shutting down")
)

const (
	tracerName          = "guided-workout"
	catalogFetchLimit   = 8
	catalogLoadTimeout  = 15 * time.Second
	snapshotSaveTimeout = 3 * time.Second
	persistQueueSize    = 256
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GuidedConfig tunes the sessions the service runs.
type GuidedConfig struct {
	AutoAdvanceDelay   time.Duration
	DefaultRestSeconds int
	SnapshotTTL        time.Duration
}

// StartRequest starts a session from a stored workout (WorkoutID) or from an
// inline exercise series.
type StartRequest struct {
	WorkoutID      string                  `json:"workout_id"`
	Name           string                  `json:"name"`
	ExerciseSeries []*domain.ExerciseEntry `json:"exercise_series"`
}

// StartResult is returned by Start.
type StartResult struct {
	SessionID string `json:"session_id"`
	session.Result
}

type sessionEntry struct {
	sess     *session.GuidedSession
	lastUsed time.Time
}

// GuidedWorkoutService runs guided workout sessions in memory and keeps a
// resumable snapshot of each in the snapshot store.
type GuidedWorkoutService struct {
	workoutRepo  domain.WorkoutRepository
	exerciseRepo domain.ExerciseRepository
	logRepo      domain.WorkoutLogRepository
	snapshots    domain.SnapshotStore
	metrics      *telemetry.Metrics
	cfg          GuidedConfig
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	closed   bool

	// persistMu orders snapshot writes against Finish/Discard deleting them.
	persistMu sync.Mutex
	persist   chan *domain.SessionSnapshot

	bgCtx    context.Context
	bgCancel context.CancelFunc
	loaders  sync.WaitGroup
	workers  sync.WaitGroup
}

// NewGuidedWorkoutService creates the service and starts its snapshot writer.
// Call Close to stop it.
func NewGuidedWorkoutService(
	workoutRepo domain.WorkoutRepository,
	exerciseRepo domain.ExerciseRepository,
	logRepo domain.WorkoutLogRepository,
	snapshots domain.SnapshotStore,
	metrics *telemetry.Metrics,
	cfg GuidedConfig,
) *GuidedWorkoutService {
	if cfg.DefaultRestSeconds <= 0 {
		cfg.DefaultRestSeconds = domain.DefaultRestSeconds
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 3 * time.Hour
	}
	if metrics == nil {
		metrics, _ = telemetry.NewMetrics(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &GuidedWorkoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		logRepo:      logRepo,
		snapshots:    snapshots,
		metrics:      metrics,
		cfg:          cfg,
		now:          time.Now,
		sessions:     make(map[string]*sessionEntry),
		persist:      make(chan *domain.SessionSnapshot, persistQueueSize),
		bgCtx:        ctx,
		bgCancel:     cancel,
	}

	s.workers.Add(1)
	go s.persistLoop()
	return s
}

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Start begins a guided session. The exercise catalog loads in the
// background; until it arrives names render as loading and validation uses
// weight rules.
func (s *GuidedWorkoutService) Start(ctx context.Context, athleteID string, req StartRequest) (*StartResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "guided.Start")
	defer span.End()

	workout, err := s.resolveWorkout(ctx, athleteID, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	id := generateULID()
	span.SetAttributes(attribute.String("session.id", id))
	sess, err := s.launch(session.Params{
		ID:        id,
		AthleteID: athleteID,
		Workout:   workout,
		Catalog:   domain.LoadingCatalog(),
		StartedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	snap, err := sess.Snapshot(ctx)
	if err == nil {
		err = s.snapshots.SaveSnapshot(ctx, snap, s.cfg.SnapshotTTL)
	}
	if err != nil {
		log.WithError(err).WithField("session_id", id).Warn("failed to save initial session snapshot")
	}

	s.metrics.SessionsStarted.Add(ctx, 1)
	log.WithFields(log.Fields{
		"session_id": id,
		"athlete_id": athleteID,
		"workout_id": workout.ID,
		"exercises":  len(workout.ExerciseSeries),
	}).Info("guided session started")

	v, err := sess.View(ctx)
	if err != nil {
		return nil, err
	}
	return &StartResult{SessionID: id, Result: session.Result{Transition: carousel.TransitionNone, View: v}}, nil
}

func (s *GuidedWorkoutService) resolveWorkout(ctx context.Context, athleteID string, req StartRequest) (*domain.WorkoutInProgress, error) {
	var workout *domain.WorkoutInProgress
	switch {
	case req.WorkoutID != "":
		stored, err := s.workoutRepo.GetByID(ctx, req.WorkoutID)
		if err != nil {
			return nil, err
		}
		if stored.AthleteID != athleteID {
			return nil, domain.ErrForbidden
		}
		workout = stored.Clone()
	case req.ExerciseSeries != nil:
		workout = (&domain.WorkoutInProgress{
			AthleteID:      athleteID,
			Name:           req.Name,
			ExerciseSeries: req.ExerciseSeries,
		}).Clone()
	default:
		return nil, ErrInvalidStartRequest
	}

	if n := workout.Compact(); n > 0 {
		log.Warnf("dropped %d null entries from workout %q for athlete %s", n, workout.ID, athleteID)
	}
	for _, ex := range workout.ExerciseSeries {
		for _, set := range ex.Sets {
			if set.RestTimeSeconds <= 0 {
				set.RestTimeSeconds = s.cfg.DefaultRestSeconds
			}
		}
	}
	return workout, nil
}

// launch creates, registers and feeds the catalog to a session.
func (s *GuidedWorkoutService) launch(params session.Params) (*session.GuidedSession, error) {
	ids := params.Workout.ExerciseIDs()
	sess := session.New(params, s.sessionOptions())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sess.Close()
		return nil, ErrServiceClosed
	}
	if existing, ok := s.sessions[params.ID]; ok {
		// Lost a concurrent resume of the same session.
		existing.lastUsed = s.now()
		s.mu.Unlock()
		sess.Close()
		return existing.sess, nil
	}
	s.sessions[params.ID] = &sessionEntry{sess: sess, lastUsed: s.now()}
	s.loaders.Add(1)
	s.mu.Unlock()

	s.metrics.ActiveSessions.Add(context.Background(), 1)
	go func() {
		defer s.loaders.Done()
		s.loadCatalog(sess, ids)
	}()
	return sess, nil
}

func (s *GuidedWorkoutService) sessionOptions() session.Options {
	return session.Options{
		AutoAdvanceDelay: s.cfg.AutoAdvanceDelay,
		OnSetComplete: func(sess *session.GuidedSession, ei, si int) {
			s.metrics.SetsCompleted.Add(context.Background(), 1)
			log.WithFields(log.Fields{
				"session_id":     sess.ID(),
				"exercise_index": ei,
				"set_index":      si,
			}).Info("set completed")
		},
		OnBlocked: func(sess *session.GuidedSession, ei, si int, res carousel.ValidationResult) {
			s.metrics.SetsBlocked.Add(context.Background(), 1,
				metric.WithAttributes(attribute.String("reason", res.Error)))
			log.WithFields(log.Fields{
				"session_id":     sess.ID(),
				"exercise_index": ei,
				"set_index":      si,
				"fields":         res.Fields,
			}).Debug("set blocked by validation")
		},
		OnChange: s.enqueueSnapshot,
	}
}

// loadCatalog fetches every exercise the workout references and hands the
// catalog to the session. Unknown exercises are left out and resolve to the
// default type.
func (s *GuidedWorkoutService) loadCatalog(sess *session.GuidedSession, ids []string) {
	ctx, cancel := context.WithTimeout(s.bgCtx, catalogLoadTimeout)
	defer cancel()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "guided.loadCatalog",
		trace.WithAttributes(attribute.Int("catalog.exercise_count", len(ids))))
	defer span.End()

	exercises := make([]*domain.Exercise, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(catalogFetchLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			ex, err := s.exerciseRepo.GetByID(gCtx, id)
			switch {
			case err == nil:
				exercises[i] = ex
			case errors.Is(err, domain.ErrExerciseNotFound), errors.Is(err, domain.ErrInvalidID):
				log.WithField("exercise_id", id).Warn("exercise referenced by workout not found")
			default:
				return fmt.Errorf("load exercise %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		log.WithError(err).WithField("session_id", sess.ID()).Error("failed to load exercise catalog")
	}

	catalog := domain.ExerciseCatalog{}
	for _, ex := range exercises {
		if ex != nil {
			catalog.Exercises = append(catalog.Exercises, ex)
		}
	}
	if err := sess.SetCatalog(ctx, catalog); err != nil && !errors.Is(err, session.ErrClosed) && ctx.Err() == nil {
		log.WithError(err).WithField("session_id", sess.ID()).Warn("failed to deliver exercise catalog")
	}
}

// lookup returns the live session, resuming it from its snapshot when it is
// not held in memory.
func (s *GuidedWorkoutService) lookup(ctx context.Context, athleteID, sessionID string) (*session.GuidedSession, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrServiceClosed
	}
	if e, ok := s.sessions[sessionID]; ok {
		s.mu.Unlock()
		if e.sess.AthleteID() != athleteID {
			return nil, domain.ErrForbidden
		}
		s.touch(sessionID)
		return e.sess, nil
	}
	s.mu.Unlock()

	snap, err := s.snapshots.GetSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snap.AthleteID != athleteID {
		return nil, domain.ErrForbidden
	}

	log.WithFields(log.Fields{
		"session_id":  sessionID,
		"slide_index": snap.SlideIndex,
	}).Info("resuming guided session from snapshot")
	return s.launch(session.Params{
		ID:         snap.ID,
		AthleteID:  snap.AthleteID,
		Workout:    snap.Workout,
		Catalog:    domain.LoadingCatalog(),
		StartIndex: snap.SlideIndex,
		StartedAt:  snap.StartedAt,
	})
}

func (s *GuidedWorkoutService) touch(sessionID string) {
	s.mu.Lock()
	if e, ok := s.sessions[sessionID]; ok {
		e.lastUsed = s.now()
	}
	s.mu.Unlock()
}

func (s *GuidedWorkoutService) do(ctx context.Context, op, athleteID, sessionID string, fn func(*session.GuidedSession) (session.Result, error)) (session.Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "guided."+op,
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	sess, err := s.lookup(ctx, athleteID, sessionID)
	if err != nil {
		span.RecordError(err)
		return session.Result{}, err
	}
	res, err := fn(sess)
	if errors.Is(err, session.ErrClosed) {
		// Finish, Discard or eviction closed the session after lookup. An
		// evicted session resumes from its snapshot; an ended one is gone.
		span.AddEvent("session closed, retrying lookup")
		if sess, err = s.lookup(ctx, athleteID, sessionID); err == nil {
			res, err = fn(sess)
		}
	}
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(
		attribute.String("carousel.transition", string(res.Transition)),
		attribute.Int("carousel.index", res.View.Index),
	)
	return res, err
}

// Get renders the current slide of a session.
func (s *GuidedWorkoutService) Get(ctx context.Context, athleteID, sessionID string) (session.Result, error) {
	return s.do(ctx, "Get", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		v, err := sess.View(ctx)
		return session.Result{Transition: carousel.TransitionNone, View: v}, err
	})
}

func (s *GuidedWorkoutService) Forward(ctx context.Context, athleteID, sessionID string) (session.Result, error) {
	return s.do(ctx, "Forward", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.Forward(ctx)
	})
}

func (s *GuidedWorkoutService) Backward(ctx context.Context, athleteID, sessionID string) (session.Result, error) {
	return s.do(ctx, "Backward", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.Backward(ctx)
	})
}

func (s *GuidedWorkoutService) JumpTo(ctx context.Context, athleteID, sessionID string, index int) (session.Result, error) {
	return s.do(ctx, "JumpTo", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.JumpTo(ctx, index)
	})
}

func (s *GuidedWorkoutService) Select(ctx context.Context, athleteID, sessionID string, index int) (session.Result, error) {
	return s.do(ctx, "Select", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.Select(ctx, index)
	})
}

func (s *GuidedWorkoutService) UpdateSet(ctx context.Context, athleteID, sessionID string, exerciseIndex, setIndex int, u session.SetUpdate) (session.Result, error) {
	return s.do(ctx, "UpdateSet", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.UpdateSet(ctx, exerciseIndex, setIndex, u)
	})
}

func (s *GuidedWorkoutService) Reopen(ctx context.Context, athleteID, sessionID string, exerciseIndex, setIndex int) (session.Result, error) {
	return s.do(ctx, "Reopen", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.Reopen(ctx, exerciseIndex, setIndex)
	})
}

func (s *GuidedWorkoutService) ToggleTimer(ctx context.Context, athleteID, sessionID string) (session.Result, error) {
	return s.do(ctx, "ToggleTimer", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.ToggleTimer(ctx)
	})
}

func (s *GuidedWorkoutService) SkipRest(ctx context.Context, athleteID, sessionID string) (session.Result, error) {
	return s.do(ctx, "SkipRest", athleteID, sessionID, func(sess *session.GuidedSession) (session.Result, error) {
		return sess.SkipRest(ctx)
	})
}

// Finish writes the workout log, saves logged values back to the stored
// workout and ends the session.
func (s *GuidedWorkoutService) Finish(ctx context.Context, athleteID, sessionID string) (*domain.WorkoutLog, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "guided.Finish",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	sess, err := s.lookup(ctx, athleteID, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	snap, err := sess.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	workout := snap.Workout
	entry := &domain.WorkoutLog{
		SessionID:      sessionID,
		WorkoutID:      workout.ID,
		AthleteID:      athleteID,
		Name:           workout.Name,
		ExerciseSeries: workout.ExerciseSeries,
		CompletedSets:  carousel.CompletedSets(workout.ExerciseSeries),
		TotalSets:      carousel.TotalSets(workout.ExerciseSeries),
		StartedAt:      snap.StartedAt,
		FinishedAt:     s.now().UTC(),
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save workout log: %w", err)
	}
	if workout.ID != "" {
		if err := s.workoutRepo.Update(ctx, workout); err != nil {
			log.WithError(err).WithField("workout_id", workout.ID).Warn("failed to save logged values to workout")
		}
	}

	s.end(ctx, sessionID)
	s.metrics.SessionsFinished.Add(ctx, 1)
	log.WithFields(log.Fields{
		"session_id":     sessionID,
		"completed_sets": entry.CompletedSets,
		"total_sets":     entry.TotalSets,
	}).Info("guided session finished")
	return entry, nil
}

// Discard ends a session without logging it.
func (s *GuidedWorkoutService) Discard(ctx context.Context, athleteID, sessionID string) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		if e.sess.AthleteID() != athleteID {
			return domain.ErrForbidden
		}
	} else {
		snap, err := s.snapshots.GetSnapshot(ctx, sessionID)
		if err != nil {
			return err
		}
		if snap.AthleteID != athleteID {
			return domain.ErrForbidden
		}
	}

	s.end(ctx, sessionID)
	log.WithField("session_id", sessionID).Info("guided session discarded")
	return nil
}

// History lists the athlete's finished workouts, newest first.
func (s *GuidedWorkoutService) History(ctx context.Context, athleteID string, limit int64) ([]*domain.WorkoutLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.logRepo.ListByAthlete(ctx, athleteID, limit)
}

// end drops a session from memory and from the snapshot store.
func (s *GuidedWorkoutService) end(ctx context.Context, sessionID string) {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if ok {
		e.sess.Close()
		s.metrics.ActiveSessions.Add(ctx, -1)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.snapshots.DeleteSnapshot(ctx, sessionID); err != nil {
		log.WithError(err).WithField("session_id", sessionID).Warn("failed to delete session snapshot")
	}
}

// EvictIdle closes in-memory sessions unused for longer than maxIdle. Their
// snapshots stay behind so the athlete can resume until the snapshot expires.
func (s *GuidedWorkoutService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var idle []*session.GuidedSession
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		s.retire(sess)
		log.WithField("session_id", sess.ID()).Debug("evicted idle guided session")
	}
	return len(idle)
}

// RunJanitor evicts idle sessions every interval until ctx ends.
func (s *GuidedWorkoutService) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(maxIdle); n > 0 {
				log.Infof("evicted %d idle guided sessions", n)
			}
		}
	}
}

// ActiveSessions reports how many sessions are held in memory.
func (s *GuidedWorkoutService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops every session, waits for background catalog loads and flushes
// pending snapshots.
func (s *GuidedWorkoutService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[string]*sessionEntry)
	s.mu.Unlock()

	s.bgCancel()
	for _, e := range sessions {
		s.retire(e.sess)
	}
	s.loaders.Wait()

	close(s.persist)
	s.workers.Wait()
}

// enqueueSnapshot runs on a session loop and must not block it.
func (s *GuidedWorkoutService) enqueueSnapshot(snap *domain.SessionSnapshot) {
	select {
	case s.persist <- snap:
	default:
		log.WithField("session_id", snap.ID).Warn("snapshot queue full, dropping snapshot")
	}
}

func (s *GuidedWorkoutService) persistLoop() {
	defer s.workers.Done()
	for snap := range s.persist {
		s.saveSnapshot(snap)
	}
}

// saveSnapshot writes a queued snapshot unless its session has left memory
// since; whoever removed it already wrote or deleted the final state.
func (s *GuidedWorkoutService) saveSnapshot(snap *domain.SessionSnapshot) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	_, live := s.sessions[snap.ID]
	s.mu.Unlock()
	if !live {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotSaveTimeout)
	defer cancel()
	if err := s.snapshots.SaveSnapshot(ctx, snap, s.cfg.SnapshotTTL); err != nil {
		log.WithError(err).WithField("session_id", snap.ID).Warn("failed to save session snapshot")
	}
}

// retire writes the final snapshot of a session already removed from memory
// and closes it.
func (s *GuidedWorkoutService) retire(sess *session.GuidedSession) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotSaveTimeout)
	defer cancel()

	snap, err := sess.Snapshot(ctx)
	sess.Close()
	s.metrics.ActiveSessions.Add(ctx, -1)
	if err != nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.snapshots.SaveSnapshot(ctx, snap, s.cfg.SnapshotTTL); err != nil {
		log.WithError(err).WithField("session_id", snap.ID).Warn("failed to save final session snapshot")
	}
}
