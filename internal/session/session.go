package session

import (
	"context"
	"time"

	"github.com/mansoorceksport/repflow/internal/carousel"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/formstate"
)

// Options configures a GuidedSession. Callbacks run on the session loop and
// must not block on it.
type Options struct {
	AutoAdvanceDelay time.Duration
	OnSetComplete    func(s *GuidedSession, exerciseIndex, setIndex int)
	OnBlocked        func(s *GuidedSession, exerciseIndex, setIndex int, result carousel.ValidationResult)
	// OnChange receives a copy of the session state after anything that
	// should be persisted: a value edit, a completion or a slide change.
	OnChange func(snapshot *domain.SessionSnapshot)
}

// Result is the outcome of one intent.
type Result struct {
	Transition carousel.Transition   `json:"transition"`
	View       carousel.CarouselView `json:"view"`
}

// GuidedSession is a running guided workout. Its methods are safe for
// concurrent use; they are serialized onto the session loop.
type GuidedSession struct {
	id        string
	athleteID string
	startedAt time.Time

	loop  *Loop
	store *formstate.Store
	ctrl  *carousel.Controller
	opts  Options
}

// Params identifies the session and where it starts.
type Params struct {
	ID         string
	AthleteID  string
	Workout    *domain.WorkoutInProgress
	Catalog    domain.ExerciseCatalog
	StartIndex int
	StartedAt  time.Time
}

// New starts a session loop over params.Workout, which the session takes
// ownership of.
func New(params Params, opts Options) *GuidedSession {
	if params.StartedAt.IsZero() {
		params.StartedAt = time.Now().UTC()
	}
	s := &GuidedSession{
		id:        params.ID,
		athleteID: params.AthleteID,
		startedAt: params.StartedAt,
		loop:      NewLoop(),
		store:     formstate.New(params.Workout),
		opts:      opts,
	}

	// The loop has nothing queued that touches the controller until New
	// returns, so it is safe to build it here.
	s.ctrl = carousel.NewController(s.store, params.Catalog, loopScheduler{loop: s.loop}, params.StartIndex, carousel.Options{
		AutoAdvanceDelay: opts.AutoAdvanceDelay,
		OnSetComplete: func(ei, si int) {
			if s.opts.OnSetComplete != nil {
				s.opts.OnSetComplete(s, ei, si)
			}
		},
		OnBlocked: func(ei, si int, res carousel.ValidationResult) {
			if s.opts.OnBlocked != nil {
				s.opts.OnBlocked(s, ei, si, res)
			}
		},
		OnIndexChange: func(int) { s.changed() },
	})
	s.store.Subscribe(func(string) { s.changed() })
	return s
}

func (s *GuidedSession) ID() string        { return s.id }
func (s *GuidedSession) AthleteID() string { return s.athleteID }

// View renders the current position.
func (s *GuidedSession) View(ctx context.Context) (carousel.CarouselView, error) {
	var v carousel.CarouselView
	err := s.loop.Do(ctx, func() { v = s.ctrl.View() })
	return v, err
}

// Snapshot copies the resumable state of the session.
func (s *GuidedSession) Snapshot(ctx context.Context) (*domain.SessionSnapshot, error) {
	var snap *domain.SessionSnapshot
	err := s.loop.Do(ctx, func() { snap = s.snapshot() })
	return snap, err
}

// Progress returns completed and total set counts.
func (s *GuidedSession) Progress(ctx context.Context) (completed, total int, err error) {
	err = s.loop.Do(ctx, func() { completed, total = s.ctrl.Progress() })
	return completed, total, err
}

// SetCatalog swaps in the loaded exercise catalog.
func (s *GuidedSession) SetCatalog(ctx context.Context, catalog domain.ExerciseCatalog) error {
	return s.loop.Do(ctx, func() { s.ctrl.SetCatalog(catalog) })
}

func (s *GuidedSession) Forward(ctx context.Context) (Result, error) {
	return s.intent(ctx, func() (carousel.Transition, error) { return s.ctrl.Forward(), nil })
}

func (s *GuidedSession) Backward(ctx context.Context) (Result, error) {
	return s.intent(ctx, func() (carousel.Transition, error) { return s.ctrl.Backward(), nil })
}

func (s *GuidedSession) JumpTo(ctx context.Context, index int) (Result, error) {
	return s.intent(ctx, func() (carousel.Transition, error) { return s.ctrl.JumpTo(index) })
}

// Select reports the slide a carousel widget settled on.
func (s *GuidedSession) Select(ctx context.Context, index int) (Result, error) {
	return s.intent(ctx, func() (carousel.Transition, error) { return s.ctrl.Select(index) })
}

// SetUpdate carries the actual values to record on a set. Nil fields are
// left unchanged unless the matching Clear flag is set.
type SetUpdate struct {
	Reps          *int
	Weight        *float64
	Duration      *int
	ClearReps     bool
	ClearWeight   bool
	ClearDuration bool
}

// UpdateSet records actual values on one set.
func (s *GuidedSession) UpdateSet(ctx context.Context, exerciseIndex, setIndex int, u SetUpdate) (Result, error) {
	return s.intent(ctx, func() (carousel.Transition, error) {
		if u.Reps != nil || u.ClearReps {
			if err := s.ctrl.SetReps(exerciseIndex, setIndex, u.Reps); err != nil {
				return carousel.TransitionNone, err
			}
		}
		if u.Weight != nil || u.ClearWeight {
			if err := s.ctrl.SetWeight(exerciseIndex, setIndex, u.Weight); err != nil {
				return carousel.TransitionNone, err
			}
		}
		if u.Duration != nil || u.ClearDuration {
			if err := s.ctrl.SetDuration(exerciseIndex, setIndex, u.Duration); err != nil {
				return carousel.TransitionNone, err
			}
		}
		return carousel.TransitionNone, nil
	})
}

func (s *GuidedSession) Reopen(ctx context.Context, exerciseIndex, setIndex int) (Result, error) {
	return s.intent(ctx, func() (carousel.Transition, error) {
		return carousel.TransitionNone, s.ctrl.Reopen(exerciseIndex, setIndex)
	})
}

func (s *GuidedSession) ToggleTimer(ctx context.Context) (Result, error) {
	return s.intent(ctx, func() (carousel.Transition, error) {
		return carousel.TransitionNone, s.ctrl.ToggleTimer()
	})
}

func (s *GuidedSession) SkipRest(ctx context.Context) (Result, error) {
	return s.intent(ctx, s.ctrl.SkipRest)
}

// Close stops the rest timer, any pending auto-advance and the loop. It is
// safe to call more than once.
func (s *GuidedSession) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.loop.Do(ctx, s.ctrl.Close)
	s.loop.Close()
}

func (s *GuidedSession) intent(ctx context.Context, fn func() (carousel.Transition, error)) (Result, error) {
	var (
		res Result
		err error
	)
	doErr := s.loop.Do(ctx, func() {
		res.Transition, err = fn()
		res.View = s.ctrl.View()
	})
	if doErr != nil {
		return Result{}, doErr
	}
	return res, err
}

func (s *GuidedSession) changed() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.snapshot())
	}
}

func (s *GuidedSession) snapshot() *domain.SessionSnapshot {
	return &domain.SessionSnapshot{
		ID:         s.id,
		AthleteID:  s.athleteID,
		Workout:    s.store.Workout().Clone(),
		SlideIndex: s.ctrl.Index(),
		StartedAt:  s.startedAt,
		UpdatedAt:  time.Now().UTC(),
	}
}
