package carousel

import (
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/formstate"
)

var (
	ErrSlideOutOfRange = errors.New("slide index out of range")
	ErrSetNotFound     = errors.New("set does not exist")
	ErrSetCompleted    = errors.New("set is completed, reopen it to edit")
	ErrNoActiveTimer   = errors.New("no active rest timer")
)

// DefaultAutoAdvanceDelay is the pause between a rest countdown finishing on
// its own and the deck moving to the next set.
const DefaultAutoAdvanceDelay = 500 * time.Millisecond

// State is the form-state host the controller reads from and patches.
type State interface {
	Series() []*domain.ExerciseEntry
	Set(path string, value interface{}) error
	Subscribe(fn func(path string)) (unsubscribe func())
}

// Transition reports what an intent did to the slide position.
type Transition string

const (
	TransitionAdvanced Transition = "advanced"
	TransitionMoved    Transition = "moved"
	TransitionBlocked  Transition = "blocked"
	TransitionNone     Transition = "none"
)

// BlockedError is the validation failure pinned to one set-info slide.
type BlockedError struct {
	SlideIndex int     `json:"slide_index"`
	Message    string  `json:"message"`
	Fields     []Field `json:"fields,omitempty"`
}

// Options configures a Controller. Callbacks run on the controller's goroutine.
type Options struct {
	AutoAdvanceDelay time.Duration
	// OnSetComplete runs once each time a set goes from open to completed by
	// passing validation on the way forward.
	OnSetComplete func(exerciseIndex, setIndex int)
	OnBlocked     func(exerciseIndex, setIndex int, result ValidationResult)
	OnIndexChange func(index int)
}

// Controller is the guided workout state machine. It is not safe for
// concurrent use: every method, and every Scheduler callback, must run on a
// single goroutine.
type Controller struct {
	state   State
	catalog domain.ExerciseCatalog
	sched   Scheduler
	opts    Options

	index   int
	blocked *BlockedError

	timer         *RestTimer
	cancelAdvance func()

	// snapBack is set after a widget-reported forward was refused; the
	// widget's echo of the corrective scroll is swallowed.
	snapBack bool

	unsubscribe func()
	closed      bool
}

// NewController positions a controller at startIndex (clamped into the deck).
func NewController(state State, catalog domain.ExerciseCatalog, sched Scheduler, startIndex int, opts Options) *Controller {
	if opts.AutoAdvanceDelay <= 0 {
		opts.AutoAdvanceDelay = DefaultAutoAdvanceDelay
	}
	c := &Controller{
		state:   state,
		catalog: catalog,
		sched:   sched,
		opts:    opts,
	}
	if n := len(c.Deck()); startIndex >= n {
		startIndex = n - 1
	}
	if startIndex < 0 {
		startIndex = 0
	}
	c.index = startIndex
	c.unsubscribe = state.Subscribe(func(string) { c.Refresh() })
	c.activate()
	return c
}

// Deck derives the slide deck from the current form state.
func (c *Controller) Deck() []Slide {
	return BuildDeck(c.state.Series())
}

func (c *Controller) Index() int                      { return c.index }
func (c *Controller) Blocked() *BlockedError          { return c.blocked }
func (c *Controller) Timer() *RestTimer               { return c.timer }
func (c *Controller) Catalog() domain.ExerciseCatalog { return c.catalog }
func (c *Controller) SnapBackPending() bool           { return c.snapBack }

// SetCatalog swaps in a newly loaded exercise catalog.
func (c *Controller) SetCatalog(catalog domain.ExerciseCatalog) {
	c.catalog = catalog
}

// Progress returns completed and total set counts.
func (c *Controller) Progress() (completed, total int) {
	series := c.state.Series()
	return CompletedSets(series), TotalSets(series)
}

// CurrentSlide returns the slide at the current index.
func (c *Controller) CurrentSlide() (Slide, bool) {
	deck := c.Deck()
	if c.index < 0 || c.index >= len(deck) {
		return Slide{}, false
	}
	return deck[c.index], true
}

// Forward moves to the next slide. Leaving a set-info slide for its rest slide
// first validates the set; a failing set blocks the move and pins its error
// to the current slide.
func (c *Controller) Forward() Transition {
	deck := c.Deck()
	if c.closed || c.index >= len(deck)-1 {
		return TransitionNone
	}

	cur, next := deck[c.index], deck[c.index+1]
	if cur.Kind == SlideSetInfo && next.Kind == SlideRestTimer {
		res := ValidateSet(c.state.Series(), cur.ExerciseIndex, cur.SetIndex, c.catalog)
		if !res.Valid {
			c.blocked = &BlockedError{SlideIndex: c.index, Message: res.Error, Fields: res.Fields}
			if c.opts.OnBlocked != nil {
				c.opts.OnBlocked(cur.ExerciseIndex, cur.SetIndex, res)
			}
			return TransitionBlocked
		}
		c.blocked = nil
		if err := c.markComplete(cur.ExerciseIndex, cur.SetIndex); err != nil {
			c.blocked = &BlockedError{SlideIndex: c.index, Message: MsgSetMissing}
			return TransitionBlocked
		}
	}

	c.goTo(c.index + 1)
	return TransitionAdvanced
}

// Backward moves to the previous slide. It is never validated.
func (c *Controller) Backward() Transition {
	if c.closed || c.index <= 0 {
		return TransitionNone
	}
	c.goTo(c.index - 1)
	return TransitionMoved
}

// JumpTo moves straight to index without validating the slide being left.
func (c *Controller) JumpTo(index int) (Transition, error) {
	if index < 0 || index >= len(c.Deck()) {
		return TransitionNone, fmt.Errorf("%w: %d", ErrSlideOutOfRange, index)
	}
	if c.closed || index == c.index {
		return TransitionNone, nil
	}
	c.goTo(index)
	return TransitionMoved, nil
}

// Select handles a carousel widget reporting that index is now selected.
// Swiping one slide ahead is treated as Forward; any other change is a jump.
// When Forward refuses, the widget must scroll back to Index(); that
// corrective selection is ignored.
func (c *Controller) Select(index int) (Transition, error) {
	if c.snapBack {
		c.snapBack = false
		if index == c.index {
			return TransitionNone, nil
		}
	}

	switch {
	case index == c.index:
		return TransitionNone, nil
	case index == c.index+1:
		t := c.Forward()
		if t == TransitionBlocked {
			c.snapBack = true
		}
		return t, nil
	case index == c.index-1:
		return c.Backward(), nil
	default:
		return c.JumpTo(index)
	}
}

// SetReps records the reps actually performed.
func (c *Controller) SetReps(exerciseIndex, setIndex int, reps *int) error {
	return c.setValue(exerciseIndex, setIndex, formstate.FieldReps, reps)
}

// SetWeight records the weight actually used.
func (c *Controller) SetWeight(exerciseIndex, setIndex int, weight *float64) error {
	return c.setValue(exerciseIndex, setIndex, formstate.FieldWeight, weight)
}

// SetDuration records the seconds actually held.
func (c *Controller) SetDuration(exerciseIndex, setIndex int, seconds *int) error {
	return c.setValue(exerciseIndex, setIndex, formstate.FieldDuration, seconds)
}

// Reopen clears the completed flag of a set so it can be edited. The slide
// position does not change.
func (c *Controller) Reopen(exerciseIndex, setIndex int) error {
	_, set := lookupSet(c.state.Series(), exerciseIndex, setIndex)
	if set == nil {
		return fmt.Errorf("%w: exercise %d set %d", ErrSetNotFound, exerciseIndex, setIndex)
	}
	if !set.Completed {
		return nil
	}
	return c.state.Set(formstate.SetPath(exerciseIndex, setIndex, formstate.FieldCompleted), false)
}

// ToggleTimer pauses a running rest countdown or resumes a paused one.
func (c *Controller) ToggleTimer() error {
	if c.timer == nil {
		return ErrNoActiveTimer
	}
	if c.timer.Running() {
		c.timer.Pause()
	} else {
		c.timer.Resume()
	}
	return nil
}

// SkipRest ends the current rest countdown and moves on without the
// auto-advance delay.
func (c *Controller) SkipRest() (Transition, error) {
	if c.timer == nil {
		return TransitionNone, ErrNoActiveTimer
	}
	c.timer.Skip()
	if c.index >= len(c.Deck())-1 {
		return TransitionNone, nil
	}
	c.goTo(c.index + 1)
	return TransitionAdvanced, nil
}

// Refresh re-derives the deck after the form state changed and pulls the
// position back inside it if the deck shrank.
func (c *Controller) Refresh() {
	if c.closed {
		return
	}
	n := len(c.Deck())
	if n == 0 {
		c.deactivate()
		c.index = 0
		c.blocked = nil
		return
	}
	if c.blocked != nil && c.blocked.SlideIndex >= n {
		c.blocked = nil
	}
	if c.index >= n {
		c.goTo(n - 1)
	}
}

// Close stops the active countdown and any pending auto-advance.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.deactivate()
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.closed = true
}

func (c *Controller) setValue(exerciseIndex, setIndex int, field string, value interface{}) error {
	_, set := lookupSet(c.state.Series(), exerciseIndex, setIndex)
	if set == nil {
		return fmt.Errorf("%w: exercise %d set %d", ErrSetNotFound, exerciseIndex, setIndex)
	}
	if set.Completed {
		return ErrSetCompleted
	}
	if err := c.state.Set(formstate.SetPath(exerciseIndex, setIndex, field), value); err != nil {
		return err
	}

	if c.blocked != nil {
		deck := c.Deck()
		if c.blocked.SlideIndex < len(deck) {
			s := deck[c.blocked.SlideIndex]
			if s.ExerciseIndex == exerciseIndex && s.SetIndex == setIndex {
				c.blocked = nil
			}
		}
	}
	return nil
}

func (c *Controller) markComplete(exerciseIndex, setIndex int) error {
	_, set := lookupSet(c.state.Series(), exerciseIndex, setIndex)
	if set == nil {
		return ErrSetNotFound
	}
	if set.Completed {
		return nil
	}
	if err := c.state.Set(formstate.SetPath(exerciseIndex, setIndex, formstate.FieldCompleted), true); err != nil {
		return err
	}
	if c.opts.OnSetComplete != nil {
		c.opts.OnSetComplete(exerciseIndex, setIndex)
	}
	return nil
}

func (c *Controller) goTo(index int) {
	if index == c.index {
		return
	}
	c.deactivate()
	c.blocked = nil
	c.snapBack = false
	c.index = index
	c.activate()
	if c.opts.OnIndexChange != nil {
		c.opts.OnIndexChange(index)
	}
}

// activate starts a fresh countdown when the current slide is a rest slide.
func (c *Controller) activate() {
	slide, ok := c.CurrentSlide()
	if !ok || slide.Kind != SlideRestTimer {
		return
	}
	_, set := lookupSet(c.state.Series(), slide.ExerciseIndex, slide.SetIndex)
	if set == nil {
		return
	}
	slideIndex := c.index
	c.timer = NewRestTimer(c.sched, func() { c.restFinished(slideIndex) })
	c.timer.Start(set.RestSeconds())
}

func (c *Controller) deactivate() {
	if c.cancelAdvance != nil {
		c.cancelAdvance()
		c.cancelAdvance = nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// restFinished schedules the delayed auto-advance off the rest slide at slideIndex.
func (c *Controller) restFinished(slideIndex int) {
	if c.closed || c.index != slideIndex || slideIndex >= len(c.Deck())-1 {
		return
	}
	if c.cancelAdvance != nil {
		c.cancelAdvance()
	}
	c.cancelAdvance = c.sched.After(c.opts.AutoAdvanceDelay, func() {
		c.cancelAdvance = nil
		if c.closed || c.index != slideIndex {
			return
		}
		c.goTo(slideIndex + 1)
	})
}
