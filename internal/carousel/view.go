package carousel

import (
	"fmt"
	"math"

	"github.com/mansoorceksport/repflow/internal/domain"
)

// RingRadius is the radius of the rest countdown ring.
const RingRadius = 90.0

const (
	fallbackExerciseName = "Exercise"
	fallbackNextExercise = "Next exercise"

	emptyTitle    = "No exercises in this workout."
	emptySubtitle = "Add exercises to get started."

	hintSwipeToRest     = "Swipe right to start your rest →"
	hintCompletedSet    = "Set logged. Reopen it to make changes."
	hintSwipeToContinue = "Swipe right to continue →"
	endOfWorkout        = "🎉 Workout complete"
)

// FieldView is one input on a set-info slide.
type FieldView struct {
	Name     Field    `json:"name"`
	Label    string   `json:"label"`
	Unit     string   `json:"unit"`
	Target   *float64 `json:"target,omitempty"`
	Actual   *float64 `json:"actual,omitempty"`
	Invalid  bool     `json:"invalid"`
	Disabled bool     `json:"disabled"`
}

// SetInfoInput is everything the set-info renderer needs.
type SetInfoInput struct {
	ExerciseName  string
	ExerciseType  domain.ExerciseType
	SetIndex      int
	TotalSets     int
	Set           *domain.SetEntry
	Tempo         string
	Tip           string
	Error         string
	InvalidFields []Field
}

type SetInfoView struct {
	ExerciseName string              `json:"exercise_name"`
	ExerciseType domain.ExerciseType `json:"exercise_type"`
	SetNumber    int                 `json:"set_number"`
	TotalSets    int                 `json:"total_sets"`
	SetType      domain.SetType      `json:"set_type"`
	Tempo        string              `json:"tempo,omitempty"`
	Tip          string              `json:"tip,omitempty"`
	Fields       []FieldView         `json:"fields"`
	Error        string              `json:"error,omitempty"`
	Completed    bool                `json:"completed"`
	Hint         string              `json:"hint"`
}

// RenderSetInfo renders target against actual values for the fields that
// matter to the exercise type. Inputs are disabled once the set is completed.
func RenderSetInfo(in SetInfoInput) SetInfoView {
	set := in.Set
	if set == nil {
		set = &domain.SetEntry{}
	}

	invalid := make(map[Field]bool, len(in.InvalidFields))
	if in.Error != "" {
		for _, f := range in.InvalidFields {
			invalid[f] = true
		}
	}

	repsField := func() FieldView {
		return FieldView{Name: FieldReps, Label: "Reps done", Unit: "reps",
			Target: intToFloat(set.TargetReps), Actual: intToFloat(set.Reps),
			Invalid: invalid[FieldReps], Disabled: set.Completed}
	}

	var fields []FieldView
	switch in.ExerciseType {
	case domain.ExerciseTypeReps:
		fields = []FieldView{repsField()}
	case domain.ExerciseTypeDuration:
		fields = []FieldView{{Name: FieldDuration, Label: "Time held", Unit: "s",
			Target: intToFloat(set.TargetDuration), Actual: intToFloat(set.Duration),
			Invalid: invalid[FieldDuration], Disabled: set.Completed}}
	default:
		fields = []FieldView{repsField(), {Name: FieldWeight, Label: "Weight used", Unit: "kg",
			Target: set.TargetWeight, Actual: finiteOrNil(set.Weight),
			Invalid: invalid[FieldWeight], Disabled: set.Completed}}
	}

	hint := hintSwipeToRest
	if set.Completed {
		hint = hintCompletedSet
	}

	return SetInfoView{
		ExerciseName: in.ExerciseName,
		ExerciseType: in.ExerciseType,
		SetNumber:    in.SetIndex + 1,
		TotalSets:    in.TotalSets,
		SetType:      set.Type,
		Tempo:        in.Tempo,
		Tip:          in.Tip,
		Fields:       fields,
		Error:        in.Error,
		Completed:    set.Completed,
		Hint:         hint,
	}
}

// NextSetInfo previews the set that follows a rest slide.
type NextSetInfo struct {
	ExerciseName  string `json:"exercise_name"`
	SetNumber     int    `json:"set_number"`
	IsNewExercise bool   `json:"is_new_exercise"`
}

// NextSet returns the set after (exerciseIndex, setIndex), or nil after the
// last set of the workout.
func NextSet(series []*domain.ExerciseEntry, catalog domain.ExerciseCatalog, exerciseIndex, setIndex int) *NextSetInfo {
	ex, _ := lookupSet(series, exerciseIndex, setIndex)
	if ex == nil {
		return nil
	}
	if setIndex < len(ex.Sets)-1 {
		return &NextSetInfo{
			ExerciseName: catalog.DisplayName(ex.ExerciseID, fallbackExerciseName),
			SetNumber:    setIndex + 2,
		}
	}
	for ei := exerciseIndex + 1; ei < len(series); ei++ {
		next := series[ei]
		if next == nil || len(next.Sets) == 0 {
			continue
		}
		return &NextSetInfo{
			ExerciseName:  catalog.DisplayName(next.ExerciseID, fallbackNextExercise),
			SetNumber:     1,
			IsNewExercise: true,
		}
	}
	return nil
}

// RestTimerInput is everything the rest-timer renderer needs.
type RestTimerInput struct {
	Remaining int
	Running   bool
	Complete  bool
	Progress  float64
	Next      *NextSetInfo
}

type RingView struct {
	Radius        float64 `json:"radius"`
	Circumference float64 `json:"circumference"`
	DashOffset    float64 `json:"dash_offset"`
}

type ControlView struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

type RestTimerView struct {
	Clock        string       `json:"clock"`
	Remaining    int          `json:"remaining_seconds"`
	Status       string       `json:"status"`
	Ring         RingView     `json:"ring"`
	PauseResume  ControlView  `json:"pause_resume"`
	Skip         ControlView  `json:"skip"`
	Next         *NextSetInfo `json:"next,omitempty"`
	EndOfWorkout string       `json:"end_of_workout,omitempty"`
	Hint         string       `json:"hint,omitempty"`
}

// RenderRestTimer renders the countdown ring, its controls and the preview of
// what comes next.
func RenderRestTimer(in RestTimerInput) RestTimerView {
	progress := math.Max(0, math.Min(1, in.Progress))
	circumference := 2 * math.Pi * RingRadius

	status := "Paused"
	switch {
	case in.Complete:
		status = "Done!"
	case in.Running:
		status = "Resting"
	}

	pauseLabel := "Resume"
	if in.Running {
		pauseLabel = "Pause"
	}

	v := RestTimerView{
		Clock:     FormatClock(in.Remaining),
		Remaining: in.Remaining,
		Status:    status,
		Ring: RingView{
			Radius:        RingRadius,
			Circumference: circumference,
			DashOffset:    circumference * (1 - progress),
		},
		PauseResume: ControlView{Label: pauseLabel, Disabled: in.Complete},
		Skip:        ControlView{Label: "Skip", Disabled: in.Complete},
		Next:        in.Next,
	}
	if in.Next == nil {
		v.EndOfWorkout = endOfWorkout
	}
	if in.Complete {
		v.Hint = hintSwipeToContinue
	}
	return v
}

// FormatClock formats seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

type HeaderView struct {
	ExerciseName  string  `json:"exercise_name"`
	CompletedSets int     `json:"completed_sets"`
	TotalSets     int     `json:"total_sets"`
	Percent       float64 `json:"percent"`
}

type IndicatorView struct {
	Index  int       `json:"index"`
	Kind   SlideKind `json:"kind"`
	Active bool      `json:"active"`
}

// CarouselView is the whole screen for the current position.
type CarouselView struct {
	Empty         bool            `json:"empty"`
	EmptyTitle    string          `json:"empty_title,omitempty"`
	EmptySubtitle string          `json:"empty_subtitle,omitempty"`
	Header        HeaderView      `json:"header"`
	Index         int             `json:"index"`
	SlideCount    int             `json:"slide_count"`
	Slide         *Slide          `json:"slide,omitempty"`
	SetInfo       *SetInfoView    `json:"set_info,omitempty"`
	RestTimer     *RestTimerView  `json:"rest_timer,omitempty"`
	Blocked       *BlockedError   `json:"blocked,omitempty"`
	Indicators    []IndicatorView `json:"indicators,omitempty"`
	Footer        string          `json:"footer,omitempty"`
}

// View renders the current position of the controller.
func (c *Controller) View() CarouselView {
	series := c.state.Series()
	deck := BuildDeck(series)
	completed, total := CompletedSets(series), TotalSets(series)

	if len(deck) == 0 {
		return CarouselView{Empty: true, EmptyTitle: emptyTitle, EmptySubtitle: emptySubtitle}
	}

	index := c.index
	if index >= len(deck) {
		index = len(deck) - 1
	}
	slide := deck[index]
	ex, set := lookupSet(series, slide.ExerciseIndex, slide.SetIndex)
	name := fallbackExerciseName
	if ex != nil {
		name = c.catalog.DisplayName(ex.ExerciseID, domain.ExerciseNameUnknown)
	}

	v := CarouselView{
		Header: HeaderView{
			ExerciseName:  name,
			CompletedSets: completed,
			TotalSets:     total,
			Percent:       float64(completed) / float64(total) * 100,
		},
		Index:      index,
		SlideCount: len(deck),
		Slide:      &slide,
		Indicators: make([]IndicatorView, len(deck)),
	}
	for i, s := range deck {
		v.Indicators[i] = IndicatorView{Index: i, Kind: s.Kind, Active: i == index}
	}

	if c.blocked != nil && c.blocked.SlideIndex == index {
		v.Blocked = c.blocked
	}

	label := "Rest"
	if slide.Kind == SlideSetInfo {
		label = "Set info"
		in := SetInfoInput{
			ExerciseName: name,
			SetIndex:     slide.SetIndex,
			Set:          set,
		}
		if ex != nil {
			in.ExerciseType = c.catalog.TypeOf(ex.ExerciseID)
			in.TotalSets = len(ex.Sets)
			in.Tempo = ex.Tempo
			in.Tip = ex.Tip
		}
		if v.Blocked != nil {
			in.Error = v.Blocked.Message
			in.InvalidFields = v.Blocked.Fields
		}
		info := RenderSetInfo(in)
		v.SetInfo = &info
	} else {
		in := RestTimerInput{Next: NextSet(series, c.catalog, slide.ExerciseIndex, slide.SetIndex)}
		if c.timer != nil {
			in.Remaining = c.timer.Remaining()
			in.Running = c.timer.Running()
			in.Complete = c.timer.Complete()
			in.Progress = c.timer.Progress()
		} else if set != nil {
			in.Remaining = set.RestSeconds()
		}
		rest := RenderRestTimer(in)
		v.RestTimer = &rest
	}
	v.Footer = fmt.Sprintf("%s • Slide %d of %d", label, index+1, len(deck))
	return v
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
