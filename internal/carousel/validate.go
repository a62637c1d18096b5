package carousel

import (
	"math"

	"github.com/mansoorceksport/repflow/internal/domain"
)

// Field names a set input, used to highlight what failed validation.
type Field string

const (
	FieldReps     Field = "reps"
	FieldWeight   Field = "weight"
	FieldDuration Field = "duration"
)

const (
	MsgRepsRequired     = "Enter the number of reps you completed (more than 0)."
	MsgWeightRequired   = "Enter the weight you used (0 kg or more, 0 for bodyweight)."
	MsgDurationRequired = "Enter how long you held the set in seconds (more than 0)."
	MsgSetMissing       = "This set no longer exists. Go back and try again."
)

// ValidationResult is the outcome of checking a logged set. Error is the first
// failure's message; Fields lists every invalid input.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Error  string  `json:"error,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

func (r *ValidationResult) fail(field Field, msg string) {
	r.Valid = false
	if r.Error == "" {
		r.Error = msg
	}
	r.Fields = append(r.Fields, field)
}

// ValidateSet checks the actual values of one set against the rule for its
// exercise type. Unresolvable exercises are validated as weight exercises.
func ValidateSet(series []*domain.ExerciseEntry, exerciseIndex, setIndex int, catalog domain.ExerciseCatalog) ValidationResult {
	ex, set := lookupSet(series, exerciseIndex, setIndex)
	if set == nil {
		return ValidationResult{Valid: false, Error: MsgSetMissing}
	}

	res := ValidationResult{Valid: true}
	switch catalog.TypeOf(ex.ExerciseID) {
	case domain.ExerciseTypeReps:
		if !positiveInt(set.Reps) {
			res.fail(FieldReps, MsgRepsRequired)
		}
	case domain.ExerciseTypeDuration:
		if !positiveInt(set.Duration) {
			res.fail(FieldDuration, MsgDurationRequired)
		}
	default:
		if !positiveInt(set.Reps) {
			res.fail(FieldReps, MsgRepsRequired)
		}
		if set.Weight == nil || math.IsNaN(*set.Weight) || *set.Weight < 0 {
			res.fail(FieldWeight, MsgWeightRequired)
		}
	}
	return res
}

func positiveInt(v *int) bool {
	return v != nil && *v > 0
}
