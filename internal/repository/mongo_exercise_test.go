package repository

import (
	"testing"

	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExerciseQuery(t *testing.T) {
	assert.Empty(t, exerciseQuery(nil))

	q := exerciseQuery(map[string]interface{}{
		"name":         "bench (incline)",
		"type":         "weight",
		"muscle_group": "",
		"equipment":    "Barbell",
	})
	assert.Equal(t, bson.M{
		"name": primitive.Regex{Pattern: `bench \(incline\)`, Options: "i"},
		"type": "weight",
	}, q)
}

func TestObjectID(t *testing.T) {
	_, err := objectID("not-hex")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	want := primitive.NewObjectID()
	got, err := objectID(want.Hex())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
