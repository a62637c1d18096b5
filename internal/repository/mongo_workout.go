package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/repflow/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWorkoutRepository holds assigned workout plans and the values logged
// against them.
type MongoWorkoutRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutRepository(db *mongo.Database) *MongoWorkoutRepository {
	coll := db.Collection("workouts")
	ensureIndexes(coll, mongo.IndexModel{Keys: bson.D{{Key: "athlete_id", Value: 1}}})
	return &MongoWorkoutRepository{collection: coll}
}

func (r *MongoWorkoutRepository) Create(ctx context.Context, workout *domain.WorkoutInProgress) error {
	now := time.Now()
	workout.CreatedAt, workout.UpdatedAt = now, now

	res, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	workout.ID = insertedHex(res)
	return nil
}

func (r *MongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutInProgress, error) {
	workout := new(domain.WorkoutInProgress)
	if err := findByID(ctx, r.collection, id, workout, domain.ErrWorkoutNotFound); err != nil {
		return nil, err
	}
	return workout, nil
}

// Update replaces the exercise series, which carries the logged values.
func (r *MongoWorkoutRepository) Update(ctx context.Context, workout *domain.WorkoutInProgress) error {
	workout.UpdatedAt = time.Now()
	return setByID(ctx, r.collection, workout.ID, bson.M{
		"name":            workout.Name,
		"level":           workout.Level,
		"exercise_series": workout.ExerciseSeries,
		"updated_at":      workout.UpdatedAt,
	}, domain.ErrWorkoutNotFound)
}
