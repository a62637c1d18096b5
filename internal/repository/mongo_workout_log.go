package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/repflow/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWorkoutLogRepository stores one immutable log per finished session.
type MongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutLogRepository(db *mongo.Database) *MongoWorkoutLogRepository {
	coll := db.Collection("workout_logs")
	ensureIndexes(coll,
		mongo.IndexModel{Keys: bson.D{{Key: "athlete_id", Value: 1}, {Key: "finished_at", Value: -1}}},
		// A session is logged at most once, even if Finish is retried.
		mongo.IndexModel{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	)
	return &MongoWorkoutLogRepository{collection: coll}
}

func (r *MongoWorkoutLogRepository) Create(ctx context.Context, entry *domain.WorkoutLog) error {
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now()
	}

	res, err := r.collection.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrWorkoutAlreadyLogged
	}
	if err != nil {
		return fmt.Errorf("insert workout log for session %s: %w", entry.SessionID, err)
	}
	entry.ID = insertedHex(res)
	return nil
}

// ListByAthlete returns the most recently finished workouts first.
func (r *MongoWorkoutLogRepository) ListByAthlete(ctx context.Context, athleteID string, limit int64) ([]*domain.WorkoutLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "finished_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return findAll[domain.WorkoutLog](ctx, r.collection, bson.M{"athlete_id": athleteID}, opts)
}
