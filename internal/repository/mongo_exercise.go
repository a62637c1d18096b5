package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/mansoorceksport/repflow/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoExerciseRepository is the exercise library, one document per move.
type MongoExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoExerciseRepository(db *mongo.Database) *MongoExerciseRepository {
	coll := db.Collection("exercises")
	ensureIndexes(coll,
		mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "muscle_group", Value: 1}, {Key: "type", Value: 1}}},
	)
	return &MongoExerciseRepository{collection: coll}
}

// Create stores ex, defaulting an unknown type to domain.DefaultExerciseType.
func (r *MongoExerciseRepository) Create(ctx context.Context, ex *domain.Exercise) error {
	if !ex.Type.Valid() {
		ex.Type = domain.DefaultExerciseType
	}
	now := time.Now()
	ex.CreatedAt, ex.UpdatedAt = now, now

	res, err := r.collection.InsertOne(ctx, ex)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateExercise
	}
	if err != nil {
		return fmt.Errorf("insert exercise %q: %w", ex.Name, err)
	}
	ex.ID = insertedHex(res)
	return nil
}

func (r *MongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	ex := new(domain.Exercise)
	if err := findByID(ctx, r.collection, id, ex, domain.ErrExerciseNotFound); err != nil {
		return nil, err
	}
	return ex, nil
}

// List supports "name" (case-insensitive substring), "type" and
// "muscle_group" filters and sorts by name.
func (r *MongoExerciseRepository) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	return findAll[domain.Exercise](ctx, r.collection, exerciseQuery(filter),
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func exerciseQuery(filter map[string]interface{}) bson.M {
	query := bson.M{}
	for _, field := range []string{"name", "type", "muscle_group"} {
		v, _ := filter[field].(string)
		if v == "" {
			continue
		}
		if field == "name" {
			query[field] = primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
			continue
		}
		query[field] = v
	}
	return query
}

// Update rewrites the catalog fields of ex. CreatedAt is left alone.
func (r *MongoExerciseRepository) Update(ctx context.Context, ex *domain.Exercise) error {
	ex.UpdatedAt = time.Now()
	return setByID(ctx, r.collection, ex.ID, bson.M{
		"name":         ex.Name,
		"type":         ex.Type,
		"muscle_group": ex.MuscleGroup,
		"equipment":    ex.Equipment,
		"video_url":    ex.VideoURL,
		"updated_at":   ex.UpdatedAt,
	}, domain.ErrExerciseNotFound)
}
