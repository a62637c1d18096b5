package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/repflow/internal/domain"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const indexTimeout = 5 * time.Second

// ensureIndexes creates the collection's indexes at construction time. A
// failure is logged and the repository stays usable.
func ensureIndexes(coll *mongo.Collection, models ...mongo.IndexModel) {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		log.Warnf("failed to create indexes on %s: %v", coll.Name(), err)
	}
}

func objectID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

func insertedHex(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}

// findByID decodes the document with the given hex id into dest.
func findByID(ctx context.Context, coll *mongo.Collection, id string, dest interface{}, notFound error) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	err = coll.FindOne(ctx, bson.M{"_id": oid}).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("find %s %s: %w", coll.Name(), id, err)
	}
	return nil
}

// setByID applies a $set of fields to the document with the given hex id.
func setByID(ctx context.Context, coll *mongo.Collection, id string, fields bson.M, notFound error) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update %s %s: %w", coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

// findAll decodes every match of query. An empty result is an empty slice.
func findAll[T any](ctx context.Context, coll *mongo.Collection, query interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}
