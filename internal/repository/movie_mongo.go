package repository

// This file implements MovieStore on MongoDB.  Documents are stored flat:
// the client fields sit next to the server-managed _id, owner, createdAt and
// updatedAt members, the same shape the API renders.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/iliyamo/movies-api/internal/model"
)

// MoviesCollection is the collection name used by MongoMovieRepo.
const MoviesCollection = "movies"

// MongoMovieRepo stores movies in a MongoDB collection.
type MongoMovieRepo struct {
	coll *mongo.Collection
}

// NewMongoMovieRepo returns a repository backed by db.movies.
func NewMongoMovieRepo(db *mongo.Database) *MongoMovieRepo {
	return &MongoMovieRepo{coll: db.Collection(MoviesCollection)}
}

var _ MovieStore = (*MongoMovieRepo)(nil)

// FindAll returns every movie in insertion order.
func (r *MongoMovieRepo) FindAll(ctx context.Context) ([]*model.Movie, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	out := make([]*model.Movie, 0, len(docs))
	for _, d := range docs {
		out = append(out, movieFromDocument(d))
	}
	return out, nil
}

// FindByID returns (nil, nil) when no document has the id and ErrInvalidID
// when id is not a hex ObjectID.
func (r *MongoMovieRepo) FindByID(ctx context.Context, id string) (*model.Movie, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var doc bson.M
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find movie %s: %w", id, err)
	}
	return movieFromDocument(doc), nil
}

// Create inserts m and populates its ID and timestamps.
func (r *MongoMovieRepo) Create(ctx context.Context, m *model.Movie) error {
	oid := bson.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := bson.M{}
	for k, v := range m.Fields {
		doc[k] = v
	}
	doc["_id"] = oid
	doc["owner"] = int64(m.Owner)
	doc["createdAt"] = now
	doc["updatedAt"] = now

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	m.ID = oid.Hex()
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// Delete removes m by id.
func (r *MongoMovieRepo) Delete(ctx context.Context, m *model.Movie) error {
	oid, err := bson.ObjectIDFromHex(m.ID)
	if err != nil {
		return ErrInvalidID
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete movie %s: %w", m.ID, err)
	}
	return nil
}

func movieFromDocument(d bson.M) *model.Movie {
	m := &model.Movie{Fields: map[string]any{}}
	for k, v := range d {
		switch k {
		case "_id":
			if oid, ok := v.(bson.ObjectID); ok {
				m.ID = oid.Hex()
			} else {
				m.ID = fmt.Sprint(v)
			}
		case "owner":
			m.Owner = toUint64(v)
		case "createdAt":
			m.CreatedAt = toTime(v)
		case "updatedAt":
			m.UpdatedAt = toTime(v)
		case "__v":
			// version key written by older clients of the collection
		default:
			m.Fields[k] = v
		}
	}
	return m
}

func toUint64(v any) uint64 {
	switch t := v.(type) {
	case int64:
		return uint64(t)
	case int32:
		return uint64(t)
	case float64:
		return uint64(t)
	}
	return 0
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	}
	return time.Time{}
}
