package history

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// Repository persists and reads history entries.
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	ListForUser(ctx context.Context, userID string) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
}

// MongoRepository stores entries in the SearchHistory collection.
type MongoRepository struct {
	coll *mongo.Collection
}

var _ Repository = (*MongoRepository)(nil)

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the userId lookup index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "searchDate", Value: -1}},
		Options: options.Index().SetName("userId_searchDate"),
	})
	if err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	return nil
}

// Insert stores entry and sets its ID.
func (r *MongoRepository) Insert(ctx context.Context, entry *Entry) error {
	if entry.UserID == "" {
		return errors.New("history entry has no user")
	}
	if entry.TotalResults != len(entry.SearchData.Results) {
		return fmt.Errorf("totalResults %d does not match %d results", entry.TotalResults, len(entry.SearchData.Results))
	}

	res, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

// ListForUser returns the user's entries, newest first.
func (r *MongoRepository) ListForUser(ctx context.Context, userID string) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "searchDate", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return entries, nil
}

// Get returns one entry by its hex id.
func (r *MongoRepository) Get(ctx context.Context, id string) (*Entry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var entry Entry
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry: %w", err)
	}
	return &entry, nil
}
