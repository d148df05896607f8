// Package filestore provides storage for file and folder metadata records.
package filestore

import (
	"context"
	"errors"
	"time"

	"github.com/fileharbor/fileharbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// ErrNotFound is returned when a record does not exist or is not visible to
// the requesting owner.
var ErrNotFound = errors.New("file not found")

// Store provides access to the files collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new file metadata store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("files")}
}

// Create inserts a new metadata record. The caller is responsible for having
// persisted content for non-folder types before calling Create.
func (s *Store) Create(ctx context.Context, f models.File) (models.File, error) {
	f.ID = primitive.NewObjectID()
	if f.ParentID == "" {
		f.ParentID = models.RootParentID
	}
	f.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.File{}, err
	}
	return f, nil
}

// GetByID retrieves a record by ID regardless of owner. Returns ErrNotFound
// if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var f models.File
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// GetByOwner retrieves a record by ID scoped to its owner. A record owned by
// someone else is reported as ErrNotFound, indistinguishable from absence.
func (s *Store) GetByOwner(ctx context.Context, id, userID primitive.ObjectID) (*models.File, error) {
	var f models.File
	filter := bson.M{"_id": id, "user_id": userID}
	if err := s.c.FindOne(ctx, filter).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListByParent returns one page of the owner's records under the given
// parent, in insertion order. Page is zero-based; out-of-range pages return
// an empty slice.
func (s *Store) ListByParent(ctx context.Context, userID primitive.ObjectID, parentID string, page int64) ([]models.File, error) {
	if page < 0 {
		page = 0
	}
	if parentID == "" {
		parentID = models.RootParentID
	}

	filter := bson.M{"user_id": userID, "parent_id": parentID}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page * PageSize).
		SetLimit(PageSize)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var files []models.File
	if err := cur.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// SetPublic updates the visibility flag of a record owned by userID and
// returns the updated record. Returns ErrNotFound if the record is absent or
// owned by someone else.
func (s *Store) SetPublic(ctx context.Context, id, userID primitive.ObjectID, isPublic bool) (*models.File, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f models.File
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_public": isPublic}},
		opts,
	).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Count returns the total number of metadata records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
