// internal/app/store/jobs/jobstore.go
package jobstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Job status constants.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DefaultMaxAttempts bounds how many times a job is retried before it is
// marked failed for good.
const DefaultMaxAttempts = 3

// Job represents a queued thumbnail-generation request for one image record.
type Job struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      primitive.ObjectID `bson:"user_id"`
	FileID      primitive.ObjectID `bson:"file_id"`
	Status      string             `bson:"status"`
	Attempts    int                `bson:"attempts"`
	MaxAttempts int                `bson:"max_attempts"`
	Error       string             `bson:"error,omitempty"`
	ScheduledAt time.Time          `bson:"scheduled_at"`
	StartedAt   *time.Time         `bson:"started_at,omitempty"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	WorkerID    string             `bson:"worker_id,omitempty"`
}

// ErrNotFound is returned when a job is not found.
var ErrNotFound = errors.New("job not found")

// Store provides job persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new job store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("jobs")}
}

// Enqueue creates a pending job for the given owner and file record. The job
// becomes claimable immediately.
func (s *Store) Enqueue(ctx context.Context, userID, fileID primitive.ObjectID) (Job, error) {
	now := time.Now()

	job := Job{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		FileID:      fileID,
		Status:      StatusPending,
		Attempts:    0,
		MaxAttempts: DefaultMaxAttempts,
		ScheduledAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// ClaimNext atomically claims the oldest claimable job for processing.
// Returns nil, nil if no jobs are available.
func (s *Store) ClaimNext(ctx context.Context, workerID string) (*Job, error) {
	now := time.Now()

	filter := bson.M{
		"status":       StatusPending,
		"scheduled_at": bson.M{"$lte": now},
	}

	update := bson.M{
		"$set": bson.M{
			"status":     StatusRunning,
			"started_at": now,
			"worker_id":  workerID,
			"updated_at": now,
		},
		"$inc": bson.M{
			"attempts": 1,
		},
	}

	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
		SetReturnDocument(options.After)

	var job Job
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &job, nil
}

// Complete marks a job as completed.
func (s *Store) Complete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":       StatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		},
	})
	return err
}

// Fail records an error against a job. If attempts remain the job is
// rescheduled after retryDelay, otherwise it is marked failed for good.
func (s *Store) Fail(ctx context.Context, id primitive.ObjectID, errMsg string, retryDelay time.Duration) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()

	if job.Attempts < job.MaxAttempts {
		_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
			"$set": bson.M{
				"status":       StatusPending,
				"error":        errMsg,
				"scheduled_at": now.Add(retryDelay),
				"started_at":   nil,
				"worker_id":    "",
				"updated_at":   now,
			},
		})
		return err
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":       StatusFailed,
			"error":        errMsg,
			"completed_at": now,
			"updated_at":   now,
		},
	})
	return err
}

// Discard marks a job as failed without retry. Used when the job can never
// succeed, such as a record that is missing or not an image.
func (s *Store) Discard(ctx context.Context, id primitive.ObjectID, errMsg string) error {
	now := time.Now()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":       StatusFailed,
			"error":        errMsg,
			"completed_at": now,
			"updated_at":   now,
		},
	})
	return err
}

// GetByID retrieves a job by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*Job, error) {
	var job Job
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// CountByStatus returns the number of jobs currently in the given status.
func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": status})
}
