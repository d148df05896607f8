// internal/app/system/thumbs/queue.go
package thumbs

import (
	"context"

	jobstore "github.com/fileharbor/fileharbor/internal/app/store/jobs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Queue is the producer side of the thumbnail pipeline. Upload handlers
// publish to it; the Worker consumes.
type Queue struct {
	jobs *jobstore.Store
}

// NewQueue creates a Queue over the job store.
func NewQueue(jobs *jobstore.Store) Queue {
	return Queue{jobs: jobs}
}

// Publish enqueues thumbnail generation for one image record.
func (q Queue) Publish(ctx context.Context, userID, fileID primitive.ObjectID) error {
	_, err := q.jobs.Enqueue(ctx, userID, fileID)
	return err
}
