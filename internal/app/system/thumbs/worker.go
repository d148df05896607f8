// Package thumbs generates image thumbnails for uploaded image records.
//
// Work arrives through the durable job queue: the upload handler enqueues a
// job per image, and the worker drains the queue on an interval, writing
// three fixed-width variants next to the original blob.
package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fileharbor/fileharbor/internal/app/store/content"
	filestore "github.com/fileharbor/fileharbor/internal/app/store/files"
	jobstore "github.com/fileharbor/fileharbor/internal/app/store/jobs"
	"github.com/fileharbor/fileharbor/internal/app/system/tasks"
	"github.com/fileharbor/fileharbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Widths are the thumbnail widths generated for every image, largest first.
// Height is derived from the source aspect ratio.
var Widths = []int{500, 250, 100}

// retryDelay spaces out attempts for jobs that failed transiently.
const retryDelay = 30 * time.Second

// Worker drains the thumbnail queue and writes resized variants.
type Worker struct {
	jobs   *jobstore.Store
	files  *filestore.Store
	blobs  *content.Store
	logger *zap.Logger
	id     string
}

// NewWorker creates a thumbnail worker. The id distinguishes this worker in
// job records when several processes share a queue.
func NewWorker(jobs *jobstore.Store, files *filestore.Store, blobs *content.Store, logger *zap.Logger) *Worker {
	return &Worker{
		jobs:   jobs,
		files:  files,
		blobs:  blobs,
		logger: logger,
		id:     "thumbs-" + primitive.NewObjectID().Hex(),
	}
}

// Task wraps the worker in a runner job that drains the queue on the given
// interval.
func (w *Worker) Task(interval time.Duration) tasks.Job {
	return tasks.Job{
		Name:     "thumbnail_worker",
		Interval: interval,
		Run:      w.Drain,
	}
}

// Drain claims and processes queued jobs until the queue is empty or the
// context is cancelled.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		job, err := w.jobs.ClaimNext(ctx, w.id)
		if err != nil {
			return err
		}
		if job == nil {
			return nil
		}

		w.process(ctx, job)
	}
}

// process handles one claimed job. Errors that can never resolve discard
// the job; transient errors leave it for retry.
func (w *Worker) process(ctx context.Context, job *jobstore.Job) {
	log := w.logger.With(
		zap.String("job_id", job.ID.Hex()),
		zap.String("file_id", job.FileID.Hex()))

	rec, err := w.files.GetByID(ctx, job.FileID)
	if err != nil {
		log.Warn("thumbnail job references missing file")
		_ = w.jobs.Discard(ctx, job.ID, "file not found")
		return
	}
	if rec.UserID != job.UserID {
		log.Warn("thumbnail job owner does not match file owner")
		_ = w.jobs.Discard(ctx, job.ID, "file not found")
		return
	}
	if rec.Type != models.TypeImage {
		log.Warn("thumbnail job references non-image record",
			zap.String("type", rec.Type))
		_ = w.jobs.Discard(ctx, job.ID, "not an image")
		return
	}

	data, err := w.blobs.Read(ctx, rec.LocalPath)
	if err != nil {
		log.Warn("thumbnail source blob missing", zap.Error(err))
		_ = w.jobs.Discard(ctx, job.ID, "file not found")
		return
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("thumbnail source is not a decodable image", zap.Error(err))
		_ = w.jobs.Discard(ctx, job.ID, "undecodable image: "+err.Error())
		return
	}

	format, err := imaging.FormatFromFilename(rec.Name)
	if err != nil {
		format = imaging.PNG
	}

	for _, width := range Widths {
		thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, thumb, format); err != nil {
			log.Error("thumbnail encode failed",
				zap.Int("width", width), zap.Error(err))
			_ = w.jobs.Fail(ctx, job.ID, fmt.Sprintf("encode %d: %v", width, err), retryDelay)
			return
		}

		dst := content.VariantPath(rec.LocalPath, width)
		if err := w.blobs.Write(ctx, dst, buf.Bytes()); err != nil {
			log.Error("thumbnail write failed",
				zap.Int("width", width), zap.Error(err))
			_ = w.jobs.Fail(ctx, job.ID, fmt.Sprintf("write %d: %v", width, err), retryDelay)
			return
		}
	}

	if err := w.jobs.Complete(ctx, job.ID); err != nil {
		log.Error("failed to mark thumbnail job complete", zap.Error(err))
		return
	}

	log.Info("thumbnails generated", zap.Ints("widths", Widths))
}
