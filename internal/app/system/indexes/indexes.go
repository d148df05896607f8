// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureAll is called at startup. Each ensure* function is idempotent.
// Errors are aggregated so any problem is visible and startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureFiles(ctx, db); err != nil {
		problems = append(problems, "files: "+err.Error())
	}
	if err := ensureJobs(ctx, db); err != nil {
		problems = append(problems, "jobs: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Unique email is what makes duplicate registration detectable at
		// the datastore layer.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
	})
	return err
}

func ensureFiles(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("files")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Listing path: owner + parent, paged by _id.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "parent_id", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_files_user_parent_id"),
		},
	})
	return err
}

func ensureJobs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("jobs")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Claim path: pending jobs in schedule order.
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "scheduled_at", Value: 1},
			},
			Options: options.Index().SetName("idx_jobs_status_scheduled"),
		},
	})
	return err
}
