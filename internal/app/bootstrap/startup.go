// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	filestore "github.com/fileharbor/fileharbor/internal/app/store/files"
	jobstore "github.com/fileharbor/fileharbor/internal/app/store/jobs"
	"github.com/fileharbor/fileharbor/internal/app/system/tasks"
	"github.com/fileharbor/fileharbor/internal/app/system/thumbs"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are served.
//
// The only background work this service carries is the thumbnail worker,
// which drains the durable job queue on an interval.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	worker := thumbs.NewWorker(
		jobstore.New(deps.MongoDatabase),
		filestore.New(deps.MongoDatabase),
		deps.Blobs,
		logger,
	)
	taskRunner.Register(worker.Task(appCfg.ThumbWorkerInterval))

	taskRunner.Start()
}
