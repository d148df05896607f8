// Package status implements the backend liveness and counter endpoints.
//
// Endpoints:
//   - GET /status - reachability of the token store and metadata store
//   - GET /stats - total registered users and metadata records
package status

import (
	"context"
	"net/http"

	filestore "github.com/fileharbor/fileharbor/internal/app/store/files"
	userstore "github.com/fileharbor/fileharbor/internal/app/store/users"
	"github.com/fileharbor/fileharbor/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Pinger reports backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles status and stats requests.
type Handler struct {
	tokens Pinger
	client *mongo.Client
	users  *userstore.Store
	files  *filestore.Store
	logger *zap.Logger
}

// NewHandler creates a new status handler.
func NewHandler(tokens Pinger, client *mongo.Client, users *userstore.Store, files *filestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		tokens: tokens,
		client: client,
		users:  users,
		files:  files,
		logger: logger,
	}
}

// Status handles GET /status. It always answers 200; the booleans carry
// the health signal.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	redisOK := h.tokens.Ping(r.Context()) == nil
	dbOK := h.client.Ping(r.Context(), nil) == nil

	if !redisOK || !dbOK {
		h.logger.Warn("backend unreachable",
			zap.Bool("redis", redisOK),
			zap.Bool("db", dbOK))
	}

	jsonutil.OK(w, map[string]bool{"redis": redisOK, "db": dbOK})
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userCount, err := h.users.Count(r.Context())
	if err != nil {
		h.logger.Error("user count failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	fileCount, err := h.files.Count(r.Context())
	if err != nil {
		h.logger.Error("file count failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	jsonutil.OK(w, map[string]int64{"users": userCount, "files": fileCount})
}
