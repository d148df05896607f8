// Package files implements the file management API endpoints.
//
// Endpoints (mounted at /files):
//   - POST /files - upload a file/image or create a folder
//   - GET /files - list the caller's records under a parent, paginated
//   - GET /files/{id} - fetch one of the caller's records
//   - PUT /files/{id}/publish - make a record public
//   - PUT /files/{id}/unpublish - make a record private
//   - GET /files/{id}/data - fetch raw content, honoring visibility rules
//
// All endpoints except /data require a valid X-Token header.
package files

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/fileharbor/fileharbor/internal/app/store/content"
	filestore "github.com/fileharbor/fileharbor/internal/app/store/files"
	"github.com/fileharbor/fileharbor/internal/app/system/auth"
	"github.com/fileharbor/fileharbor/internal/app/system/jsonutil"
	"github.com/fileharbor/fileharbor/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Publisher enqueues thumbnail work for newly uploaded images. Enqueue
// failures do not fail the upload; the handler logs and moves on.
type Publisher interface {
	Publish(ctx context.Context, userID, fileID primitive.ObjectID) error
}

// Handler handles file management requests.
type Handler struct {
	files  *filestore.Store
	blobs  *content.Store
	queue  Publisher
	logger *zap.Logger
}

// NewHandler creates a new files handler.
func NewHandler(files *filestore.Store, blobs *content.Store, queue Publisher, logger *zap.Logger) *Handler {
	return &Handler{files: files, blobs: blobs, queue: queue, logger: logger}
}

// Create handles POST /files. It validates the request, persists content
// for non-folder types, inserts the metadata record, and queues thumbnail
// generation for images.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var in CreateRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Missing name")
		return
	}

	if in.Name == "" {
		jsonutil.BadRequest(w, "Missing name")
		return
	}
	if !models.IsValidType(in.Type) {
		jsonutil.BadRequest(w, "Missing type")
		return
	}
	if in.Data == "" && in.Type != models.TypeFolder {
		jsonutil.BadRequest(w, "Missing data")
		return
	}

	parentID := string(in.ParentID)
	if parentID == "" {
		parentID = models.RootParentID
	}
	if parentID != models.RootParentID {
		oid, err := primitive.ObjectIDFromHex(parentID)
		if err != nil {
			jsonutil.BadRequest(w, "Parent not found")
			return
		}
		// Any user's folder can serve as a parent reference; ownership
		// is not part of the parent check.
		parent, err := h.files.GetByID(r.Context(), oid)
		if err != nil {
			if errors.Is(err, filestore.ErrNotFound) {
				jsonutil.BadRequest(w, "Parent not found")
				return
			}
			h.logger.Error("parent lookup failed", zap.Error(err))
			jsonutil.InternalError(w, "Internal server error")
			return
		}
		if parent.Type != models.TypeFolder {
			jsonutil.BadRequest(w, "Parent is not a folder")
			return
		}
	}

	rec := models.File{
		UserID:   user.ID,
		Name:     in.Name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
		ParentID: parentID,
	}

	if in.Type != models.TypeFolder {
		data, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			jsonutil.BadRequest(w, "Missing data")
			return
		}

		path := h.blobs.NewPath()
		if err := h.blobs.Write(r.Context(), path, data); err != nil {
			h.logger.Error("content write failed",
				zap.String("path", path), zap.Error(err))
			jsonutil.InternalError(w, "Internal server error")
			return
		}
		rec.LocalPath = path
	}

	created, err := h.files.Create(r.Context(), rec)
	if err != nil {
		// The blob, if any, is orphaned here; log enough to find it.
		h.logger.Error("file record insert failed",
			zap.String("name", in.Name),
			zap.String("local_path", rec.LocalPath),
			zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	if created.Type == models.TypeImage {
		if err := h.queue.Publish(r.Context(), user.ID, created.ID); err != nil {
			h.logger.Error("thumbnail enqueue failed",
				zap.String("file_id", created.ID.Hex()), zap.Error(err))
		}
	}

	h.logger.Debug("file created",
		zap.String("file_id", created.ID.Hex()),
		zap.String("type", created.Type),
		zap.String("user_id", user.ID.Hex()))

	jsonutil.Created(w, toResponse(created))
}

// Show handles GET /files/{id}. Only the owner can see a record here,
// regardless of its visibility flag.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, "Not found")
		return
	}

	rec, err := h.files.GetByOwner(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			jsonutil.NotFound(w, "Not found")
			return
		}
		h.logger.Error("file lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	jsonutil.OK(w, toResponse(*rec))
}

// Index handles GET /files. It lists the caller's records under the given
// parent (default root), twenty per zero-based page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	parentID := r.URL.Query().Get("parentId")
	if parentID == "" || parentID == "0" {
		parentID = models.RootParentID
	}

	var page int64
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			page = n
		}
	}

	recs, err := h.files.ListByParent(r.Context(), user.ID, parentID, page)
	if err != nil {
		h.logger.Error("file listing failed",
			zap.String("parent_id", parentID), zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	out := make([]FileResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}

	jsonutil.OK(w, out)
}

// Publish handles PUT /files/{id}/publish.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

// Unpublish handles PUT /files/{id}/unpublish.
func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *Handler) setPublic(w http.ResponseWriter, r *http.Request, isPublic bool) {
	user, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, "Not found")
		return
	}

	rec, err := h.files.SetPublic(r.Context(), id, user.ID, isPublic)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			jsonutil.NotFound(w, "Not found")
			return
		}
		h.logger.Error("visibility update failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	jsonutil.OK(w, toResponse(*rec))
}

// Data handles GET /files/{id}/data. Access rules:
//   - a private record is served only to its owner
//   - a public record is served to anyone without a token
//   - a presented token that fails to resolve gets 404, even for public
//     records, so probing with stale tokens learns nothing
//
// Folders return 204. A size query selects a thumbnail variant.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, "Not found")
		return
	}

	rec, err := h.files.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			jsonutil.NotFound(w, "Not found")
			return
		}
		h.logger.Error("file lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	token := r.Header.Get(auth.TokenHeader)
	user, authed := auth.CurrentUser(r)
	if token != "" {
		if !authed {
			jsonutil.NotFound(w, "Not found")
			return
		}
		if user.ID != rec.UserID && !rec.IsPublic {
			jsonutil.NotFound(w, "Not found")
			return
		}
	}
	if token == "" && !rec.IsPublic {
		jsonutil.NotFound(w, "Not found")
		return
	}

	if rec.Type == models.TypeFolder {
		jsonutil.NoContent(w)
		return
	}

	path := rec.LocalPath
	if size := r.URL.Query().Get("size"); size != "" {
		if !validSize(size) {
			jsonutil.NotFound(w, "Not found")
			return
		}
		width, _ := strconv.Atoi(size)
		path = content.VariantPath(path, width)
	}

	data, err := h.blobs.Read(r.Context(), path)
	if err != nil {
		jsonutil.NotFound(w, "Not found")
		return
	}

	ct := mime.TypeByExtension(filepath.Ext(rec.Name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// validSize reports whether the size query names a generated variant width.
func validSize(s string) bool {
	switch s {
	case "500", "250", "100":
		return true
	}
	return false
}
