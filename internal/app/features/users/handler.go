// Package users implements account registration and the current-user
// endpoint.
//
// Endpoints:
//   - POST /users - register with email and password
//   - GET /users/me - fetch the authenticated user's id and email
package users

import (
	"errors"
	"net/http"

	userstore "github.com/fileharbor/fileharbor/internal/app/store/users"
	"github.com/fileharbor/fileharbor/internal/app/system/auth"
	"github.com/fileharbor/fileharbor/internal/app/system/authutil"
	"github.com/fileharbor/fileharbor/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// Handler handles account requests.
type Handler struct {
	users  *userstore.Store
	logger *zap.Logger
}

// NewHandler creates a new users handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// UserResponse is the client view of an account.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Register handles POST /users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Missing email")
		return
	}
	if in.Email == "" {
		jsonutil.BadRequest(w, "Missing email")
		return
	}
	if in.Password == "" {
		jsonutil.BadRequest(w, "Missing password")
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("password hash failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	u, err := h.users.Create(r.Context(), in.Email, hash)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			jsonutil.BadRequest(w, "Already exist")
			return
		}
		h.logger.Error("user insert failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	h.logger.Info("user registered", zap.String("user_id", u.ID.Hex()))

	jsonutil.Created(w, UserResponse{ID: u.ID.Hex(), Email: u.Email})
}

// Me handles GET /users/me. The auth middleware guarantees an identity is
// present.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	jsonutil.OK(w, UserResponse{ID: user.ID.Hex(), Email: user.Email})
}
