// Package authapi implements token issuance and revocation.
//
// Endpoints:
//   - GET /connect - exchange Basic credentials for a token
//   - GET /disconnect - revoke the presented token
//
// Tokens live in the token store until their TTL lapses or /disconnect
// removes them.
package authapi

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/fileharbor/fileharbor/internal/app/store/users"
	"github.com/fileharbor/fileharbor/internal/app/system/auth"
	"github.com/fileharbor/fileharbor/internal/app/system/authutil"
	"github.com/fileharbor/fileharbor/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// TokenStore is the slice of the token store this feature needs.
type TokenStore interface {
	Put(ctx context.Context, token, userID string) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Handler handles login and logout requests.
type Handler struct {
	users  *userstore.Store
	tokens TokenStore
	logger *zap.Logger
}

// NewHandler creates a new authapi handler.
func NewHandler(users *userstore.Store, tokens TokenStore, logger *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger}
}

// Connect handles GET /connect. Credentials arrive as HTTP Basic auth; a
// successful exchange returns {"token": <opaque token>}. Every failure
// mode is a uniform 401 so callers cannot distinguish unknown emails from
// wrong passwords.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok || email == "" || password == "" {
		jsonutil.Unauthorized(w, "Unauthorized")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, userstore.ErrNotFound) {
			h.logger.Error("user lookup failed", zap.Error(err))
		}
		jsonutil.Unauthorized(w, "Unauthorized")
		return
	}

	if !authutil.CheckPassword(password, u.PasswordHash) {
		jsonutil.Unauthorized(w, "Unauthorized")
		return
	}

	token := auth.GenerateToken()
	if err := h.tokens.Put(r.Context(), token, u.ID.Hex()); err != nil {
		h.logger.Error("token store write failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	h.logger.Info("user connected", zap.String("user_id", u.ID.Hex()))

	jsonutil.OK(w, map[string]string{"token": token})
}

// Disconnect handles GET /disconnect. The token must currently resolve;
// revoking an unknown or expired token yields 401.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(auth.TokenHeader)
	if token == "" {
		jsonutil.Unauthorized(w, "Unauthorized")
		return
	}

	if _, err := h.tokens.Get(r.Context(), token); err != nil {
		jsonutil.Unauthorized(w, "Unauthorized")
		return
	}

	if err := h.tokens.Delete(r.Context(), token); err != nil {
		h.logger.Error("token delete failed", zap.Error(err))
		jsonutil.InternalError(w, "Internal server error")
		return
	}

	jsonutil.NoContent(w)
}
