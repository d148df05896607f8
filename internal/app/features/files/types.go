// internal/app/features/files/types.go
package files

import (
	"encoding/json"
	"strings"

	"github.com/fileharbor/fileharbor/internal/domain/models"
)

// ParentID carries the parent reference across the wire. Clients send either
// the number 0 (root) or a folder's hex id as a string; responses mirror the
// same convention, so root round-trips as a bare 0.
type ParentID string

// UnmarshalJSON accepts 0, "0", null, and quoted hex strings.
func (p *ParentID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" || s == "0" {
		*p = ParentID(models.RootParentID)
		return nil
	}
	*p = ParentID(s)
	return nil
}

// MarshalJSON emits the number 0 for root and a quoted string otherwise.
func (p ParentID) MarshalJSON() ([]byte, error) {
	if string(p) == models.RootParentID || p == "" {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

// CreateRequest is the POST /files request body.
type CreateRequest struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	ParentID ParentID `json:"parentId"`
	IsPublic bool     `json:"isPublic"`
	Data     string   `json:"data"`
}

// FileResponse is the client view of a metadata record. LocalPath is
// deliberately absent.
type FileResponse struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	IsPublic bool     `json:"isPublic"`
	ParentID ParentID `json:"parentId"`
}

func toResponse(f models.File) FileResponse {
	return FileResponse{
		ID:       f.ID.Hex(),
		UserID:   f.UserID.Hex(),
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: ParentID(f.ParentID),
	}
}
