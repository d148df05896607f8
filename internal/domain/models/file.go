// internal/domain/models/file.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File record types.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
	TypeImage  = "image"
)

// RootParentID is the sentinel parent value for records at the root of a
// user's tree. It is stored and transmitted as the string "0" rather than a
// real ObjectID hex, preserving the external contract.
const RootParentID = "0"

// File represents a file or folder metadata record.
//
// ParentID is either RootParentID or the hex of an existing folder record.
// LocalPath is the content address on disk and is set only for non-folder
// types; it is internal and never exposed to clients.
type File struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Name      string             `bson:"name"`
	Type      string             `bson:"type"`
	IsPublic  bool               `bson:"is_public"`
	ParentID  string             `bson:"parent_id"`
	LocalPath string             `bson:"local_path,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

// IsValidType reports whether t is one of the accepted record types.
func IsValidType(t string) bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// IsRoot returns true if the record sits at the root of its owner's tree.
func (f *File) IsRoot() bool {
	return f.ParentID == RootParentID
}
