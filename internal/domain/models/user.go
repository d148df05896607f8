// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. Email is the login identifier and is
// unique across the users collection. PasswordHash is a bcrypt hash and is
// never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
