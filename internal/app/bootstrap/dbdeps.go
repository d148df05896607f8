// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/fileharbor/fileharbor/internal/app/store/content"
	tokenstore "github.com/fileharbor/fileharbor/internal/app/store/tokens"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The Shutdown
// hook is responsible for closing these connections gracefully.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Tokens holds authentication tokens in Redis
	Tokens *tokenstore.Store

	// Blobs stores raw uploaded content on disk
	Blobs *content.Store
}
