// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging, CORS, and request limits. AppConfig is everything
// specific to this application: backing store connections, token
// lifetimes, and the thumbnail pipeline.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Redis token store configuration
	RedisAddr     string // host:port of the Redis server
	RedisPassword string // Redis AUTH password (blank for none)
	RedisDB       int    // Redis logical database number

	// Authentication token lifetime
	TokenTTL time.Duration // How long issued tokens stay valid (default: 24h)

	// Content store configuration
	StoragePath string // Directory holding uploaded file content

	// Thumbnail pipeline configuration
	ThumbWorkerInterval time.Duration // How often the worker drains the queue
}
