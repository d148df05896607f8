// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	authapifeature "github.com/fileharbor/fileharbor/internal/app/features/authapi"
	filesfeature "github.com/fileharbor/fileharbor/internal/app/features/files"
	healthfeature "github.com/fileharbor/fileharbor/internal/app/features/health"
	statusfeature "github.com/fileharbor/fileharbor/internal/app/features/status"
	usersfeature "github.com/fileharbor/fileharbor/internal/app/features/users"
	filestore "github.com/fileharbor/fileharbor/internal/app/store/files"
	jobstore "github.com/fileharbor/fileharbor/internal/app/store/jobs"
	userstore "github.com/fileharbor/fileharbor/internal/app/store/users"
	"github.com/fileharbor/fileharbor/internal/app/system/auth"
	"github.com/fileharbor/fileharbor/internal/app/system/thumbs"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The whole surface is a JSON API:
// identity loading runs globally, and each feature router decides which of
// its endpoints require a token.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	users := userstore.New(deps.MongoDatabase)
	files := filestore.New(deps.MongoDatabase)
	jobs := jobstore.New(deps.MongoDatabase)

	authenticator := auth.New(deps.Tokens, users, logger)

	r := chi.NewRouter()

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Identity middleware: resolves X-Token into a context identity when
	// valid. Enforcement happens per route.
	r.Use(authenticator.LoadIdentity)

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Tokens, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Backend status and counters
	statusHandler := statusfeature.NewHandler(deps.Tokens, deps.MongoClient, users, files, logger)
	statusfeature.MountRoutes(r, statusHandler)

	// Account registration and current-user lookup
	usersHandler := usersfeature.NewHandler(users, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Token issuance and revocation
	authHandler := authapifeature.NewHandler(users, deps.Tokens, logger)
	authapifeature.MountRoutes(r, authHandler)

	// File management
	filesHandler := filesfeature.NewHandler(files, deps.Blobs, thumbs.NewQueue(jobs), logger)
	r.Mount("/files", filesfeature.Routes(filesHandler))

	return r, nil
}
