package adapthttp

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"growthtrack/internal/app"
)

// IdentityResolver turns a bearer token into the caller's owner id.
type IdentityResolver interface {
	Subject(ctx context.Context, rawToken string) (string, error)
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	measurements *app.MeasurementService
	growth       *app.GrowthService
	identity     IdentityResolver
	log          *zap.Logger

	trustForwardAuth bool
	staticOwner      string
}

// New creates a Server wired to the given application services. identity may
// be nil when only forward auth is used.
func New(ms *app.MeasurementService, gs *app.GrowthService, identity IdentityResolver, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{measurements: ms, growth: gs, identity: identity, log: log}
}

// WithForwardAuth trusts the Remote-User header set by an authenticating
// reverse proxy.
func (s *Server) WithForwardAuth() *Server {
	s.trustForwardAuth = true
	return s
}

// WithoutAuth makes every request act as ownerID (for tests).
func (s *Server) WithoutAuth(ownerID string) *Server {
	s.staticOwner = ownerID
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	protected := http.NewServeMux()
	protected.HandleFunc("POST /measurements", s.handleCreateMeasurement)
	protected.HandleFunc("POST /measurements/batch", s.handleBatchCreate)
	protected.HandleFunc("GET /measurements/{id}", s.handleGetMeasurement)
	protected.HandleFunc("PATCH /measurements/{id}", s.handleUpdateMeasurement)
	protected.HandleFunc("DELETE /measurements/{id}", s.handleDeleteMeasurement)

	protected.HandleFunc("GET /subjects/{subjectId}/measurements", s.handleListMeasurements)
	protected.HandleFunc("GET /subjects/{subjectId}/chart", s.handleChart)
	protected.HandleFunc("GET /subjects/{subjectId}/trends", s.handleTrends)
	protected.HandleFunc("GET /subjects/{subjectId}/summary", s.handleSummary)

	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return s.loggingMiddleware(withNoCache(root))
}
