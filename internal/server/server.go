package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/sequence"
	"github.com/claude/circuitry/internal/session"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *session.Store
	catalog  catalog.Catalog
	defaults sequence.GenerateOptions
	log      *slog.Logger
	apiKey   string
	whois    whoIser
	router   chi.Router
}

// New creates a new Server with all routes configured. Generation requests
// that omit tuning fields fall back to defaults. An empty apiKey leaves the
// mutating routes open.
func New(store *session.Store, defaults sequence.GenerateOptions, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		catalog:  store.Catalog(),
		defaults: defaults,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale enables tailnet identity lookups for incoming requests.
func (s *Server) SetTailscale(lc whoIser) {
	s.whois = lc
}

// SetMCP mounts a streamable MCP endpoint at /mcp.
func (s *Server) SetMCP(mcpServer *server.MCPServer) {
	h := server.NewStreamableHTTPServer(mcpServer)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Handle("/mcp", h)
	})
}

func (s *Server) routes() {
	s.router.Use(s.Identity)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/me", s.handleMe)

	// Catalog (read-only)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/muscle-groups", s.handleMuscleGroups)

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		// Validation is pure and never touches a session
		r.Post("/validate", s.handleValidate)

		r.Get("/", s.handleListWorkouts)
		r.Get("/{id}", s.handleGetWorkout)
		r.Get("/{id}/options", s.handleOptions)
		r.Get("/{id}/history", s.handleHistory)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/", s.handleGenerate)
			r.Delete("/{id}", s.handleDeleteWorkout)
			r.Post("/{id}/replace", s.handleReplace)
			r.Post("/{id}/undo", s.handleUndo)
			r.Post("/{id}/redo", s.handleRedo)
			r.Delete("/{id}/history", s.handleClearHistory)
		})
	})
}
