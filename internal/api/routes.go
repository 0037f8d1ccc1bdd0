// Route registration and go-chi router setup.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/peterholko-pingidentity/action-agent/internal/api/handlers"
	apmiddleware "github.com/peterholko-pingidentity/action-agent/internal/api/middleware"
	"github.com/peterholko-pingidentity/action-agent/internal/domain/run"
)

// Deps carries everything the router needs, constructed once at startup and
// passed by reference. No package-level state.
type Deps struct {
	Agent       handlers.Invoker
	Recorder    *run.Recorder
	JWTSecret   []byte
	Timeout     time.Duration
	A2AHandler  http.Handler
	A2ABasePath string
}

// NewRouter creates and configures the chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Liveness probes used by the hosting platform.
	liveness := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`)) //nolint:errcheck
	}
	r.Get("/ping", liveness)
	r.Get("/health", liveness)

	schemaHandler := handlers.NewSchemaHandler()
	r.Get("/schema", schemaHandler.Get)

	// ===== ACTION ROUTES (instruction auth when a secret is configured) =====

	envelopeHandler := handlers.NewEnvelopeHandler(deps.Agent, deps.Recorder, deps.Timeout)
	invokeHandler := handlers.NewInvokeHandler(deps.Agent, deps.Recorder, deps.Timeout)
	runHandler := handlers.NewRunHandler(deps.Recorder)

	r.Group(func(r chi.Router) {
		r.Use(apmiddleware.InstructionAuth(deps.JWTSecret))

		r.Post("/", envelopeHandler.Handle)     // vendor function-call envelope
		r.Post("/invoke", invokeHandler.Invoke) // plain JSON
		r.Get("/runs", runHandler.List)
		r.Get("/runs/{id}", runHandler.Get)
	})

	// Agent-to-agent routes are owned by the framework handler; mount it at
	// the configured base path.
	if deps.A2AHandler != nil {
		basePath := deps.A2ABasePath
		if basePath == "" {
			basePath = "/a2a"
		}
		r.Mount(basePath, deps.A2AHandler)
	}

	return r
}
