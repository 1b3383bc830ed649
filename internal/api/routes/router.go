package routes

import (
	"net/http"

	"github.com/zatekoja/elastic-opd/internal/api/handlers"
	"github.com/zatekoja/elastic-opd/internal/api/middleware"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/observability"
)

// Config holds the dependencies for the router
type Config struct {
	DoctorHandler *handlers.DoctorHandler
	QueueHandler  *handlers.QueueHandler
	TokenHandler  *handlers.TokenHandler
	SSEHandler    *handlers.SSEHandler
	Metrics       *observability.Metrics
}

// NewRouter creates the HTTP router with all routes and middleware
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /api/doctors", cfg.DoctorHandler.CreateDoctor)
	mux.HandleFunc("GET /api/doctors", cfg.DoctorHandler.ListDoctors)
	mux.HandleFunc("GET /api/doctors/{id}", cfg.DoctorHandler.GetDoctor)
	mux.HandleFunc("GET /api/doctors/{id}/queue", cfg.QueueHandler.GetQueue)
	mux.HandleFunc("POST /api/doctors/{id}/delay", cfg.QueueHandler.AddDelay)

	mux.HandleFunc("POST /api/tokens/issue", cfg.TokenHandler.IssueToken)
	mux.HandleFunc("PATCH /api/tokens/{id}/cancel", cfg.TokenHandler.CancelToken)

	// Streaming endpoints are only available when an event bus is wired
	if cfg.SSEHandler != nil {
		mux.HandleFunc("GET /api/stream/doctors/{id}/queue", cfg.SSEHandler.StreamQueueUpdates)
		mux.HandleFunc("GET /api/stream/queues", cfg.SSEHandler.StreamAllUpdates)
	}

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	if cfg.Metrics != nil {
		handler = middleware.ObservabilityMiddleware(cfg.Metrics)(handler)
	}
	handler = middleware.CORSMiddleware(handler)

	return handler
}
