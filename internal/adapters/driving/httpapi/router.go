package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/quaestor/internal/logger"
)

// loggingMiddleware logs request details and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// NewRouter creates and configures the HTTP router.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	r.Use(loggingMiddleware)

	r.HandleFunc("/query", handler.HandleQuery).Methods(http.MethodPost)
	r.HandleFunc("/chunks", handler.HandleAddChunks).Methods(http.MethodPost)
	r.HandleFunc("/sources/{source}", handler.HandleDeleteSource).Methods(http.MethodDelete)
	r.HandleFunc("/clear", handler.HandleClear).Methods(http.MethodPost)
	r.HandleFunc("/healthz", handler.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", handler.HandleStats).Methods(http.MethodGet)

	return r
}
