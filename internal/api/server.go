package api

import (
	"log"
	"net/http"
	"time"
)

// NewMux builds the route table for the façade's HTTP surface (§6.3
// "serve"), following the teacher's flat http.ServeMux method+path
// routing.
func NewMux(s *Server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HandleHealth)
	mux.HandleFunc("POST /api/v1/search", s.HandleSearch)
	mux.HandleFunc("POST /api/v1/items", s.HandleAdd)
	mux.HandleFunc("GET /api/v1/items", s.HandleGet)
	mux.HandleFunc("DELETE /api/v1/items", s.HandleDelete)
	mux.HandleFunc("GET /api/v1/stats", s.HandleStats)

	return mux
}

// MiddlewareChain wraps the router with CORS handling and request
// logging, the same shape as the teacher's server middleware.
func MiddlewareChain(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)

		logger.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
