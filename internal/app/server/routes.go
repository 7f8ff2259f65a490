package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"tubetext/internal/auth"
	"tubetext/internal/pool"
	"tubetext/internal/transcript"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// OpenRoutes starts the API server. The transcript routes are what the web
// layer consumes; /warm is the deployment hook that keeps the proxy pool
// fresh.
func OpenRoutes(port int, proxyPool *pool.Pool, transcripts *transcript.Client) error {
	handler := &handlerSet{pool: proxyPool, transcripts: transcripts}

	router := http.NewServeMux()
	router.HandleFunc("GET /healthz", handler.health)
	router.HandleFunc("GET /transcript/{id}", handler.getTranscript)
	router.HandleFunc("GET /transcripts/{id}", handler.listTranscripts)
	router.Handle("POST /warm", auth.RequireAuth(http.HandlerFunc(handler.warm)))
	router.Handle("GET /settings", auth.RequireAuth(http.HandlerFunc(handler.getSettings)))
	router.Handle("PUT /settings", auth.RequireAuth(http.HandlerFunc(handler.updateSettings)))

	addr := fmt.Sprintf(":%d", port)
	log.Info("Starting API server", "addr", addr)
	return http.ListenAndServe(addr, enableCORS(router))
}
