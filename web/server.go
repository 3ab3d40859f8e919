// Package web exposes the REST, SSE, and websocket surface of the
// narrative server.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"escape-chat/errors"
	"escape-chat/observability"
	"escape-chat/services"
)

// replayLimit caps how many history events a fresh subscriber receives.
const replayLimit = 20

type Server struct {
	log        *slog.Logger
	service    services.IDialogueService
	monitoring *observability.MonitoringManager
	bufferSize int
}

func NewServer(log *slog.Logger, service services.IDialogueService,
	monitoring *observability.MonitoringManager, connectionBufferSize int) *Server {
	return &Server{
		log:        log,
		service:    service,
		monitoring: monitoring,
		bufferSize: connectionBufferSize,
	}
}

// Routes wires every endpoint on a standard mux. Paths follow the
// method+pattern syntax so the mux rejects wrong verbs for us.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /characters", s.handleCharacters)
	mux.HandleFunc("POST /rooms/{roomId}/setup-dialogue", s.handleSetupDialogue)
	mux.HandleFunc("POST /rooms/{roomId}/next-part", s.handleNextPart)
	mux.HandleFunc("POST /rooms/{roomId}/part/{n}", s.handleGetPart)
	mux.HandleFunc("GET /rooms/{roomId}/stream", s.handleStream)
	mux.HandleFunc("GET /ws/{roomId}", s.handleSocket)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat Server is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitoring.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{
		"status":  "error",
		"message": err.Error(),
	})
}

// WithServer builds the http.Server around the mux. Write timeout stays
// unset: SSE and websocket connections are long lived.
func (s *Server) WithServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
