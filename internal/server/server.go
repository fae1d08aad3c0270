package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/rentloop/crm-sync-worker/internal/service"
)

// Syncer runs one sync pass.
type Syncer interface {
	Run(ctx context.Context) (service.SyncResult, error)
}

// Server exposes the sync trigger endpoint. Responses are plain text;
// callers get a row count, details live in the logs.
type Server struct {
	syncer Syncer
}

func New(syncer Syncer) *Server {
	return &Server{syncer: syncer}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sync", s.handleSync)
	return mux
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.syncer.Run(r.Context())
	if err != nil {
		log.Printf("Sync run failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	switch {
	case result.Candidates == 0:
		fmt.Fprintln(w, "No new tenants")
	case result.Processed == 0:
		fmt.Fprintln(w, "Processed 0 tenants successfully")
	default:
		fmt.Fprintf(w, "Synced %d tenants\n", result.Processed)
	}
}
