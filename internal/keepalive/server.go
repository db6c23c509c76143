// Package keepalive runs a tiny HTTP server so that hosting platforms which
// ping the process over HTTP treat the bot as alive.
package keepalive

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server answers liveness probes with a fixed body.
type Server struct {
	srv *http.Server
}

// New creates a keepalive server listening on the given port.
func New(port string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRoot)

	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in a new goroutine and returns immediately.
func (s *Server) Start() {
	go func() {
		slog.Info("keepalive server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("keepalive server failed", "error", err)
		}
	}()
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Bot is running!"))
}
