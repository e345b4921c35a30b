// Package server maps REST endpoints onto executor and store calls. It is
// a thin translation layer: request decoding, literal normalization for
// query parameters and envelope encoding, nothing more.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server owns the HTTP listener and its router.
type Server struct {
	httpServer *http.Server
	log        *zap.SugaredLogger
}

// New wires the handler's routes into a router and returns a server ready
// to run on addr.
func New(handler *Handler, addr string, log *zap.SugaredLogger) *Server {
	router := mux.NewRouter()
	router.Use(requestLogging(log))
	router.NotFoundHandler = http.HandlerFunc(notFound)

	handler.RegisterRoutes(router)

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: router},
		log:        log,
	}
}

// Run serves until the listener fails or Close is called.
func (s *Server) Run() error {
	s.log.Infow("server starting", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close drains in-flight requests and stops the listener.
func (s *Server) Close(ctx context.Context) error {
	s.log.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"success": false,
		"message": "Endpoint not found",
	})
}
