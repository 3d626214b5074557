package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
)

// Server manages the HTTP server exposing the consent flow endpoints
type Server struct {
	httpServer *http.Server

	httpPort int

	consentHandler *ConsentHandler
}

// Config contains server configuration
type Config struct {
	HTTPPort int

	ConsentHandler *ConsentHandler
}

// New creates a new server with the given configuration
func New(cfg Config) *Server {
	return &Server{
		httpPort:       cfg.HTTPPort,
		consentHandler: cfg.ConsentHandler,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	router := mux.NewRouter()

	router.Handle("/consent", s.consentHandler).Methods(http.MethodGet)
	router.HandleFunc("/healthz/live", s.handleLiveness).Methods(http.MethodGet)
	router.HandleFunc("/healthz/ready", s.handleReadiness).Methods(http.MethodGet)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.httpPort))
	if err != nil {
		return fmt.Errorf("failed to listen on HTTP port %d: %w", s.httpPort, err)
	}

	s.httpServer = &http.Server{
		Handler: router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		fmt.Printf("HTTP server listening on :%d\n", s.httpPort)
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
