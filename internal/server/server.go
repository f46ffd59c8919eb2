// Package server hosts the contact form over HTTP: the rendered page, the
// form-encoded submit, a JSON validation endpoint and a websocket session
// that re-validates on every keystroke.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/form"
	"github.com/conneroisu/contactform/internal/logging"
)

// Server serves the contact form.
type Server struct {
	config *config.Config
	logger logging.Logger

	// form settings are swapped on config reload
	formConfig atomic.Pointer[config.FormConfig]

	httpServer  *http.Server
	listener    net.Listener
	serverMutex sync.RWMutex

	sessions      map[*websocket.Conn]struct{}
	sessionsMutex sync.Mutex

	shutdownOnce sync.Once
	ready        chan struct{}
}

// New creates a server for cfg. A nil logger discards output.
func New(cfg *config.Config, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		config:   cfg,
		logger:   logger.WithComponent("server"),
		sessions: make(map[*websocket.Conn]struct{}),
		ready:    make(chan struct{}),
	}
	formCfg := cfg.Form
	s.formConfig.Store(&formCfg)

	return s
}

// UpdateForm swaps the form settings used by new renders and sessions.
// Running sessions keep the rules they started with.
func (s *Server) UpdateForm(fc config.FormConfig) {
	s.formConfig.Store(&fc)
	s.logger.Info(context.Background(), "Form settings reloaded",
		"title", fc.Title,
		"first_name_min_length", fc.FirstNameMinLength)
}

func (s *Server) form() config.FormConfig {
	return *s.formConfig.Load()
}

func (s *Server) newForm() *form.ContactForm {
	return form.New(form.WithRules(s.form().Rules()))
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /static/contact-form.js", s.handleScript)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.addMiddleware(mux)
}

// Start listens on the configured address and serves until ctx is cancelled
// or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeServerStart,
			fmt.Sprintf("failed to listen on %s", s.config.Server.Addr()), err)
	}

	s.serverMutex.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	server := s.httpServer
	s.serverMutex.Unlock()
	close(s.ready)

	s.logger.Info(ctx, "Serving contact form", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, err, "Shutdown failed")
		}
	}()

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return errors.NewNetworkError(errors.ErrCodeServerStart, "server error", err)
	}

	return nil
}

// Ready is closed once Start is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown closes live sessions and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		// Hijacked websocket connections are not tracked by http.Server.
		s.sessionsMutex.Lock()
		for conn := range s.sessions {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		s.sessions = make(map[*websocket.Conn]struct{})
		s.sessionsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// SessionCount returns the number of open websocket sessions.
func (s *Server) SessionCount() int {
	s.sessionsMutex.Lock()
	defer s.sessionsMutex.Unlock()
	return len(s.sessions)
}

func (s *Server) trackSession(conn *websocket.Conn) {
	s.sessionsMutex.Lock()
	s.sessions[conn] = struct{}{}
	s.sessionsMutex.Unlock()
}

func (s *Server) untrackSession(conn *websocket.Conn) {
	s.sessionsMutex.Lock()
	delete(s.sessions, conn)
	s.sessionsMutex.Unlock()
}
