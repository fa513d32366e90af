// Package server exposes the daemon over HTTP on a Unix socket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/websocket"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/internal/daemon/engine"
	"github.com/grovetools/statusbar/internal/daemon/store"
	"github.com/grovetools/statusbar/pkg/daemon"
	"github.com/sirupsen/logrus"
)

// Server manages the daemon's HTTP server over a Unix socket.
type Server struct {
	logger   *logrus.Entry
	server   *http.Server
	engine   *engine.Engine
	upgrader websocket.Upgrader
}

// New creates a new Server instance.
func New(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		logger: logger,
		engine: eng,
		upgrader: websocket.Upgrader{
			// The socket is private to the user; there is no browser origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.server = &http.Server{Handler: s.Handler()}
	return s
}

// Handler returns the daemon's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/blocks", s.handleGetBlocks)
	mux.HandleFunc("GET /api/blocks/{id}", s.handleGetBlock)
	mux.HandleFunc("POST /api/click", s.handleClick)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe starts the daemon on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	return s.Serve(listener)
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	err := s.server.Serve(l)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleGetBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Store().Views())
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, ok := s.engine.Store().Find(id)
	if !ok {
		writeError(w, errors.BlockNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleClick accepts one click event in the same JSON form as the click
// stream read by `statusbar run`.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var ev input.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid click event"))
		return
	}
	if err := s.engine.Dispatch(r.Context(), ev); err != nil {
		writeError(w, err)
		return
	}
	s.logger.WithFields(logrus.Fields{"id": ev.Instance, "button": ev.Button.String()}).Debug("Click dispatched")
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	rc := s.engine.RunningConfig()
	if rc == nil {
		http.Error(w, "config not initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// handleStream provides Server-Sent Events (SSE) for real-time updates.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.engine.Store().Subscribe()
	defer s.engine.Store().Unsubscribe(ch)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE client connected")

	send := func(u daemon.StateUpdate) bool {
		data, err := json.Marshal(u)
		if err != nil {
			s.logger.WithError(err).Error("Failed to marshal update")
			return true
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(s.initialUpdate()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case update, ok := <-ch:
			if !ok || !send(toAPIUpdate(update)) {
				return
			}
		}
	}
}

// handleWebSocket streams the same updates as /api/stream and accepts
// click events from the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := s.engine.Store().Subscribe()
	defer s.engine.Store().Unsubscribe(ch)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: clicks in. Any read error ends the session.
	go func() {
		defer cancel()
		for {
			var ev input.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			if err := s.engine.Dispatch(ctx, ev); err != nil {
				s.logger.WithError(err).WithField("id", ev.Instance).Debug("WebSocket click rejected")
			}
		}
	}()

	if err := conn.WriteJSON(s.initialUpdate()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(toAPIUpdate(update)); err != nil {
				return
			}
		}
	}
}

func (s *Server) initialUpdate() daemon.StateUpdate {
	return daemon.StateUpdate{
		UpdateType: daemon.UpdateInitial,
		Blocks:     s.engine.Store().Views(),
	}
}

// toAPIUpdate converts internal store.Update to the public API format.
func toAPIUpdate(u store.Update) daemon.StateUpdate {
	switch u.Type {
	case store.UpdateConfigReload:
		return daemon.StateUpdate{UpdateType: daemon.UpdateConfigReload, Source: u.Source, ConfigFile: u.File}
	case store.UpdateConfigError:
		return daemon.StateUpdate{UpdateType: daemon.UpdateConfigError, Source: u.Source, ConfigFile: u.File, Error: u.Err}
	default:
		return daemon.StateUpdate{UpdateType: daemon.UpdateBlocks, Source: u.Source, Blocks: u.Views}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	statusErr, ok := errors.As(err)
	if !ok {
		statusErr = errors.Wrap(err, errors.ErrCodeInternal, err.Error())
	}
	status := http.StatusInternalServerError
	switch statusErr.Code {
	case errors.ErrCodeBlockNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(statusErr.ToJSON()))
}
