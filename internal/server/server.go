// Package server exposes the picker over local HTTP with live history
// updates on a websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/picker"
	"github.com/jmylchreest/pixelpick/internal/store"
)

// Server serves the picker API.
type Server struct {
	app    *picker.App
	hub    *Hub
	logger hclog.Logger

	// busy serialises commands: one pick at a time, like the popup.
	busy sync.Mutex

	snapshotMu sync.RWMutex
	snapshot   []colour.Hex

	httpServer *http.Server
}

// New creates a server for app listening on addr. The server observes the
// history and forwards every change to the websocket hub.
func New(app *picker.App, addr string, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("server")

	s := &Server{
		app:      app,
		hub:      NewHub(logger),
		logger:   logger,
		snapshot: app.History().Entries(),
	}
	app.History().Observe(s)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/pick", s.handlePick)
	mux.HandleFunc("POST /api/copy", s.handleCopy)
	mux.HandleFunc("POST /api/history/{index}/copy", s.handleCopyHistory)
	mux.HandleFunc("DELETE /api/history", s.handleClear)
	mux.HandleFunc("GET /api/ws", s.hub.ServeWS(s.connected))
	return s.logging(mux)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	if err := s.app.CanPick(); err != nil {
		s.logger.Warn("picking is unavailable, pick requests will fail", "error", err)
	}

	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// OnStoreChange reloads the history when another process rewrites it.
func (s *Server) OnStoreChange(change store.Change) {
	if change.Key != store.KeyColorHistory {
		return
	}
	s.busy.Lock()
	defer s.busy.Unlock()

	h := s.app.History()
	before := h.Entries()
	h.Load(context.Background())
	if after := h.Entries(); !slices.Equal(before, after) {
		s.OnHistoryChanged(after)
	}
}

// OnHistoryChanged implements history.Observer. It keeps a snapshot for
// readers so they never wait on a pick in progress.
func (s *Server) OnHistoryChanged(entries []colour.Hex) {
	s.snapshotMu.Lock()
	s.snapshot = slices.Clone(entries)
	s.snapshotMu.Unlock()

	s.hub.OnHistoryChanged(entries)
}

func (s *Server) entries() []colour.Hex {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()
	return slices.Clone(s.snapshot)
}

// StatusPayload reports whether picking is possible here.
type StatusPayload struct {
	CanPick bool   `json:"can_pick"`
	Reason  string `json:"reason,omitempty"`
}

func (s *Server) status() StatusPayload {
	if err := s.app.CanPick(); err != nil {
		return StatusPayload{CanPick: false, Reason: err.Error()}
	}
	return StatusPayload{CanPick: true}
}

func (s *Server) connected() ConnectedPayload {
	return ConnectedPayload{
		HistoryPayload: NewHistoryPayload(s.entries()),
		StatusPayload:  s.status(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type outcomeResponse struct {
	Colour  *colour.Values `json:"color,omitempty"`
	Copied  string         `json:"copied,omitempty"`
	Aborted bool           `json:"aborted,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewHistoryPayload(s.entries()))
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, picker.Pick{})
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	f := colour.FormatHex
	if v := r.URL.Query().Get("format"); v != "" {
		parsed, err := colour.ParseFormat(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		f = parsed
	}
	s.dispatch(w, r, picker.CopyFormat{Format: f})
}

func (s *Server) handleCopyHistory(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid index: %s", r.PathValue("index"))})
		return
	}
	s.dispatch(w, r, picker.CopyHistory{Index: index})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, picker.Clear{})
}

// dispatch runs cmd unless another command is in flight.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd picker.Command) {
	if !s.busy.TryLock() {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "another command is in progress"})
		return
	}
	defer s.busy.Unlock()

	out, err := s.app.Dispatch(r.Context(), cmd)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	resp := outcomeResponse{Copied: out.Copied, Aborted: out.Aborted}
	if out.Colour != "" {
		v := colour.ValuesOf(out.Colour)
		resp.Colour = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, picker.ErrUnsupportedCapability):
		return http.StatusNotImplemented
	case errors.Is(err, picker.ErrNoSuchEntry):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

