package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"modeon/internal/core/model"
	"modeon/internal/core/tracker"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 5 * time.Second
	tokenHeader     = "X-Modeon-Token"
)

// Service is the command surface the HTTP API exposes.
type Service interface {
	StartSession(ctx context.Context, keyword string, patch *model.BreakSettingsPatch) (model.TrackerStatus, error)
	StopSession(ctx context.Context) (model.SessionStats, error)
	Stats() model.SessionStats
	Status() model.TrackerStatus
	UpdateBreakSettings(patch model.BreakSettingsPatch) (model.BreakStatus, error)
	StartBreakNow() model.BreakStatus
	EndBreakNow() model.BreakStatus
	SkipBreak() model.BreakStatus
	ReportTab(tab model.Tab) model.ActivityStatus
	CheckCurrentTab() model.ActivityStatus
	History(ctx context.Context, limit int) ([]model.SessionSummary, error)
}

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	AuthToken      string
	Logger         *slog.Logger
}

// Server serves the JSON API and the WebSocket feed.
type Server struct {
	service        Service
	broadcaster    *Broadcaster
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	authToken      string
	logger         *slog.Logger
}

// NewServer creates a Server.
func NewServer(service Service, broadcaster *Broadcaster, options Options) *Server {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	s := &Server{
		service:        service,
		broadcaster:    broadcaster,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      options.AuthToken,
		logger:         options.Logger.With("component", "http"),
	}

	for _, origin := range options.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

// Snapshot builds the payload pushed to WebSocket clients.
func Snapshot(service Service) SnapshotFunc {
	return func() SnapshotPayload {
		return SnapshotPayload{Status: service.Status(), Stats: service.Stats()}
	}
}

// Handler returns the routed API wrapped in auth and CORS checks.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/session/start", s.handleStart)
	mux.HandleFunc("POST /api/session/stop", s.handleStop)
	mux.HandleFunc("POST /api/breaks/settings", s.handleBreakSettings)
	mux.HandleFunc("POST /api/breaks/start", s.handleBreakCommand(s.service.StartBreakNow))
	mux.HandleFunc("POST /api/breaks/end", s.handleBreakCommand(s.service.EndBreakNow))
	mux.HandleFunc("POST /api/breaks/skip", s.handleBreakCommand(s.service.SkipBreak))
	mux.HandleFunc("POST /api/tabs", s.handleTab)
	mux.HandleFunc("POST /api/tabs/check", s.handleCheckTab)
	return s.withCORS(s.withAuth(mux))
}

// ListenAndServe serves handler on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	logger.Info("server listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	s.logger.Debug("ws client connected", "remote", r.RemoteAddr)
	c := s.broadcaster.AddClient(conn)

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			s.logger.Debug("ws client disconnected", "remote", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Stats())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	sessions, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	if sessions == nil {
		sessions = []model.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Sessions: sessions})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var request startRequest
	if !decodeBody(w, r, &request) {
		return
	}

	settings, err := request.settings()
	if err != nil {
		s.fail(w, err)
		return
	}
	status, err := s.service.StartSession(r.Context(), request.Keyword, settings)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.StopSession(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBreakSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.BreakSettingsPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	status, err := s.service.UpdateBreakSettings(patch)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleBreakCommand(command func() model.BreakStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, command())
	}
}

func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	var tab model.Tab
	if !decodeBody(w, r, &tab) {
		return
	}
	writeJSON(w, http.StatusOK, activityResponse{Activity: s.service.ReportTab(tab)})
}

func (s *Server) handleCheckTab(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, activityResponse{Activity: s.service.CheckCurrentTab()})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tracker.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorize(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if !s.checkOrigin(r) {
				writeError(w, http.StatusForbidden, "origin not allowed")
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+tokenHeader)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if r.Header.Get(tokenHeader) == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if s.allowedOrigins[origin] {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	switch parsed.Scheme {
	case "chrome-extension", "moz-extension":
		return true
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if s.allowedHosts[host] || host == r.Host {
		return true
	}

	hostname := parsed.Hostname()
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
