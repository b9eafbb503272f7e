// Package web serves the dashboard: read-only views over the ledger
// plus settings CRUD. Everything here is a thin pass-through to query;
// the tracking engine never depends on it.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/generalpy101/fix-life/query"
	"github.com/generalpy101/fix-life/snapshot"
)

//go:embed static/*
var staticFS embed.FS

// maxTimeLimitMinutes caps every configurable limit at three hours.
const maxTimeLimitMinutes = 180

type Server struct {
	db       *query.Database
	provider snapshot.Provider
	httpSrv  *http.Server
	addr     string
}

func NewServer(db *query.Database, provider snapshot.Provider) *Server {
	return &Server{db: db, provider: provider}
}

// Start binds to localhost (explicitly, to avoid firewall prompts) and
// serves in the background. Port 0 picks a free ephemeral port; the
// resolved address is returned for the tray to open.
func (s *Server) Start(port int) (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return "", fmt.Errorf("Start: %w", err)
	}
	s.addr = listener.Addr().String()
	s.httpSrv = &http.Server{Handler: s.router(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", s.addr).Msg("web UI available")
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("web server error")
		}
	}()
	return s.addr, nil
}

func (s *Server) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/settings", s.handleSettingsPage)
	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))

	r.Get("/api/timings", s.handleTimings)
	r.Get("/api/total_time", s.handleTotalTime)
	r.Get("/api/violations", s.handleViolations)
	r.Get("/api/processes", s.handleProcesses)
	r.Get("/api/timing_settings", s.handleTimingSettings)
	r.Get("/api/global_timing", s.handleGlobalTiming)
	r.Post("/api/update_exe_classification", s.handleUpdateClassification)
	r.Post("/api/update_time_limit", s.handleUpdateTimeLimit)
	r.Post("/api/update_global_timing", s.handleUpdateGlobalTiming)
	r.Post("/api/refresh_time_limit_list", s.handleRefreshTimeLimits)
	r.Post("/api/are_games_running", s.handleAreGamesRunning)

	return r
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Close() error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Close()
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data, _ := staticFS.ReadFile("static/index.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, _ *http.Request) {
	data, _ := staticFS.ReadFile("static/settings.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleTimings(w http.ResponseWriter, _ *http.Request) {
	timings, err := s.db.GetTimingsToday()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, timings)
}

func (s *Server) handleTotalTime(w http.ResponseWriter, _ *http.Request) {
	total, err := s.db.GetTotalTimeToday()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"total_seconds": total,
		"display":       formatDuration(total),
	})
}

func (s *Server) handleViolations(w http.ResponseWriter, _ *http.Request) {
	violations, err := s.db.GetAllViolations()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, violations)
}

func (s *Server) handleProcesses(w http.ResponseWriter, _ *http.Request) {
	records, err := s.db.GetAllProcesses()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func (s *Server) handleTimingSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := s.db.GetAllTimingSettings()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

func (s *Server) handleGlobalTiming(w http.ResponseWriter, _ *http.Request) {
	limit, err := s.db.GetGlobalTimingLimit()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"limit": limit})
}

func (s *Server) handleUpdateClassification(w http.ResponseWriter, r *http.Request) {
	type req struct {
		ExeName string `json:"exe_name"`
		IsGame  *bool  `json:"is_game"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(body.ExeName)
	if name == "" || body.IsGame == nil {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	// An edit through the dashboard is always a user decision; the
	// classifier will not overrule it afterwards.
	if err := s.db.UpsertClassification(name, *body.IsGame, true); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdateTimeLimit(w http.ResponseWriter, r *http.Request) {
	type req struct {
		ExeName     string `json:"exe_name"`
		MaxTime     *int   `json:"max_time"`
		NotifyLimit int    `json:"notify_limit"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(body.ExeName)
	if name == "" || body.MaxTime == nil {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if *body.MaxTime < 0 || *body.MaxTime > maxTimeLimitMinutes {
		http.Error(w, fmt.Sprintf("max_time must be between 0 and %d minutes", maxTimeLimitMinutes),
			http.StatusBadRequest)
		return
	}
	if err := s.db.SetTimingSetting(name, *body.MaxTime, body.NotifyLimit); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdateGlobalTiming(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Limit *int `json:"limit"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if body.Limit == nil || *body.Limit < 0 || *body.Limit > maxTimeLimitMinutes {
		http.Error(w, fmt.Sprintf("limit must be between 0 and %d minutes", maxTimeLimitMinutes),
			http.StatusBadRequest)
		return
	}
	if err := s.db.SetGlobalTimingLimit(*body.Limit); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleRefreshTimeLimits(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.RefreshTimeLimitList(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleAreGamesRunning(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Games []string `json:"games"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if body.Games == nil {
		http.Error(w, "no games provided", http.StatusBadRequest)
		return
	}

	running := make(map[string]bool, len(body.Games))
	for _, name := range body.Games {
		running[name] = false
	}
	for _, p := range s.provider.Snapshot() {
		if _, asked := running[p.Name()]; asked {
			running[p.Name()] = true
		}
	}
	writeJSON(w, map[string]any{"running_games": running})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("json encode failed")
	}
}

func formatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
