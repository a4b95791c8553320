// Package api serves read-only views of a running dungeon over HTTP and a
// WebSocket stream of per-tick frames for external renderers.
// GET endpoints are public. POST endpoints require a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/engine"
	"github.com/gist-rs/the-rust-of-us/internal/persistence"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

const maxStreamConns = 8

// Server serves the dungeon state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // optional run journal
	RunID    string
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	StartedAt time.Time

	// Active stream connection count (atomic).
	streamConns int32
}

// Handler builds the API routes.
func (s *Server) Handler() http.Handler {
	streamLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgent)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/journal", s.handleJournal)

	// WebSocket frame stream.
	mux.HandleFunc("/api/v1/stream", RateLimitMiddleware(streamLimiter, s.handleStream))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no DUNGEON_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tick := s.Sim.CurrentTick()
	stats := s.Sim.StatsSnapshot()

	status := map[string]any{
		"name":           "dungeon",
		"seed":           s.Sim.Dungeon.Seed,
		"run_id":         s.RunID,
		"tick":           tick,
		"ticks":          humanize.Comma(int64(tick)),
		"alive_humans":   stats.Alive[agents.KindHuman],
		"alive_monsters": stats.Alive[agents.KindMonster],
		"deaths":         stats.Deaths,
		"looted":         stats.Looted,
		"cleared":        stats.Cleared,
		"game_over":      stats.Over,
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
		status["sim_time"] = s.Eng.SimTime(tick).String()
	}
	if !s.StartedAt.IsZero() {
		status["started"] = humanize.Time(s.StartedAt)
	}
	writeJSON(w, status)
}

// handleMap returns the dungeon layout: one glyph row per line plus the
// named cells.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	d := s.Sim.Dungeon
	coords := func(cells []world.Cell) []string {
		out := make([]string, 0, len(cells))
		for _, c := range cells {
			out = append(out, world.FormatCoord(c))
		}
		return out
	}

	resp := map[string]any{
		"seed":      d.Seed,
		"size":      d.Size,
		"entrance":  world.FormatCoord(d.Entrance),
		"exit":      world.FormatCoord(d.Exit),
		"gates":     coords(d.Gates),
		"treasures": coords(d.Treasures),
		"graves":    coords(d.Graves),
		"carved":    coords(d.Carved),
	}
	if d.Layout != nil {
		resp["rows"] = d.Layout.Rows()
	}
	writeJSON(w, resp)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	frame := s.Sim.Snapshot()

	// Optional kind filter.
	if kind := r.URL.Query().Get("kind"); kind != "" {
		k, err := agents.ParseKind(kind)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filtered := frame.Agents[:0]
		for _, a := range frame.Agents {
			if a.Kind == k {
				filtered = append(filtered, a)
			}
		}
		frame.Agents = filtered
	}
	writeJSON(w, frame.Agents)
}

// handleAgent returns one agent: GET /api/v1/agent/:id.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/agent/")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}
	a, err := s.Sim.Agent(agents.AgentID(id))
	if errors.Is(err, agents.ErrAgentMissing) {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("agent lookup failed", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, a)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	events := s.Sim.RecentEvents(0)

	// Optional kind filter.
	if kind := r.URL.Query().Get("kind"); kind != "" {
		var filtered []engine.Event
		for _, e := range events {
			if string(e.Kind) == kind {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.StatsSnapshot())
}

// handleJournal returns the run's journaled events, newest first.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled (no DUNGEON_DB set)", http.StatusNotFound)
		return
	}
	recs, err := s.DB.RecentEvents(s.RunID, queryLimit(r, 50))
	if err != nil {
		slog.Error("journal query failed", "error", err)
		http.Error(w, "journal query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, recs)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "no engine", http.StatusNotFound)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func queryLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

// acquireStream reserves a stream slot.
func (s *Server) acquireStream() bool {
	if atomic.AddInt32(&s.streamConns, 1) > maxStreamConns {
		atomic.AddInt32(&s.streamConns, -1)
		return false
	}
	return true
}

func (s *Server) releaseStream() { atomic.AddInt32(&s.streamConns, -1) }
