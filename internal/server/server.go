// Package server exposes read-only stats of shared profiles over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/abhisek/utntracker/internal/profile"
	"github.com/abhisek/utntracker/internal/stats"
)

// ResponseCache stores rendered response bodies.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Checker is a backend that can report readiness.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Cache    ResponseCache
	CacheTTL time.Duration
	// Checks are pinged by /readyz, keyed by backend name.
	Checks map[string]Checker
}

// Server serves the stats API.
type Server struct {
	profiles profile.Repo
	cache    ResponseCache
	ttl      time.Duration
	checks   map[string]Checker
}

// New creates a server reading profiles from repo.
func New(repo profile.Repo, opts Options) *Server {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Server{
		profiles: repo,
		cache:    opts.Cache,
		ttl:      ttl,
		checks:   opts.Checks,
	}
}

// CacheKey is the response cache key of a profile's stats.
func CacheKey(uid string) string {
	return "stats:" + uid
}

// Handler returns the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)
	return logRequests(cors(r))
}

type statsResponse struct {
	UID           string                       `json:"uid"`
	Plan          *string                      `json:"plan"`
	YearStarted   *int                         `json:"yearStarted"`
	SubjectData   map[string]json.RawMessage   `json:"subjectData"`
	Electives     map[string]profile.Placement `json:"electives"`
	SelectedStats json.RawMessage              `json:"selectedStats"`
	Stats         stats.Report                 `json:"stats"`
	Public        bool                         `json:"public"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	if uid == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Missing uid parameter",
			Message: "Please provide a uid parameter in the URL",
		})
		return
	}

	ctx := r.Context()
	key := CacheKey(uid)
	if s.cache != nil {
		body, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("stats cache read failed", "uid", uid, "error", err)
		}
		if ok {
			writeBody(w, http.StatusOK, body)
			return
		}
	}

	p, err := s.profiles.Get(ctx, uid)
	switch {
	case errors.Is(err, profile.ErrNotFound), errors.Is(err, profile.ErrInvalidUID):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "User not found",
			Message: "This profile does not exist",
		})
		return
	case err != nil:
		slog.Error("load profile failed", "uid", uid, "error", err)
		writeServerError(w)
		return
	}

	if !p.Public {
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error:   "Private profile",
			Message: "This profile is not public",
		})
		return
	}

	body, err := json.Marshal(renderStats(uid, p))
	if err != nil {
		slog.Error("encode stats failed", "uid", uid, "error", err)
		writeServerError(w)
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
			slog.Warn("stats cache write failed", "uid", uid, "error", err)
		}
	}
	writeBody(w, http.StatusOK, body)
}

func renderStats(uid string, p *profile.Profile) statsResponse {
	resp := statsResponse{
		UID:           uid,
		YearStarted:   p.YearStarted,
		SubjectData:   p.SubjectData,
		Electives:     p.Electives,
		SelectedStats: p.SelectedStats,
		Stats:         p.Stats(),
		Public:        true,
	}
	if p.Plan != "" {
		name := p.Plan
		resp.Plan = &name
	}
	if resp.SubjectData == nil {
		resp.SubjectData = map[string]json.RawMessage{}
	}
	if resp.Electives == nil {
		resp.Electives = map[string]profile.Placement{}
	}
	if len(resp.SelectedStats) == 0 {
		resp.SelectedStats = json.RawMessage("[]")
	}
	return resp
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "backend", name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "backend": name})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "Server error",
		Message: "Error loading profile data",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"Server error"}`, http.StatusInternalServerError)
		return
	}
	writeBody(w, code, body)
}

func writeBody(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
