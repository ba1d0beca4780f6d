// Package web provides the admin HTTP API: health, configuration
// read/write, a report preview, and a manual run trigger.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/tjyana/calendar-slack-analyzer/internal/config"
	appLog "github.com/tjyana/calendar-slack-analyzer/internal/log"
	"github.com/tjyana/calendar-slack-analyzer/internal/pipeline"
)

// RunnerFactory builds a pipeline runner for a (possibly updated)
// configuration. The admin API uses it to apply config changes without
// a restart.
type RunnerFactory func(cfg *config.Config) (*pipeline.Runner, error)

// Server exposes the admin API over an http.ServeMux.
type Server struct {
	mu        sync.RWMutex
	cfg       *config.Config
	runner    *pipeline.Runner
	cfgPath   string
	newRunner RunnerFactory
	mux       *http.ServeMux

	// runMu serializes manual /api/run deliveries so a slow Slack call
	// cannot be stacked by repeated triggers.
	runMu sync.Mutex

	// previewMu guards a short-lived cache of the last preview so UI
	// polling does not re-fetch and re-analyze on every request.
	previewMu    sync.RWMutex
	previewCache *previewCache
}

type previewCache struct {
	result    *pipeline.Result
	updatedAt time.Time
}

const previewCacheTTL = 30 * time.Second

// NewServer constructs a Server around the current config and runner.
// cfgPath is where PUT /api/config persists changes.
func NewServer(cfg *config.Config, cfgPath string, runner *pipeline.Runner, newRunner RunnerFactory) *Server {
	s := &Server{
		cfg:       cfg,
		runner:    runner,
		cfgPath:   cfgPath,
		newRunner: newRunner,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// CurrentRunner returns the runner for the most recently applied config.
// Scheduled runs must fetch the runner through this accessor rather than
// capturing it, so a PUT /api/config reaches them too.
func (s *Server) CurrentRunner() *pipeline.Runner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runner
}

// Handler returns the http.Handler for this server, wrapped with basic
// auth when credentials are configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
// Empty username or password counts as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic
// Auth. Credentials are captured at startup; changing them via
// PUT /api/config takes effect on restart.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="CalendarAnalyzer", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/api/report/preview", s.handlePreview)
	s.mux.HandleFunc("/api/run", s.handleRun)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleConfig serves GET (current config, secrets redacted) and PUT
// (validate, persist, rebuild the runner).
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.RLock()
		cfg := s.cfg
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, redactConfig(cfg))
	case http.MethodPut:
		s.handleConfigPut(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleConfigPut(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config JSON: "+err.Error())
		return
	}

	// A masked secret from GET /api/config means "keep the current value".
	s.mu.RLock()
	cur := s.cfg
	s.mu.RUnlock()
	if incoming.Slack.Token == "***" {
		incoming.Slack.Token = cur.Slack.Token
	}
	if incoming.Summary.APIKey == "***" {
		incoming.Summary.APIKey = cur.Summary.APIKey
	}
	if incoming.BasicAuth != nil && cur.BasicAuth != nil && incoming.BasicAuth.Password == "***" {
		incoming.BasicAuth.Password = cur.BasicAuth.Password
	}

	incoming.Normalize()
	if err := incoming.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	runner, err := s.newRunner(&incoming)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := config.Save(s.cfgPath, &incoming); err != nil {
		appLog.Error("config save failed", err, "path", s.cfgPath)
		writeError(w, http.StatusInternalServerError, "failed to persist config")
		return
	}

	s.mu.Lock()
	prev := s.cfg
	s.cfg = &incoming
	s.runner = runner
	s.mu.Unlock()

	s.invalidatePreview()

	appLog.Info("config updated via API", "path", s.cfgPath)
	// The cron entry and listen address are bound at startup.
	if incoming.ReportCron != prev.ReportCron || incoming.Timezone != prev.Timezone {
		appLog.Warn("report schedule changed; restart to apply the new cron entry",
			"report_cron", incoming.ReportCron, "timezone", incoming.Timezone)
	}
	if incoming.Listen != prev.Listen {
		appLog.Warn("listen address changed; restart to apply", "listen", incoming.Listen)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// redactConfig returns a copy of cfg with credentials masked so the
// admin API never echoes secrets.
func redactConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Slack.Token != "" {
		out.Slack.Token = "***"
	}
	if out.Summary.APIKey != "" {
		out.Summary.APIKey = "***"
	}
	if cfg.BasicAuth != nil {
		ba := *cfg.BasicAuth
		if ba.Password != "" {
			ba.Password = "***"
		}
		out.BasicAuth = &ba
	}
	return &out
}

// handlePreview runs the pipeline without delivery and returns the
// structured result. Recent results are cached briefly.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := time.Now()
	s.previewMu.RLock()
	pc := s.previewCache
	s.previewMu.RUnlock()
	if pc != nil && now.Sub(pc.updatedAt) < previewCacheTTL {
		writeJSON(w, http.StatusOK, pc.result)
		return
	}

	runner := s.CurrentRunner()

	res, err := runner.Run(r.Context(), time.Now())
	if err != nil {
		appLog.Error("preview run failed", err)
		writeError(w, http.StatusBadGateway, "report preview failed: "+err.Error())
		return
	}

	s.previewMu.Lock()
	s.previewCache = &previewCache{result: res, updatedAt: time.Now()}
	s.previewMu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) invalidatePreview() {
	s.previewMu.Lock()
	s.previewCache = nil
	s.previewMu.Unlock()
}

// handleRun triggers a full run including Slack delivery. Concurrent
// triggers are rejected rather than queued.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !s.runMu.TryLock() {
		writeError(w, http.StatusConflict, "a report run is already in progress")
		return
	}
	defer s.runMu.Unlock()

	runner := s.CurrentRunner()

	appLog.Info("manual report run triggered via API")
	if err := runner.RunAndSend(r.Context(), time.Now()); err != nil {
		appLog.Error("manual report run failed", err)
		writeError(w, http.StatusBadGateway, "report run failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
