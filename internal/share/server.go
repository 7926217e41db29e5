// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/jeranaias/parley/internal/logging"
)

// ============================================================================
// Constants
// ============================================================================

const (
	// DefaultPort is the default share server port.
	DefaultPort = 8790

	// MaxRequestBodySize limits request bodies to 1MB. A snapshot a person
	// would realistically share fits well inside this.
	MaxRequestBodySize = 1024 * 1024

	// adminCodeHeader carries the TOTP code for admin-only endpoints.
	adminCodeHeader = "X-Admin-Code"
)

// ============================================================================
// Server
// ============================================================================

// Server hosts published snapshots over HTTP. It implements the RecordStore
// contract on the wire so remote clients behave exactly like a local store.
type Server struct {
	port    int
	router  *http.ServeMux
	server  *http.Server
	records RecordStore
	log     logging.Logger
	cors    *CORSConfig
	limiter *RateLimiter

	// adminTOTPSecret gates destructive admin endpoints. Empty disables them.
	adminTOTPSecret string

	stats serverStats
}

// serverStats tracks request counters since startup.
type serverStats struct {
	started time.Time
	created atomic.Int64
	fetched atomic.Int64
	viewed  atomic.Int64
}

// recordDeleter is the optional deletion capability. Stores that cannot
// delete (append-only remotes) simply do not implement it.
type recordDeleter interface {
	Delete(id string) error
}

// NewServer creates a share server on the given port backed by records.
// Port 0 selects DefaultPort.
func NewServer(port int, records RecordStore, log logging.Logger) *Server {
	if port == 0 {
		port = DefaultPort
	}
	if log == nil {
		log = logging.Nop()
	}

	s := &Server{
		port:    port,
		router:  http.NewServeMux(),
		records: records,
		log:     log.With("share-server"),
		cors:    DefaultCORSConfig(),
		limiter: DefaultRateLimiter(),
	}
	s.stats.started = time.Now()
	s.setupRoutes()
	return s
}

// WithAdminTOTP enables admin endpoints gated by TOTP codes for the given
// base32 secret.
func (s *Server) WithAdminTOTP(secret string) *Server {
	s.adminTOTPSecret = secret
	return s
}

// WithCORS overrides the CORS configuration.
func (s *Server) WithCORS(config *CORSConfig) *Server {
	if config != nil {
		s.cors = config
	}
	return s
}

// WithRateLimiter overrides the rate limiter.
func (s *Server) WithRateLimiter(limiter *RateLimiter) *Server {
	if limiter != nil {
		s.limiter = limiter
	}
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /v1/shares", s.handleCreate)
	s.router.HandleFunc("GET /v1/shares/{id}", s.handleFetch)
	s.router.HandleFunc("POST /v1/shares/{id}/views", s.handleIncrementViews)
	s.router.HandleFunc("DELETE /v1/shares/{id}", s.handleDelete)
	s.router.HandleFunc("GET /v1/stats", s.handleStats)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the fully composed handler including middleware. Useful
// for tests and for embedding the share API into another server.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.log),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.log),
		CORSMiddleware(s.cors),
		RateLimitMiddleware(s.limiter, s.log),
	)(s.router)
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	// SECURITY: bind to localhost only. Exposing the share server to a
	// network is an explicit reverse-proxy decision, not a default.
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Infof("share server listening on http://%s", addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Infof("shutting down share server")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// Handlers
// ============================================================================

// createResponse is returned from POST /v1/shares.
type createResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Protected bool      `json:"protected"`
}

// viewsResponse is returned from POST /v1/shares/{id}/views.
type viewsResponse struct {
	ID    string `json:"id"`
	Views int    `json:"views"`
}

// statsResponse is returned from GET /v1/stats.
type statsResponse struct {
	UptimeSeconds int64 `json:"uptimeSeconds"`
	SharesCreated int64 `json:"sharesCreated"`
	SharesFetched int64 `json:"sharesFetched"`
	ViewsRecorded int64 `json:"viewsRecorded"`
}

// handleCreate stores a new snapshot.
//
// The client assigns the ID and hashes any passphrase before publishing, so
// the server never sees plaintext passphrases.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var snap Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", "invalid_json")
		return
	}

	if err := snap.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), "invalid_snapshot")
		return
	}

	// Views always start at zero regardless of what the client sent.
	snap.Views = 0
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	if err := s.records.Create(snap); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), "create_failed")
		return
	}

	s.stats.created.Add(1)
	s.writeJSON(w, http.StatusCreated, createResponse{
		ID:        snap.ID,
		CreatedAt: snap.CreatedAt,
		Protected: snap.Protected(),
	})
}

// handleFetch returns a snapshot by ID.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	snap, err := s.records.Fetch(id)
	if err != nil {
		if errors.Is(err, ErrShareNotFound) {
			s.writeError(w, http.StatusNotFound, "snapshot not found", "not_found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error(), "fetch_failed")
		return
	}

	s.stats.fetched.Add(1)
	s.writeJSON(w, http.StatusOK, snap)
}

// handleIncrementViews bumps the view counter for a snapshot.
func (s *Server) handleIncrementViews(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	views, err := s.records.IncrementViews(id)
	if err != nil {
		if errors.Is(err, ErrShareNotFound) {
			s.writeError(w, http.StatusNotFound, "snapshot not found", "not_found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error(), "views_failed")
		return
	}

	s.stats.viewed.Add(1)
	s.writeJSON(w, http.StatusOK, viewsResponse{ID: id, Views: views})
}

// handleDelete removes a snapshot. Requires a valid TOTP code in the
// X-Admin-Code header.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	deleter, ok := s.records.(recordDeleter)
	if !ok {
		s.writeError(w, http.StatusNotImplemented, "store does not support deletion", "unsupported")
		return
	}

	id := r.PathValue("id")
	if err := deleter.Delete(id); err != nil {
		if errors.Is(err, ErrShareNotFound) {
			s.writeError(w, http.StatusNotFound, "snapshot not found", "not_found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error(), "delete_failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// handleStats reports request counters since startup.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statsResponse{
		UptimeSeconds: int64(time.Since(s.stats.started).Seconds()),
		SharesCreated: s.stats.created.Load(),
		SharesFetched: s.stats.fetched.Load(),
		ViewsRecorded: s.stats.viewed.Load(),
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAdmin validates the TOTP code on admin endpoints. Writes the error
// response and returns false when access is denied.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.adminTOTPSecret == "" {
		s.writeError(w, http.StatusForbidden, "admin endpoints are disabled", "admin_disabled")
		return false
	}

	code := r.Header.Get(adminCodeHeader)
	if code == "" {
		s.writeError(w, http.StatusUnauthorized, "missing admin code", "missing_code")
		return false
	}

	if !totp.Validate(code, s.adminTOTPSecret) {
		s.log.Warnf("admin code rejected | ip=%s", GetClientIP(r))
		s.writeError(w, http.StatusUnauthorized, "invalid admin code", "invalid_code")
		return false
	}
	return true
}

// ============================================================================
// Response Helpers
// ============================================================================

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message, code string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"message": message,
			"type":    "invalid_request_error",
			"code":    code,
		},
	})
}
