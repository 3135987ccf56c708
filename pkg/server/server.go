// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kadirpekel/trio/pkg/config"
	"github.com/kadirpekel/trio/pkg/docstore"
	"github.com/kadirpekel/trio/pkg/orchestrator"
)

// maxUploadBytes bounds multipart uploads held in memory.
const maxUploadBytes = 32 << 20

// Server is the HTTP front end over the orchestrator.
type Server struct {
	config     *config.ServerConfig
	orch       *orchestrator.Orchestrator
	httpServer *http.Server
}

// New creates a server for the given orchestrator.
func New(cfg *config.ServerConfig, orch *orchestrator.Orchestrator) *Server {
	cfg.SetDefaults()

	s := &Server{
		config: cfg,
		orch:   orch,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Post("/query", s.handleQuery)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/documents", s.handleListDocuments)
			r.Post("/documents", s.handleUploadDocument)
		})
	})

	return r
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": s.orch.NewSession()})
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	AgentType string `json:"agent_type"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	agentType, err := orchestrator.ParseAgentType(req.AgentType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	envelope, err := s.orch.RouteQuery(r.Context(), req.Query, req.SessionID, agentType)
	if err != nil {
		slog.Error("Query failed",
			"agent_type", agentType,
			"session_id", req.SessionID,
			"error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

// ingestStatusNames maps ingest outcomes to wire-level status strings.
var ingestStatusNames = map[docstore.IngestStatus]string{
	docstore.IngestOK:           "ok",
	docstore.IngestDuplicate:    "duplicate",
	docstore.IngestLimitReached: "limit_reached",
	docstore.IngestNoContent:    "no_content",
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	result, err := s.orch.IngestDocument(r.Context(), sessionID, header.Filename, data)
	if err != nil {
		slog.Error("Document ingest failed",
			"session_id", sessionID,
			"file", header.Filename,
			"error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if result.Status == docstore.IngestOK {
		status = http.StatusCreated
	}

	writeJSON(w, status, map[string]any{
		"status": ingestStatusNames[result.Status],
		"chunks": result.Chunks,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	docs := s.orch.UploadedDocuments(sessionID)
	if docs == nil {
		docs = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.orch.ClearContext(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requestLogger logs each request after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
