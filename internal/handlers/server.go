// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package handlers exposes the conversion service over HTTP: a health check
// on GET / and batch document conversion on POST /convert.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/conductor-oss/markitdown-service/internal/config"
	"github.com/conductor-oss/markitdown-service/internal/engine"
	"github.com/conductor-oss/markitdown-service/internal/models"
)

// Server routes conversion requests to the engine.
type Server struct {
	tempDir   string
	log       *slog.Logger
	newEngine engine.Factory
	mux       *http.ServeMux
}

// NewServer wires the routes. A nil factory falls back to the default
// markitdown-backed engine; tests pass their own to observe or fake
// conversion.
func NewServer(cfg config.Config, log *slog.Logger, factory engine.Factory) *Server {
	if log == nil {
		log = slog.Default()
	}
	if factory == nil {
		factory = engine.NewFactory(log)
	}

	s := &Server{
		tempDir:   cfg.TempDir,
		log:       log,
		newEngine: factory,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("POST /convert", s.handleConvert)
	return s
}

// Handler returns the full middleware stack. Panic recovery sits innermost
// so the access log still records the resulting 500.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.recoverPanics(s.mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

// writeJSON sends v with the given status. Encoding failures can only mean a
// dead client, so they are logged and dropped.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("writing response failed", "error", err)
	}
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.log.Error("panic while handling request",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", v,
					"stack", string(debug.Stack()))
				s.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("%v", v)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
