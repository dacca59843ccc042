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

package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/conductor-oss/markitdown-service/internal/engine"
	"github.com/conductor-oss/markitdown-service/internal/models"
	"github.com/conductor-oss/markitdown-service/internal/workspace"
)

// maxBodyBytes caps the request body. Uploads arrive base64-encoded inside
// JSON, so this allows roughly 75 MiB of raw file content per batch.
const maxBodyBytes = 100 << 20

// handleConvert implements POST /convert. The batch is all-or-nothing: the
// first failing file aborts the request and nothing is returned for the
// files already converted.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Warn("reading request body failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("reading request body: %v", err)})
		return
	}

	results, err := s.convert(r.Context(), body)
	if err != nil {
		s.log.Error("conversion request failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, results)
}

// convert runs one conversion batch inside a fresh working directory. The
// directory is removed on every path out of here, success or not.
func (s *Server) convert(ctx context.Context, body []byte) ([]models.ConversionResult, error) {
	req, entries, err := parseRequest(body)
	if err != nil {
		return nil, err
	}

	dir, err := workspace.Create(s.tempDir, s.log)
	if err != nil {
		return nil, err
	}
	defer dir.Remove()

	llm := llmMode(req.LLMConfig)
	if llm != nil {
		// The API key never reaches the log.
		s.log.Info("using conversion engine with LLM configuration", "model", llm.Model, "baseURL", llm.BaseURL)
	} else {
		s.log.Info("using conversion engine without LLM configuration")
	}
	eng := s.newEngine(llm)

	results := make([]models.ConversionResult, 0, len(entries))
	for _, entry := range entries {
		markdown, err := s.convertEntry(ctx, eng, dir, entry)
		if err != nil {
			return nil, err
		}
		results = append(results, models.ConversionResult{
			FileName:         entry.FileName,
			ConversionResult: markdown,
		})
	}

	return results, nil
}

// convertEntry validates, decodes, stores and converts a single file.
func (s *Server) convertEntry(ctx context.Context, eng engine.Engine, dir *workspace.Dir, entry models.FileEntry) (string, error) {
	if entry.FileName == "" || entry.FileContent == "" {
		s.log.Warn("file entry is missing fileName or fileContent")
		return "", &InputError{Reason: msgMissing}
	}
	if !workspace.ValidName(entry.FileName) {
		s.log.Warn("file entry has unsafe fileName", "fileName", entry.FileName)
		return "", &InputError{Reason: fmt.Sprintf("Invalid fileName %q: must not contain path separators", entry.FileName)}
	}

	data, err := base64.StdEncoding.DecodeString(entry.FileContent)
	if err != nil {
		s.log.Error("base64 decoding failed", "fileName", entry.FileName, "error", err)
		return "", &DecodeError{FileName: entry.FileName, Err: err}
	}

	path, err := dir.WriteFile(entry.FileName, data)
	if err != nil {
		return "", err
	}

	s.log.Debug("converting file", "path", path)
	markdown, err := eng.Convert(ctx, path)
	if err != nil {
		s.log.Error("conversion failed", "fileName", entry.FileName, "error", err)
		return "", &ConversionError{FileName: entry.FileName, Err: err}
	}

	return markdown, nil
}

// parseRequest unpacks the request body. The data array is decoded in a
// second step so a missing payload and a malformed array produce their own
// messages.
func parseRequest(body []byte) (*models.ConversionRequest, []models.FileEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, &InputError{Reason: msgNoPayload}
	}

	var req models.ConversionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, &InputError{Reason: msgNoPayload}
	}
	if len(req.Data) == 0 {
		return nil, nil, &InputError{Reason: msgNoData}
	}

	var entries []models.FileEntry
	if err := json.Unmarshal(req.Data, &entries); err != nil {
		return nil, nil, &InputError{Reason: msgNoData}
	}
	if len(entries) == 0 {
		return nil, nil, &InputError{Reason: msgNoData}
	}

	return &req, entries, nil
}

// llmMode returns the engine's LLM options, or nil for plain conversion.
// Both the API key and the model must be set; a partial llmConfig falls back
// to plain conversion rather than failing the request.
func llmMode(cfg *models.LLMConfig) *engine.LLMOptions {
	if cfg == nil || cfg.OpenAIAPIKey == "" || cfg.LLMModel == "" {
		return nil
	}
	return &engine.LLMOptions{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.OpenAIBaseURL,
	}
}
