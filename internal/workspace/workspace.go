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

// Package workspace manages the per-request working directories that hold
// uploaded files while they are converted. Each directory is scoped to one
// request: created with a random UUID name under the configured base path,
// exclusively owned by that request, and removed when the request finishes.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Dir is one request's working directory.
type Dir struct {
	path string
	log  *slog.Logger
}

// Create makes a uniquely named directory under base and returns it. The
// 128-bit random UUID name makes collisions between concurrent requests
// negligible, so no cross-request locking is needed.
func Create(base string, log *slog.Logger) (*Dir, error) {
	if log == nil {
		log = slog.Default()
	}

	path := filepath.Join(base, uuid.NewString())
	log.Debug("creating working directory", "path", path)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}

	return &Dir{path: path, log: log}, nil
}

// Path returns the directory's location on disk.
func (d *Dir) Path() string {
	return d.path
}

// WriteFile stores data under name inside the directory and returns the full
// path of the written file. Names that could escape the directory are
// rejected.
func (d *Dir) WriteFile(name string, data []byte) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("unsafe file name %q", name)
	}

	path := filepath.Join(d.path, name)
	d.log.Debug("saving file", "path", path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return path, nil
}

// Remove deletes the directory and everything in it. Removal is best-effort:
// errors are logged and dropped, never returned, so cleanup cannot mask the
// request's real outcome.
func (d *Dir) Remove() {
	d.log.Debug("removing working directory", "path", d.path)
	if err := os.RemoveAll(d.path); err != nil {
		d.log.Warn("working directory removal failed", "path", d.path, "error", err)
	}
}

// ValidName reports whether name is a plain file name that stays inside a
// working directory. Path separators, "." and ".." are rejected.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}
