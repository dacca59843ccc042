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

// Package engine turns files on disk into Markdown. The default engine wraps
// the markitdown library for document formats and, when LLM options are
// supplied, routes images through an OpenAI-compatible vision model to
// produce a caption instead.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	markitdown "github.com/nicholasgasior/markitdown-go"
)

// LLMOptions carries the client configuration for LLM-augmented conversion.
// BaseURL is optional and overrides the OpenAI default, which lets the
// service talk to any OpenAI-compatible endpoint.
type LLMOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Engine converts a single file to Markdown.
type Engine interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Factory builds an Engine for one request. A nil llm yields a plain engine;
// otherwise the engine captions images through the configured model.
type Factory func(llm *LLMOptions) Engine

// NewFactory returns the default Factory backed by markitdown.
func NewFactory(log *slog.Logger) Factory {
	if log == nil {
		log = slog.Default()
	}
	return func(llm *LLMOptions) Engine {
		e := &markitdownEngine{
			md:  markitdown.New(),
			log: log,
		}
		if llm != nil {
			e.describer = newDescriber(*llm)
		}
		return e
	}
}

type markitdownEngine struct {
	md        *markitdown.MarkItDown
	describer *describer
	log       *slog.Logger
}

// Convert renders the file at path as Markdown. Image files are detected by
// content sniffing, not extension, so a mislabeled upload still reaches the
// right path.
func (e *markitdownEngine) Convert(ctx context.Context, path string) (string, error) {
	if e.describer != nil {
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			return "", fmt.Errorf("detect file type: %w", err)
		}
		if strings.HasPrefix(mtype.String(), "image/") {
			e.log.Debug("captioning image with LLM", "path", path, "mimeType", mtype.String())
			return e.describer.Describe(ctx, path, mtype.String())
		}
	}

	res, err := e.md.ConvertFile(path)
	if err != nil {
		return "", err
	}
	return res.Markdown, nil
}
