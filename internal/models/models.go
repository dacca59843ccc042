// Package models defines the JSON bodies of the conversion API.
package models

import "encoding/json"

// ConversionRequest is the body of POST /convert. Data stays raw here so the
// handler can tell a missing or malformed array apart from a missing payload.
type ConversionRequest struct {
	LLMConfig *LLMConfig      `json:"llmConfig"`
	Data      json.RawMessage `json:"data"`
}

// LLMConfig selects LLM-augmented conversion. Both OpenAIAPIKey and LLMModel
// must be set for it to take effect; OpenAIBaseURL optionally points the
// client at an OpenAI-compatible endpoint.
type LLMConfig struct {
	OpenAIAPIKey  string `json:"openaiApiKey"`
	OpenAIBaseURL string `json:"openaiBaseUrl,omitempty"`
	LLMModel      string `json:"llmModel"`
}

// FileEntry is one uploaded file: its name and base64-encoded content.
type FileEntry struct {
	FileName    string `json:"fileName"`
	FileContent string `json:"fileContent"`
}

// ConversionResult pairs a file name with its Markdown rendition.
type ConversionResult struct {
	FileName         string `json:"fileName"`
	ConversionResult string `json:"conversionResult"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
