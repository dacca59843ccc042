package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	markitdown "github.com/nicholasgasior/markitdown-go"
)

// pngSample carries the PNG magic bytes plus a little payload, enough for
// content sniffing to identify it as image/png.
var pngSample = []byte{
	0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
}

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestNewFactoryModes(t *testing.T) {
	factory := NewFactory(nil)

	plain, ok := factory(nil).(*markitdownEngine)
	if !ok {
		t.Fatal("factory did not return a markitdown engine")
	}
	if plain.describer != nil {
		t.Error("plain engine has a describer")
	}

	augmented, ok := factory(&LLMOptions{APIKey: "key", Model: "gpt-4o"}).(*markitdownEngine)
	if !ok {
		t.Fatal("factory did not return a markitdown engine")
	}
	if augmented.describer == nil {
		t.Fatal("LLM engine has no describer")
	}
	if augmented.describer.model != "gpt-4o" {
		t.Errorf("describer model = %q, want %q", augmented.describer.model, "gpt-4o")
	}
}

func TestConvertPlainText(t *testing.T) {
	path := writeTestFile(t, "sample.txt", []byte("hello from the conversion engine\n"))

	eng := NewFactory(nil)(nil)
	markdown, err := eng.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !strings.Contains(markdown, "hello from the conversion engine") {
		t.Errorf("markdown = %q, missing source text", markdown)
	}
}

func TestConvertMissingFile(t *testing.T) {
	eng := NewFactory(nil)(nil)
	if _, err := eng.Convert(context.Background(), filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Convert of missing file succeeded, want error")
	}
}

func TestConvertImagePlainMode(t *testing.T) {
	path := writeTestFile(t, "sample.png", pngSample)

	eng := NewFactory(nil)(nil)
	_, err := eng.Convert(context.Background(), path)
	if err == nil {
		t.Fatal("Convert of image without LLM succeeded, want error")
	}
	if !markitdown.IsUnsupportedFormat(err) {
		t.Errorf("error = %v, want unsupported format", err)
	}
}

// completionStub mimics the OpenAI chat completion endpoint and records what
// the describer sends.
type completionStub struct {
	calls    int
	lastBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
}

func (s *completionStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		if err := json.NewDecoder(r.Body).Decode(&s.lastBody); err != nil {
			t.Errorf("decode completion request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A red square."}}]}`))
	})
	return mux
}

func TestConvertImageWithLLM(t *testing.T) {
	stub := &completionStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	path := writeTestFile(t, "sample.png", pngSample)

	eng := NewFactory(nil)(&LLMOptions{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL + "/v1",
	})

	markdown, err := eng.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if want := "# Description:\n\nA red square."; markdown != want {
		t.Errorf("markdown = %q, want %q", markdown, want)
	}

	if stub.calls != 1 {
		t.Fatalf("completion endpoint called %d times, want 1", stub.calls)
	}
	if stub.lastBody.Model != "gpt-4o-mini" {
		t.Errorf("request model = %q, want %q", stub.lastBody.Model, "gpt-4o-mini")
	}
	if len(stub.lastBody.Messages) != 1 || len(stub.lastBody.Messages[0].Content) != 2 {
		t.Fatalf("unexpected message shape: %+v", stub.lastBody.Messages)
	}
	if got := stub.lastBody.Messages[0].Content[0].Text; got != describePrompt {
		t.Errorf("prompt = %q, want %q", got, describePrompt)
	}
	if url := stub.lastBody.Messages[0].Content[1].ImageURL.URL; !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("image URL %q is not a PNG data URI", url)
	}
}

func TestConvertTextWithLLM(t *testing.T) {
	stub := &completionStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	path := writeTestFile(t, "sample.txt", []byte("plain text stays with markitdown\n"))

	eng := NewFactory(nil)(&LLMOptions{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL + "/v1",
	})

	markdown, err := eng.Convert(context.Background(), path)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !strings.Contains(markdown, "plain text stays with markitdown") {
		t.Errorf("markdown = %q, missing source text", markdown)
	}
	if stub.calls != 0 {
		t.Errorf("completion endpoint called %d times for a text file, want 0", stub.calls)
	}
}

func TestDescribeEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	path := writeTestFile(t, "sample.png", pngSample)

	eng := NewFactory(nil)(&LLMOptions{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL + "/v1",
	})

	if _, err := eng.Convert(context.Background(), path); err == nil {
		t.Error("Convert succeeded against failing endpoint, want error")
	}
}

func TestNormalizeCaption(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A red square.", "A red square."},
		{"  A red square.  ", "A red square."},
		{"line one\r\nline two\r\n", "line one\nline two"},
		{"one\rtwo", "one\ntwo"},
		{"line one   \nline two\t\n", "line one\nline two"},
		{"para one\n\n\n\npara two", "para one\n\npara two"},
		{"A\x00 red\x07 square.", "A red square."},
		{"col1\tcol2\nrow", "col1\tcol2\nrow"},
		{"caf\xc3", "caf"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeCaption(tt.in); got != tt.want {
			t.Errorf("normalizeCaption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
