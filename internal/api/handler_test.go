package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/models"
	"document-qa/internal/rag"
)

type fakeCompleter struct {
	calls  int
	prompt string
	answer string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) string {
	f.calls++
	f.prompt = prompt
	return f.answer
}

// newTestServer runs the real router over a keyword service built from a
// missing document, so every answer comes straight from the completer.
func newTestServer(t *testing.T, completer *fakeCompleter) *httptest.Server {
	t.Helper()
	svc, err := rag.Build(context.Background(), rag.Options{
		DocumentPath: t.TempDir() + "/missing.txt",
		Strategy:     models.StrategyKeyword,
		ChunkSize:    500,
		TopK:         3,
		Completer:    completer,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	srv := httptest.NewServer(SetupRouter(NewHandler(svc, "Test API"), zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url, contentType, body string) (int, map[string]string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Response is not a JSON object: %q", raw)
		}
	}
	return resp.StatusCode, decoded
}

func TestChat(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		answer      string
		wantStatus  int
		wantField   string
		wantValue   string
		wantCalls   int
	}{
		{
			name: "answer", method: http.MethodPost, contentType: "application/json",
			body: `{"question":"How many engines?"}`, answer: "Two.",
			wantStatus: http.StatusOK, wantField: "answer", wantValue: "Two.", wantCalls: 1,
		},
		{
			name: "get is handled like post", method: http.MethodGet, contentType: "application/json",
			body: `{"question":"How many engines?"}`, answer: "Two.",
			wantStatus: http.StatusOK, wantField: "answer", wantValue: "Two.", wantCalls: 1,
		},
		{
			name: "content type with charset", method: http.MethodPost, contentType: "application/json; charset=utf-8",
			body: `{"question":"APU?"}`, answer: "Auxiliary power unit.",
			wantStatus: http.StatusOK, wantField: "answer", wantValue: "Auxiliary power unit.", wantCalls: 1,
		},
		{
			name: "upstream failure is still an answer", method: http.MethodPost, contentType: "application/json",
			body: `{"question":"How many engines?"}`, answer: "Error: upstream failure: network error: connection refused",
			wantStatus: http.StatusOK, wantField: "answer", wantValue: "Error: upstream failure: network error: connection refused", wantCalls: 1,
		},
		{
			name: "not json", method: http.MethodPost, contentType: "text/plain",
			body: "How many engines?", wantStatus: http.StatusUnsupportedMediaType, wantField: "error",
		},
		{
			name: "no content type", method: http.MethodPost,
			body: `{"question":"How many engines?"}`, wantStatus: http.StatusUnsupportedMediaType, wantField: "error",
		},
		{
			name: "invalid json", method: http.MethodPost, contentType: "application/json",
			body: `{"question":`, wantStatus: http.StatusBadRequest, wantField: "error",
		},
		{
			name: "missing question", method: http.MethodPost, contentType: "application/json",
			body: `{"prompt":"How many engines?"}`, wantStatus: http.StatusBadRequest, wantField: "error",
		},
		{
			name: "empty question", method: http.MethodPost, contentType: "application/json",
			body: `{"question":""}`, wantStatus: http.StatusBadRequest, wantField: "error",
		},
		{
			name: "question of wrong type", method: http.MethodPost, contentType: "application/json",
			body: `{"question":42}`, wantStatus: http.StatusBadRequest, wantField: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{answer: tt.answer}
			srv := newTestServer(t, completer)

			status, body := doRequest(t, tt.method, srv.URL+"/chat", tt.contentType, tt.body)
			if status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, status)
			}
			value, ok := body[tt.wantField]
			if !ok {
				t.Errorf("Expected field %q in response %v", tt.wantField, body)
			}
			if tt.wantValue != "" && value != tt.wantValue {
				t.Errorf("Expected %q = %q, got %q", tt.wantField, tt.wantValue, value)
			}
			if completer.calls != tt.wantCalls {
				t.Errorf("Expected %d completion calls, got %d", tt.wantCalls, completer.calls)
			}
		})
	}
}

func TestChat_VectorStrategy(t *testing.T) {
	// One sentence per 60-byte chunk.
	var doc strings.Builder
	for _, sentence := range []string{
		"The A320 has two CFM56 engines under the wings.",
		"Cabin pressure is regulated by two controllers.",
		"Fuel capacity is about 24000 litres in the tanks.",
	} {
		doc.WriteString(sentence + strings.Repeat(" ", 60-len(sentence)))
	}
	path := filepath.Join(t.TempDir(), "training.txt")
	if err := os.WriteFile(path, []byte(doc.String()), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	for _, indexType := range []string{config.IndexFlat, config.IndexChromem} {
		t.Run(indexType, func(t *testing.T) {
			completer := &fakeCompleter{answer: "About 24000 litres."}
			svc, err := rag.Build(context.Background(), rag.Options{
				DocumentPath:  path,
				Strategy:      models.StrategyVector,
				ChunkSize:     60,
				TopK:          1,
				IndexType:     indexType,
				QueryCacheTTL: time.Minute,
				Embedder:      embedding.NewTFIDF(),
				Completer:     completer,
			})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			srv := httptest.NewServer(SetupRouter(NewHandler(svc, "Test API"), zerolog.Nop()))
			defer srv.Close()

			for i := 0; i < 2; i++ {
				status, body := doRequest(t, http.MethodPost, srv.URL+"/chat", "application/json", `{"question":"fuel capacity litres"}`)
				if status != http.StatusOK {
					t.Fatalf("Expected status 200, got %d", status)
				}
				if body["answer"] != "About 24000 litres." {
					t.Errorf("Expected the completer answer, got %v", body)
				}
				if !strings.Contains(completer.prompt, "Fuel capacity is about 24000 litres") {
					t.Errorf("Expected the fuel chunk in the prompt:\n%s", completer.prompt)
				}
			}
			if completer.calls != 2 {
				t.Errorf("Expected 2 completion calls, got %d", completer.calls)
			}
		})
	}
}

func TestChat_BodyTooLarge(t *testing.T) {
	completer := &fakeCompleter{answer: "unused"}
	svc, err := rag.Build(context.Background(), rag.Options{
		DocumentPath: t.TempDir() + "/missing.txt",
		Strategy:     models.StrategyKeyword,
		ChunkSize:    500,
		Completer:    completer,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	router := SetupRouter(NewHandler(svc, "Test API"), zerolog.Nop())

	body := `{"question":"` + strings.Repeat("a", maxRequestBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
		t.Errorf("Expected an error field, got %q", rec.Body.String())
	}
	if completer.calls != 0 {
		t.Errorf("Expected no completion calls, got %d", completer.calls)
	}
}

func TestChat_NotReady(t *testing.T) {
	srv := httptest.NewServer(SetupRouter(NewHandler(&rag.Service{}, "Test API"), zerolog.Nop()))
	defer srv.Close()

	status, body := doRequest(t, http.MethodPost, srv.URL+"/chat", "application/json", `{"question":"hi"}`)
	if status != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", status)
	}
	if body["error"] == "" {
		t.Errorf("Expected an error message, got %v", body)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeCompleter{})

	status, body := doRequest(t, http.MethodGet, srv.URL+"/", "", "")
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if body["message"] != "Test API is running" {
		t.Errorf("Unexpected health message %q", body["message"])
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fakeCompleter{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chat", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected any origin to be allowed, got %q", got)
	}
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, &fakeCompleter{})

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("Expected a generated request id")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("Expected the incoming request id to be kept, got %q", got)
	}
}
