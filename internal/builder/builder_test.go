package builder

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"document-qa/internal/config"
	"document-qa/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	doc := filepath.Join(t.TempDir(), "manual.txt")
	if err := os.WriteFile(doc, []byte("The A320 has two engines."), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	cfg := config.Default()
	cfg.Document.Path = doc
	cfg.LLM.APIKey = "secret"
	cfg.Log.Level = "error"
	return cfg
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{name: "console", cfg: config.LogConfig{Level: "debug", Format: "console"}},
		{name: "json", cfg: config.LogConfig{Level: "WARN", Format: "json"}},
		{name: "empty level", cfg: config.LogConfig{Format: "console"}},
		{name: "bad level", cfg: config.LogConfig{Level: "loud", Format: "console"}, wantErr: true},
		{name: "bad format", cfg: config.LogConfig{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SetupLogger(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetupLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	for _, strategy := range []string{models.StrategyVector, models.StrategyKeyword} {
		t.Run(strategy, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.RAG.Strategy = strategy

			app, err := Build(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if app.server.Addr != cfg.Server.Addr {
				t.Errorf("Expected server address %q, got %q", cfg.Server.Addr, app.server.Addr)
			}
		})
	}
}

func TestBuild_InvalidLogger(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Format = "xml"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Error("Expected an error for an unknown log format")
	}
}

func TestApp_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	app := NewApp(&http.Server{Handler: mux}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down")
	}
}

func TestApp_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	app := NewApp(&http.Server{Addr: ln.Addr().String()}, zerolog.Nop())
	err = app.Run(context.Background())
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Errorf("Expected a listen error for a busy address, got %v", err)
	}
}
