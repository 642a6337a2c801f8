package asr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestModelFile(t *testing.T) {
	tests := map[string]string{
		"tiny":  "ggml-tiny.bin",
		"base":  "ggml-base.bin",
		"large": "ggml-large-v3.bin",
	}
	for size, want := range tests {
		if got := ModelFile(size); got != want {
			t.Errorf("ModelFile(%q) = %q, want %q", size, got, want)
		}
	}
}

func TestEnsureModel(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/ggml-tiny.bin" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("weights"))
	}))
	defer server.Close()

	old := ModelBaseURL
	ModelBaseURL = server.URL
	t.Cleanup(func() { ModelBaseURL = old })

	dir := filepath.Join(t.TempDir(), "models")
	path, err := EnsureModel(context.Background(), server.Client(), dir, "tiny", zerolog.Nop())
	if err != nil {
		t.Fatalf("EnsureModel: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "weights" {
		t.Fatalf("model file = %q, %v", b, err)
	}

	if _, err := EnsureModel(context.Background(), server.Client(), dir, "tiny", zerolog.Nop()); err != nil {
		t.Fatalf("second EnsureModel: %v", err)
	}
	if hits != 1 {
		t.Errorf("downloads = %d, want 1 (cached file reused)", hits)
	}

	if _, err := EnsureModel(context.Background(), server.Client(), dir, "small", zerolog.Nop()); err == nil {
		t.Error("expected error for missing remote model")
	}
	if _, err := os.Stat(filepath.Join(dir, "ggml-small.bin")); !os.IsNotExist(err) {
		t.Error("failed download must not leave a model file")
	}
}
