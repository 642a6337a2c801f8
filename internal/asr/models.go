package asr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ModelBaseURL is where ggml whisper models are fetched from.
var ModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ModelFile maps a model size to its ggml file name.
func ModelFile(size string) string {
	if size == "large" {
		return "ggml-large-v3.bin"
	}
	return "ggml-" + size + ".bin"
}

// EnsureModel returns the path of the ggml model for size inside dir,
// downloading it first when it is not there yet.
func EnsureModel(ctx context.Context, client *http.Client, dir, size string, log zerolog.Logger) (string, error) {
	path := filepath.Join(dir, ModelFile(size))
	if st, err := os.Stat(path); err == nil && st.Size() > 0 {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if client == nil {
		client = http.DefaultClient
	}

	url := ModelBaseURL + "/" + ModelFile(size)
	log.Info().Str("model", size).Str("url", url).Msg("downloading model")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Int64("bytes", n).Msg("model saved")
	return path, nil
}
