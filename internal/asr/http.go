package asr

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/shivajreddy/hush/internal/audio/ffmpeg"
	"github.com/shivajreddy/hush/internal/audio/wavfile"
	"github.com/shivajreddy/hush/internal/config"
	"github.com/shivajreddy/hush/internal/jsonpath"
)

// RetryExhaustedError is returned when every upload attempt failed.
type RetryExhaustedError struct {
	Attempts int
	MaxRetry int
	Last     []byte
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("exceeded max retries (%d) after %d attempts: %s", e.MaxRetry, e.Attempts, formatResponse(e.Last))
}

// Client uploads recordings to an HTTP ASR endpoint.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	extra      map[string]any
	log        zerolog.Logger
}

// NewClient creates an HTTP backend and parses ExtraConfig.
// A nil httpClient gets a transport built from cfg.
func NewClient(cfg config.Config, httpClient *http.Client, log zerolog.Logger) (*Client, error) {
	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf("API endpoint is empty")
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg)
	}
	c := &Client{cfg: cfg, httpClient: httpClient, log: log}
	if cfg.ExtraConfig != "" {
		if err := json.Unmarshal([]byte(cfg.ExtraConfig), &c.extra); err != nil {
			return nil, fmt.Errorf("invalid extra-config JSON: %w", err)
		}
	}
	return c, nil
}

// NewHTTPClient builds the upload transport, with HTTP/2 when enabled.
func NewHTTPClient(cfg config.Config) *http.Client {
	tr := &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !cfg.VerifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.EnableHTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
	}
}

func (c *Client) Name() string { return config.BackendHTTP }

// Transcribe uploads the recording, retrying with exponential backoff,
// and extracts the text at TEXT_PATH from the JSON reply.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	upload := audioPath
	if ffmpeg.Needed(c.cfg.CODECS, c.cfg.CONTAINER) {
		out, err := c.transcode(ctx, audioPath)
		if err != nil {
			return "", err
		}
		defer os.Remove(out)
		upload = out
	}

	maxRetry := max(c.cfg.MaxRetry, 1)
	delay := time.Duration(c.cfg.RetryBaseDelay * float64(time.Second))
	var last []byte
	for try := 1; ; try++ {
		ok, body := c.doUpload(ctx, upload)
		if ok {
			return jsonpath.Text(body, c.cfg.TEXTPath), nil
		}
		last = body
		c.log.Warn().Int("attempt", try).Str("response", formatResponse(body)).Msg("upload failed")
		if try >= maxRetry {
			return "", &RetryExhaustedError{Attempts: try, MaxRetry: maxRetry, Last: last}
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// transcode converts the recording into a temp file next to it. The
// recording itself is never the output, whatever the container.
func (c *Client) transcode(ctx context.Context, audioPath string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(audioPath), ".upload-*."+ffmpeg.Ext(c.cfg.CONTAINER))
	if err != nil {
		return "", err
	}
	out := tmp.Name()
	_ = tmp.Close()

	opts := ffmpeg.Options{Codec: c.cfg.CODECS, SampleRate: wavfile.SampleRate, Channels: 1, BitRate: c.cfg.BIT_RATE}
	if err := ffmpeg.Convert(ctx, opts, audioPath, out); err != nil {
		_ = os.Remove(out)
		return "", err
	}
	c.log.Debug().Str("codec", c.cfg.CODECS).Str("path", out).Msg("transcoded")
	return out, nil
}

func (c *Client) doUpload(ctx context.Context, path string) (bool, []byte) {
	f, err := os.Open(path)
	if err != nil {
		return false, []byte(fmt.Sprintf("open file error: %v", err))
	}
	defer f.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return false, []byte(fmt.Sprintf("create form file error: %v", err))
	}
	if _, err := io.Copy(part, f); err != nil {
		return false, []byte(fmt.Sprintf("copy file error: %v", err))
	}
	for k, v := range c.formFields() {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIEndpoint, body)
	if err != nil {
		return false, []byte(fmt.Sprintf("new request error: %v", err))
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("User-Agent", "hush/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.log.Debug().Str("endpoint", c.cfg.APIEndpoint).Dur("took", time.Since(start)).Msg("upload")
	if err != nil {
		return false, []byte(fmt.Sprintf("request error: %v", err))
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode == http.StatusOK, respBody
}

// formFields merges the configured fields with ExtraConfig; extra wins.
func (c *Client) formFields() map[string]string {
	fields := make(map[string]string)
	if c.cfg.APIModel != "" {
		fields["model"] = c.cfg.APIModel
	}
	if c.cfg.Language != "" {
		fields["language"] = c.cfg.Language
	}
	if c.cfg.Prompt != "" {
		fields["prompt"] = c.cfg.Prompt
	}
	for k, v := range c.extra {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case bool, float64:
			fields[k] = fmt.Sprint(val)
		default:
			if b, err := json.Marshal(val); err == nil {
				fields[k] = string(b)
			} else {
				fields[k] = fmt.Sprint(val)
			}
		}
	}
	return fields
}

func formatResponse(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	const maxText = 1000
	const maxBin = 256

	if utf8.Valid(b) {
		if len(b) > maxText {
			return fmt.Sprintf("%s... (truncated, total %d bytes)", b[:maxText], len(b))
		}
		return string(b)
	}
	if len(b) > maxBin {
		return fmt.Sprintf("<binary %d bytes, prefix hex: %s...>", len(b), hex.EncodeToString(b[:maxBin]))
	}
	return fmt.Sprintf("<binary %d bytes, hex: %s>", len(b), hex.EncodeToString(b))
}
