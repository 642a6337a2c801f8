package asr

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shivajreddy/hush/internal/config"
)

func TestWordsPerMinute(t *testing.T) {
	tests := []struct {
		text string
		d    time.Duration
		want float64
	}{
		{"one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty", 10 * time.Second, 120},
		{"  hello   world  ", 30 * time.Second, 4},
		{"", 5 * time.Second, 0},
		{"words here", 0, 0},
		{"words here", -time.Second, 0},
	}
	for _, tt := range tests {
		if got := WordsPerMinute(tt.text, tt.d); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WordsPerMinute(%q, %v) = %v, want %v", tt.text, tt.d, got, tt.want)
		}
	}
}

type stubModel struct {
	text  string
	err   error
	calls []string
}

func (m *stubModel) Name() string { return "stub" }

func (m *stubModel) Transcribe(_ context.Context, path string) (string, error) {
	m.calls = append(m.calls, path)
	return m.text, m.err
}

func TestTranscriber(t *testing.T) {
	m := &stubModel{text: "  hello there  "}
	tr := NewTranscriber(m, zerolog.Nop())

	res, err := tr.Transcribe(context.Background(), "/tmp/a.wav", 6*time.Second)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "hello there" {
		t.Errorf("Text = %q, want trimmed", res.Text)
	}
	if res.WordsPerMinute != 20 {
		t.Errorf("WordsPerMinute = %v, want 20", res.WordsPerMinute)
	}
	if len(m.calls) != 1 || m.calls[0] != "/tmp/a.wav" {
		t.Errorf("model calls = %v", m.calls)
	}
}

func TestTranscriberWrapsModelError(t *testing.T) {
	cause := errors.New("model exploded")
	tr := NewTranscriber(&stubModel{err: cause}, zerolog.Nop())

	_, err := tr.Transcribe(context.Background(), "x.wav", time.Second)
	var me *ModelError
	if !errors.As(err, &me) {
		t.Fatalf("error = %T %v, want *ModelError", err, err)
	}
	if me.Backend != "stub" || !errors.Is(err, cause) {
		t.Errorf("ModelError = %+v", me)
	}
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "latest_record.wav")
	if err := os.WriteFile(p, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func httpConfig(url string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendHTTP
	cfg.APIEndpoint = url
	cfg.TEXTPath = "text"
	cfg.MaxRetry = 2
	cfg.RetryBaseDelay = 0
	cfg.RequestTimeout = 2
	return cfg
}

func TestTranscribeRetryExhaustedError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("fail"))
	}))
	defer server.Close()

	cfg := httpConfig(server.URL)
	client, err := NewClient(cfg, &http.Client{Timeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Transcribe(context.Background(), writeTempAudio(t))
	var re *RetryExhaustedError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetryExhaustedError, got %T: %v", err, err)
	}
	if re.Attempts != cfg.MaxRetry || re.MaxRetry != cfg.MaxRetry {
		t.Fatalf("Attempts = %d, MaxRetry = %d, want %d", re.Attempts, re.MaxRetry, cfg.MaxRetry)
	}
	if string(re.Last) != "fail" {
		t.Errorf("Last = %q, want fail", re.Last)
	}
	if int(hits.Load()) != cfg.MaxRetry {
		t.Errorf("server hits = %d, want %d", hits.Load(), cfg.MaxRetry)
	}
}

func TestTranscribeUploadsForm(t *testing.T) {
	var gotAuth, gotModel, gotLang, gotExtra, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		gotExtra = r.FormValue("temperature")
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		gotFile = string(b)
		_, _ = w.Write([]byte(`{"result": {"text": "  dictated text "}}`))
	}))
	defer server.Close()

	cfg := httpConfig(server.URL)
	cfg.Token = "secret"
	cfg.APIModel = "whisper-large"
	cfg.Language = "en"
	cfg.TEXTPath = "result.text"
	cfg.ExtraConfig = `{"temperature": 0}`

	client, err := NewClient(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	text, err := client.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "  dictated text " {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != "whisper-large" || gotLang != "en" || gotExtra != "0" {
		t.Errorf("form fields = model %q, language %q, temperature %q", gotModel, gotLang, gotExtra)
	}
	if gotFile != "test" {
		t.Errorf("uploaded file = %q", gotFile)
	}
}

// fakeFFmpeg puts an ffmpeg on PATH that copies its input to its output.
func fakeFFmpeg(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\nin=\"$3\"\nfor a; do out=\"$a\"; done\ncp \"$in\" \"$out\"\n"
	if err := os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestTranscribeTranscodeKeepsRecording(t *testing.T) {
	fakeFFmpeg(t)

	var gotName, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		gotName, gotFile = hdr.Filename, string(b)
		_, _ = w.Write([]byte(`{"text": "ok"}`))
	}))
	defer server.Close()

	// flac in a wav container: the transcode target has the recording's extension.
	cfg := httpConfig(server.URL)
	cfg.CODECS = "flac"
	cfg.CONTAINER = "wav"

	client, err := NewClient(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	path := writeTempAudio(t)
	text, err := client.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q, want %q", text, "ok")
	}
	if gotName == filepath.Base(path) {
		t.Errorf("uploaded %q, want a transcoded copy", gotName)
	}
	if gotFile != "test" {
		t.Errorf("uploaded content = %q, want %q", gotFile, "test")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("recording removed: %v", err)
	}
	if string(b) != "test" {
		t.Errorf("recording = %q, want %q", b, "test")
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %v, want only the recording", names)
	}
}

func TestTranscribeTranscodeFailureKeepsRecording(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	cfg := httpConfig("http://127.0.0.1:1")
	cfg.CODECS = "opus"
	cfg.CONTAINER = "wav"
	client, err := NewClient(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	path := writeTempAudio(t)
	if _, err := client.Transcribe(context.Background(), path); err == nil {
		t.Fatal("Transcribe succeeded, want ffmpeg error")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("recording removed: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the recording", len(entries))
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(config.DefaultConfig(), nil, zerolog.Nop()); err == nil {
		t.Error("expected error for empty endpoint")
	}
	cfg := httpConfig("http://localhost")
	cfg.ExtraConfig = "{"
	if _, err := NewClient(cfg, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for bad extra-config")
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(config.DefaultConfig()); err == nil {
		t.Fatal("expected error without API key")
	}
	cfg := config.DefaultConfig()
	cfg.OpenAIKey = "sk-test"
	o, err := NewOpenAI(cfg)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if o.model != "whisper-1" || o.Name() != config.BackendOpenAI {
		t.Errorf("model = %q, name = %q", o.model, o.Name())
	}
}

func TestOpenAITranscribe(t *testing.T) {
	var gotPath, gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			gotModel = r.FormValue("model")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "from openai"}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.OpenAIKey = "sk-test"
	cfg.OpenAIBaseURL = server.URL + "/v1/"
	o, err := NewOpenAI(cfg)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	text, err := o.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "from openai" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/v1/audio/transcriptions" || gotModel != "whisper-1" {
		t.Errorf("request = %s model %q", gotPath, gotModel)
	}
}
