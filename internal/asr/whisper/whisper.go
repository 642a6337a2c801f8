// Package whisper runs speech recognition locally through the whisper.cpp
// CGO bindings. libwhisper.a and whisper.h must be available at link time
// (LIBRARY_PATH / C_INCLUDE_PATH).
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog"

	"github.com/shivajreddy/hush/internal/asr"
	"github.com/shivajreddy/hush/internal/audio/wavfile"
	"github.com/shivajreddy/hush/internal/config"
)

// Model is a ggml whisper model loaded once and shared by every call.
type Model struct {
	mu        sync.Mutex
	model     whisperlib.Model
	language  string
	translate bool
	log       zerolog.Logger
}

var _ asr.Model = (*Model)(nil)

// Option configures a Model.
type Option func(*Model)

// WithLanguage sets the spoken language. Empty or "auto" lets whisper detect it.
func WithLanguage(lang string) Option {
	return func(m *Model) {
		if lang != "" {
			m.language = lang
		}
	}
}

// WithTranslate makes whisper translate the speech to English.
func WithTranslate(on bool) Option {
	return func(m *Model) { m.translate = on }
}

// New loads the model at path. Call Close when done.
func New(path string, log zerolog.Logger, opts ...Option) (*Model, error) {
	wm, err := whisperlib.New(path)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", path, err)
	}
	m := &Model{model: wm, language: "auto", log: log}
	for _, o := range opts {
		o(m)
	}
	log.Info().Str("path", path).Str("language", m.language).Bool("translate", m.translate).Msg("model loaded")
	return m, nil
}

func (m *Model) Name() string { return config.BackendWhisper }

// Transcribe decodes the WAV file and runs inference on a fresh context.
func (m *Model) Transcribe(ctx context.Context, audioPath string) (string, error) {
	samples, rate, err := wavfile.ReadSamples(audioPath)
	if err != nil {
		return "", err
	}
	if rate != whisperlib.SampleRate {
		return "", fmt.Errorf("whisper: sample rate %d, want %d", rate, whisperlib.SampleRate)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	wctx, err := m.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(m.language); err != nil {
		m.log.Warn().Err(err).Str("language", m.language).Msg("failed to set language, using default")
	}
	wctx.SetTranslate(m.translate)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// Close releases the model.
func (m *Model) Close() error {
	return m.model.Close()
}
