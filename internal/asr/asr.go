package asr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Model turns an audio file into text.
type Model interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Result is the outcome of one transcription.
type Result struct {
	Text           string
	Duration       time.Duration
	WordsPerMinute float64
}

// ModelError wraps any failure reported by a backend.
type ModelError struct {
	Backend string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("transcription failed (%s): %v", e.Backend, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Transcriber runs a Model and derives the speaking rate.
type Transcriber struct {
	model Model
	log   zerolog.Logger
}

// NewTranscriber wraps model.
func NewTranscriber(model Model, log zerolog.Logger) *Transcriber {
	return &Transcriber{model: model, log: log}
}

// Transcribe transcribes the audio at audioPath. duration is the recorded
// length and is only used for the words-per-minute figure.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, duration time.Duration) (Result, error) {
	start := time.Now()
	text, err := t.model.Transcribe(ctx, audioPath)
	if err != nil {
		return Result{}, &ModelError{Backend: t.model.Name(), Err: err}
	}
	text = strings.TrimSpace(text)
	res := Result{
		Text:           text,
		Duration:       duration,
		WordsPerMinute: WordsPerMinute(text, duration),
	}
	t.log.Info().
		Str("backend", t.model.Name()).
		Dur("took", time.Since(start)).
		Str("wpm", fmt.Sprintf("%.1f", res.WordsPerMinute)).
		Msg("transcribed")
	return res, nil
}

// WordsPerMinute counts whitespace separated words in text relative to d.
// A non-positive duration yields 0.
func WordsPerMinute(text string, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	words := len(strings.Fields(text))
	return float64(words) / d.Seconds() * 60
}
