package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shivajreddy/hush/internal/asr"
	"github.com/shivajreddy/hush/internal/asr/whisper"
	"github.com/shivajreddy/hush/internal/config"
)

// newModel creates the speech backend selected by BACKEND. The returned
// func releases it.
func newModel(ctx context.Context, cfg config.Config, paths config.Paths, log zerolog.Logger) (asr.Model, func(), error) {
	nop := func() {}
	switch cfg.Backend {
	case config.BackendHTTP:
		c, err := asr.NewClient(cfg, nil, log)
		return c, nop, err
	case config.BackendOpenAI:
		o, err := asr.NewOpenAI(cfg)
		return o, nop, err
	case config.BackendWhisper:
		dir := cfg.ModelDir
		if dir == "" {
			dir = paths.Models
		}
		log.Info().Msgf("Loading Whisper '%s' model...", cfg.Model)
		// No client timeout: large models take minutes to download.
		path, err := asr.EnsureModel(ctx, &http.Client{}, dir, cfg.Model, log)
		if err != nil {
			return nil, nop, err
		}
		m, err := whisper.New(path, log, whisper.WithLanguage(cfg.Language), whisper.WithTranslate(cfg.Translate))
		if err != nil {
			return nil, nop, err
		}
		log.Info().Msg("Model loaded. Ready!")
		return m, func() { _ = m.Close() }, nil
	}
	return nil, nop, fmt.Errorf("unknown backend %q", cfg.Backend)
}
