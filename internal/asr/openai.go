package asr

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/shivajreddy/hush/internal/config"
)

// OpenAI transcribes through the OpenAI audio API, or any server that
// speaks it when OPENAI_BASE_URL is set.
type OpenAI struct {
	client    openai.Client
	model     string
	language  string
	prompt    string
	translate bool
}

// NewOpenAI creates the openai backend from cfg.
func NewOpenAI(cfg config.Config) (*OpenAI, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY must not be empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIKey)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		}))
	}
	model := cfg.APIModel
	if model == "" {
		model = openai.AudioModelWhisper1
	}
	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     model,
		language:  cfg.Language,
		prompt:    cfg.Prompt,
		translate: cfg.Translate,
	}, nil
}

func (o *OpenAI) Name() string { return config.BackendOpenAI }

// Transcribe uploads the file. With translation enabled the translations
// endpoint is used and the text comes back in English.
func (o *OpenAI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if o.translate {
		params := openai.AudioTranslationNewParams{
			File:  f,
			Model: o.model,
		}
		if o.prompt != "" {
			params.Prompt = openai.String(o.prompt)
		}
		res, err := o.client.Audio.Translations.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai: translate: %w", err)
		}
		return res.Text, nil
	}

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: o.model,
	}
	if o.language != "" {
		params.Language = openai.String(o.language)
	}
	if o.prompt != "" {
		params.Prompt = openai.String(o.prompt)
	}
	res, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: transcribe: %w", err)
	}
	return res.Text, nil
}
