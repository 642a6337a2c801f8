package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ValidModels lists the accepted whisper model sizes.
var ValidModels = []string{"tiny", "base", "small", "medium", "large"}

// Backends selectable with BACKEND.
const (
	BackendWhisper = "whisper"
	BackendHTTP    = "http"
	BackendOpenAI  = "openai"
)

// Injection modes selectable with INJECT_MODE.
const (
	InjectPaste       = "paste"
	InjectMiddleClick = "middle-click"
)

// Config holds configurable parameters.
type Config struct {
	Model     string `json:"MODEL" env:"MODEL"`
	Backend   string `json:"BACKEND" env:"BACKEND"`
	ModelDir  string `json:"MODEL_DIR" env:"MODEL_DIR"`
	Language  string `json:"LANGUAGE" env:"LANGUAGE"`
	Translate bool   `json:"TRANSLATE" env:"TRANSLATE"`

	// http backend
	APIEndpoint    string  `json:"API_ENDPOINT" env:"API_ENDPOINT"`
	Token          string  `json:"TOKEN" env:"TOKEN"`
	APIModel       string  `json:"API_MODEL" env:"API_MODEL"`
	Prompt         string  `json:"PROMPT" env:"PROMPT"`
	TEXTPath       string  `json:"TEXT_PATH" env:"TEXT_PATH"`
	ExtraConfig    string  `json:"ExtraConfig" env:"EXTRA_CONFIG"`
	CODECS         string  `json:"CODECS" env:"CODECS"`
	CONTAINER      string  `json:"CONTAINER" env:"CONTAINER"`
	BIT_RATE       int     `json:"BIT_RATE" env:"BIT_RATE"`
	RequestTimeout int     `json:"REQUEST_TIMEOUT" env:"REQUEST_TIMEOUT"`
	MaxRetry       int     `json:"MAX_RETRY" env:"MAX_RETRY"`
	RetryBaseDelay float64 `json:"RETRY_BASE_DELAY" env:"RETRY_BASE_DELAY"`
	EnableHTTP2    bool    `json:"ENABLE_HTTP2" env:"ENABLE_HTTP2"`
	VerifySSL      bool    `json:"VERIFY_SSL" env:"VERIFY_SSL"`

	// openai backend
	OpenAIKey     string `json:"OPENAI_API_KEY" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `json:"OPENAI_BASE_URL" env:"OPENAI_BASE_URL"`

	FramesPerBuffer int    `json:"FRAMES_PER_BUFFER" env:"FRAMES_PER_BUFFER"`
	InjectMode      string `json:"INJECT_MODE" env:"INJECT_MODE"`
	PasteDelayMS    int    `json:"PASTE_DELAY_MS" env:"PASTE_DELAY_MS"`
	ClickDelayMS    int    `json:"CLICK_DELAY_MS" env:"CLICK_DELAY_MS"`

	Notification bool   `json:"NOTIFICATION" env:"NOTIFICATION"`
	MetricsAddr  string `json:"METRICS_ADDR" env:"METRICS_ADDR"`
	LogLevel     string `json:"LOG_LEVEL" env:"LOG_LEVEL"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Model:           "base",
		Backend:         BackendWhisper,
		ModelDir:        "",
		Language:        "",
		Translate:       false,
		APIEndpoint:     "",
		Token:           "",
		APIModel:        "",
		Prompt:          "",
		TEXTPath:        "text",
		ExtraConfig:     "",
		CODECS:          "pcm",
		CONTAINER:       "wav",
		BIT_RATE:        128,
		RequestTimeout:  30,
		MaxRetry:        3,
		RetryBaseDelay:  0.5,
		EnableHTTP2:     true,
		VerifySSL:       true,
		OpenAIKey:       "",
		OpenAIBaseURL:   "",
		FramesPerBuffer: 1024,
		InjectMode:      InjectPaste,
		PasteDelayMS:    200,
		ClickDelayMS:    500,
		Notification:    false,
		MetricsAddr:     "",
		LogLevel:        "info",
	}
}

// Load loads config from a JSON file on top of the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return cfg, nil
}

// EnvPrefix is prepended to every environment override, e.g. HUSH_MODEL.
const EnvPrefix = "HUSH_"

// ApplyEnv loads envFile (if present) into the environment and applies
// HUSH_* variables on top of cfg. Unset variables leave cfg unchanged.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("config: load %q: %w", envFile, err)
			}
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// ValidModel reports whether name is one of ValidModels.
func ValidModel(name string) bool {
	return slices.Contains(ValidModels, name)
}

// Validate verifies config fields and returns every problem found.
func Validate(cfg *Config) error {
	var errs []error
	if !ValidModel(cfg.Model) {
		errs = append(errs, fmt.Errorf("invalid MODEL: %q (allowed: %s)", cfg.Model, strings.Join(ValidModels, ", ")))
	}
	switch cfg.Backend {
	case BackendWhisper, BackendOpenAI:
	case BackendHTTP:
		if cfg.APIEndpoint == "" {
			errs = append(errs, errors.New("API_ENDPOINT is required for the http backend"))
		}
		if cfg.MaxRetry < 1 {
			errs = append(errs, fmt.Errorf("invalid MAX_RETRY: %d (must be >= 1)", cfg.MaxRetry))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid BACKEND: %q (allowed: %s, %s, %s)", cfg.Backend, BackendWhisper, BackendHTTP, BackendOpenAI))
	}
	switch cfg.InjectMode {
	case InjectPaste, InjectMiddleClick:
	default:
		errs = append(errs, fmt.Errorf("invalid INJECT_MODE: %q (allowed: %s, %s)", cfg.InjectMode, InjectPaste, InjectMiddleClick))
	}
	if cfg.PasteDelayMS < 0 || cfg.ClickDelayMS < 0 {
		errs = append(errs, errors.New("PASTE_DELAY_MS and CLICK_DELAY_MS must not be negative"))
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %q (allowed: trace, debug, info, warn, error)", cfg.LogLevel))
	}
	return errors.Join(errs...)
}

// Paths are the well-known file locations under the base directory.
type Paths struct {
	Base      string
	Config    string
	Keymap    string
	Recording string
	Models    string
}

// ResolvePaths returns the file locations under base.
func ResolvePaths(base string) Paths {
	return Paths{
		Base:      base,
		Config:    filepath.Join(base, "config.json"),
		Keymap:    filepath.Join(base, "keymaps.txt"),
		Recording: filepath.Join(base, "recordings", "latest_record.wav"),
		Models:    filepath.Join(base, "models"),
	}
}

// BaseDir returns $HUSH_HOME, or the directory containing the executable.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "HOME"); dir != "" {
		return filepath.Abs(dir)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
