package main

// hush - push-to-talk dictation.
//
// Hold the configured modifiers and press the trigger key (default
// Shift+F10) to start recording, press it again to stop. The recording is
// transcribed and pasted into the focused window.
//
// Files live next to the executable, or under $HUSH_HOME:
//   keymaps.txt                   hotkey, e.g. "ctrl+alt+f7"
//   config.json                   optional settings
//   recordings/latest_record.wav  the last recording
//   models/                       downloaded ggml models
//
// Build notes:
// - PortAudio and the whisper.cpp static library must be available to cgo.
// - Key injection on Linux goes through /dev/uinput.
// - Middle-click injection needs xdotool on PATH.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shivajreddy/hush/internal/app"
	"github.com/shivajreddy/hush/internal/config"
)

var version = "dev"

// errInvalidModel has already been reported to the user.
var errInvalidModel = errors.New("invalid model")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errInvalidModel) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "hush [" + strings.Join(config.ValidModels, "|") + "]",
		Short:         "Push-to-talk dictation into the focused window",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}
}

func run(parent context.Context, args []string) error {
	if len(args) == 1 && !config.ValidModel(args[0]) {
		fmt.Printf("Invalid model: %s\n", args[0])
		fmt.Printf("Valid options: %s\n", strings.Join(config.ValidModels, ", "))
		return errInvalidModel
	}

	base, err := config.BaseDir()
	if err != nil {
		return err
	}
	paths := config.ResolvePaths(base)

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg, ".env"); err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Model = args[0]
	}
	if err := config.Validate(&cfg); err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	log.Debug().Str("version", version).Str("base", base).Str("backend", cfg.Backend).Msg("hush starting")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, closeModel, err := newModel(ctx, cfg, paths, log.With().Str("component", "asr").Logger())
	if err != nil {
		return err
	}
	defer closeModel()

	if err := app.RunRecordMode(ctx, cfg, paths, model, log); err != nil {
		return err
	}
	log.Info().Msg("Exiting...")
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(out).With().Timestamp().Logger().Level(lvl)
}
