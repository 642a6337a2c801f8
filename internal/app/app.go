package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/shivajreddy/hush/internal/asr"
	"github.com/shivajreddy/hush/internal/clipboard"
	"github.com/shivajreddy/hush/internal/config"
	"github.com/shivajreddy/hush/internal/hotkey"
	"github.com/shivajreddy/hush/internal/metrics"
	"github.com/shivajreddy/hush/internal/notify"
	"github.com/shivajreddy/hush/internal/record"
)

// Deps are the OS and model bindings the pipeline runs on.
type Deps struct {
	Listener  hotkey.Listener
	Device    record.Device
	Model     asr.Model
	Clipboard clipboard.Clipboard
	Keyboard  clipboard.Keyboard
	Mouse     clipboard.Mouse
	Notifier  notify.Notifier
	Banner    io.Writer
}

// RunRecordMode builds the OS bindings for cfg and listens for the hotkey
// until ctx is cancelled, transcribing with model.
func RunRecordMode(ctx context.Context, cfg config.Config, paths config.Paths, model asr.Model, log zerolog.Logger) error {
	deps := Deps{
		Listener:  hotkey.NewHookListener(log.With().Str("component", "hotkey").Logger()),
		Device:    record.PortAudio{FramesPerBuffer: cfg.FramesPerBuffer},
		Model:     model,
		Clipboard: clipboard.System{},
		Notifier:  notify.Desktop{Enabled: cfg.Notification},
		Banner:    os.Stdout,
	}
	switch cfg.InjectMode {
	case config.InjectMiddleClick:
		deps.Mouse = clipboard.Xdotool{}
	default:
		kb, err := clipboard.NewKeybdKeyboard()
		if err != nil {
			return err
		}
		deps.Keyboard = kb
	}

	if cfg.MetricsAddr != "" {
		mlog := log.With().Str("component", "metrics").Logger()
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, mlog); err != nil {
				mlog.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}
	return Run(ctx, cfg, paths, deps, log)
}

// Run wires deps into a Controller, prints the hotkey banner and feeds
// key events to it until ctx is cancelled. A recording still running at
// shutdown is stopped so the input device is released.
func Run(ctx context.Context, cfg config.Config, paths config.Paths, deps Deps, log zerolog.Logger) error {
	spec := hotkey.LoadKeymap(paths.Keymap, log.With().Str("component", "hotkey").Logger())

	session := record.NewSession(deps.Device, paths.Recording, log.With().Str("component", "record").Logger())
	transcriber := asr.NewTranscriber(deps.Model, log.With().Str("component", "asr").Logger())
	injector := clipboard.NewInjector(deps.Clipboard, deps.Keyboard, deps.Mouse,
		clipboard.OptionsFromConfig(cfg), log.With().Str("component", "inject").Logger())
	ctrl := NewController(spec, session, transcriber, injector, deps.Notifier,
		log.With().Str("component", "app").Logger())

	if deps.Banner != nil {
		fmt.Fprintf(deps.Banner, "\nHotkeys:\n  %s - Start/stop recording\n\nPress Ctrl+C to exit.\n\n", spec)
	}

	err := deps.Listener.Run(ctx, func(ev hotkey.Event) {
		ctrl.HandleKey(ctx, ev)
	})
	if session.Active() {
		if _, serr := session.Stop(); serr != nil {
			log.Warn().Err(serr).Msg("stopping recording at shutdown")
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
