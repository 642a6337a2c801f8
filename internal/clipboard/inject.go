// Package clipboard delivers transcribed text to the focused application
// by writing it to the system clipboard and synthesizing a paste.
package clipboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shivajreddy/hush/internal/config"
	"github.com/shivajreddy/hush/internal/hotkey"
)

// Clipboard replaces the system clipboard contents.
type Clipboard interface {
	SetText(text string) error
}

// Keyboard synthesizes key presses and releases.
type Keyboard interface {
	KeyDown(k hotkey.Key) error
	KeyUp(k hotkey.Key) error
}

// MouseButton identifies a mouse button for Mouse.Click, numbered as in X11.
type MouseButton int

// ButtonMiddle pastes the primary selection on X11.
const ButtonMiddle MouseButton = 2

// Mouse synthesizes clicks.
type Mouse interface {
	Click(b MouseButton) error
}

// pasteChord is held in this order and released in reverse.
var pasteChord = []hotkey.Key{hotkey.KeyCtrlLeft, hotkey.KeyShiftLeft, hotkey.KeyV}

// Options select the injection mode and its settling delays.
type Options struct {
	Mode       string
	PasteDelay time.Duration
	ClickDelay time.Duration
}

// OptionsFromConfig reads INJECT_MODE, PASTE_DELAY_MS and CLICK_DELAY_MS.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Mode:       cfg.InjectMode,
		PasteDelay: time.Duration(cfg.PasteDelayMS) * time.Millisecond,
		ClickDelay: time.Duration(cfg.ClickDelayMS) * time.Millisecond,
	}
}

// Injector writes text to the clipboard and pastes it.
type Injector struct {
	clip  Clipboard
	kb    Keyboard
	mouse Mouse
	opts  Options
	log   zerolog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInjector creates an Injector. mouse may be nil unless Mode is middle-click.
func NewInjector(clip Clipboard, kb Keyboard, mouse Mouse, opts Options, log zerolog.Logger) *Injector {
	if opts.Mode == "" {
		opts.Mode = config.InjectPaste
	}
	return &Injector{clip: clip, kb: kb, mouse: mouse, opts: opts, log: log, sleep: sleepCtx}
}

// Inject overwrites the clipboard with text, waits for it to settle and
// pastes it into the focused window.
func (in *Injector) Inject(ctx context.Context, text string) error {
	if err := in.clip.SetText(text); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	switch in.opts.Mode {
	case config.InjectMiddleClick:
		if in.mouse == nil {
			return fmt.Errorf("middle-click injection needs a mouse")
		}
		if err := in.sleep(ctx, in.opts.ClickDelay); err != nil {
			return err
		}
		if err := in.mouse.Click(ButtonMiddle); err != nil {
			return fmt.Errorf("middle click failed: %w", err)
		}
	default:
		if err := in.sleep(ctx, in.opts.PasteDelay); err != nil {
			return err
		}
		if err := in.paste(); err != nil {
			return err
		}
	}
	in.log.Debug().Str("mode", in.opts.Mode).Int("chars", len(text)).Msg("injected")
	return nil
}

// paste presses ctrl, shift and V in order and releases whatever was
// pressed in reverse, even when a later press fails.
func (in *Injector) paste() (err error) {
	held := make([]hotkey.Key, 0, len(pasteChord))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			if uerr := in.kb.KeyUp(held[i]); uerr != nil && err == nil {
				err = fmt.Errorf("release %s failed: %w", held[i], uerr)
			}
		}
	}()
	for _, k := range pasteChord {
		if err := in.kb.KeyDown(k); err != nil {
			return fmt.Errorf("press %s failed: %w", k, err)
		}
		held = append(held, k)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
