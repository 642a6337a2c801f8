package hotkey

import (
	"context"
	"errors"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog"
)

// Event is a single key press or release.
type Event struct {
	Key     Key
	Pressed bool
	Code    uint16 // raw virtual code from the hook, kept for debugging unknown keys
}

// Listener delivers global key events to handle until ctx is done.
// handle is called from a single goroutine.
type Listener interface {
	Run(ctx context.Context, handle func(Event)) error
}

// libuiohook virtual key codes (VC_*) as reported in hook.Event.Keycode.
var hookCodes = map[uint16]Key{
	0x002A: KeyShiftLeft,
	0x0036: KeyShiftRight,
	0x001D: KeyCtrlLeft,
	0x0E1D: KeyCtrlRight,
	0x0038: KeyAltLeft,
	0x0E38: KeyAltRight,
	0x003B: KeyF1,
	0x003C: KeyF2,
	0x003D: KeyF3,
	0x003E: KeyF4,
	0x003F: KeyF5,
	0x0040: KeyF6,
	0x0041: KeyF7,
	0x0042: KeyF8,
	0x0043: KeyF9,
	0x0044: KeyF10,
	0x0057: KeyF11,
	0x0058: KeyF12,
	0x002F: KeyV,
}

// KeyFromHookCode maps a libuiohook virtual code to a Key.
func KeyFromHookCode(code uint16) Key {
	return hookCodes[code]
}

// HookListener is a Listener backed by a process-wide gohook keyboard hook.
type HookListener struct {
	log zerolog.Logger
}

// NewHookListener creates a gohook-backed listener.
func NewHookListener(log zerolog.Logger) *HookListener {
	return &HookListener{log: log}
}

// Run installs the hook and blocks. Only one HookListener may run at a time.
func (l *HookListener) Run(ctx context.Context, handle func(Event)) error {
	events := hook.Start()
	defer hook.End()
	l.log.Debug().Msg("keyboard hook installed")

	for {
		select {
		case <-ctx.Done():
			l.log.Debug().Msg("keyboard hook uninstalled")
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errors.New("hotkey: hook event stream closed")
			}
			e, ok := eventFromHook(ev)
			if !ok {
				continue
			}
			if l.log.GetLevel() <= zerolog.TraceLevel {
				l.log.Trace().Uint16("code", e.Code).Stringer("key", e.Key).Bool("pressed", e.Pressed).Msg("key event")
			}
			handle(e)
		}
	}
}

// eventFromHook converts a key hold or release; other kinds are dropped.
func eventFromHook(ev hook.Event) (Event, bool) {
	var pressed bool
	switch ev.Kind {
	case hook.KeyHold:
		pressed = true
	case hook.KeyUp:
	default:
		return Event{}, false
	}
	return Event{Key: KeyFromHookCode(ev.Keycode), Pressed: pressed, Code: ev.Keycode}, true
}
