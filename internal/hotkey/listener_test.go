package hotkey

import (
	"testing"

	hook "github.com/robotn/gohook"
)

func TestEventFromHook(t *testing.T) {
	tests := []struct {
		ev   hook.Event
		want Event
		ok   bool
	}{
		{hook.Event{Kind: hook.KeyHold, Keycode: 0x0044}, Event{Key: KeyF10, Pressed: true, Code: 0x0044}, true},
		{hook.Event{Kind: hook.KeyUp, Keycode: 0x002A}, Event{Key: KeyShiftLeft, Code: 0x002A}, true},
		{hook.Event{Kind: hook.KeyHold, Keycode: 0x1234}, Event{Key: KeyUnknown, Pressed: true, Code: 0x1234}, true},
		{hook.Event{Kind: hook.KeyDown, Keycode: 0x0044}, Event{}, false},
		{hook.Event{Kind: hook.MouseDown}, Event{}, false},
	}
	for _, tt := range tests {
		got, ok := eventFromHook(tt.ev)
		if ok != tt.ok || got != tt.want {
			t.Errorf("eventFromHook(kind %d, code %#x) = %+v, %v; want %+v, %v", tt.ev.Kind, tt.ev.Keycode, got, ok, tt.want, tt.ok)
		}
	}
}
