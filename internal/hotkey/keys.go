package hotkey

import "strings"

// Key identifies a physical key the dispatcher cares about.
type Key int

const (
	KeyUnknown Key = iota
	KeyShiftLeft
	KeyShiftRight
	KeyCtrlLeft
	KeyCtrlRight
	KeyAltLeft
	KeyAltRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyV
)

var keyNames = map[Key]string{
	KeyShiftLeft:  "shift_l",
	KeyShiftRight: "shift_r",
	KeyCtrlLeft:   "ctrl_l",
	KeyCtrlRight:  "ctrl_r",
	KeyAltLeft:    "alt_l",
	KeyAltRight:   "alt_r",
	KeyF1:         "f1",
	KeyF2:         "f2",
	KeyF3:         "f3",
	KeyF4:         "f4",
	KeyF5:         "f5",
	KeyF6:         "f6",
	KeyF7:         "f7",
	KeyF8:         "f8",
	KeyF9:         "f9",
	KeyF10:        "f10",
	KeyF11:        "f11",
	KeyF12:        "f12",
	KeyV:          "v",
}

// triggerKeys are the keys a keymap may name as its trigger.
var triggerKeys = map[string]Key{
	"f1":  KeyF1,
	"f2":  KeyF2,
	"f3":  KeyF3,
	"f4":  KeyF4,
	"f5":  KeyF5,
	"f6":  KeyF6,
	"f7":  KeyF7,
	"f8":  KeyF8,
	"f9":  KeyF9,
	"f10": KeyF10,
	"f11": KeyF11,
	"f12": KeyF12,
}

func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return "unknown"
}

// Modifier returns the logical modifier a physical key belongs to.
func (k Key) Modifier() (Modifier, bool) {
	switch k {
	case KeyShiftLeft, KeyShiftRight:
		return ModShift, true
	case KeyCtrlLeft, KeyCtrlRight:
		return ModCtrl, true
	case KeyAltLeft, KeyAltRight:
		return ModAlt, true
	}
	return 0, false
}

// Modifier is one of the tracked modifier categories.
type Modifier uint8

const (
	ModShift Modifier = iota
	ModCtrl
	ModAlt
	numModifiers
)

var modifierNames = [numModifiers]string{"shift", "ctrl", "alt"}

func (m Modifier) String() string {
	if m < numModifiers {
		return modifierNames[m]
	}
	return "unknown"
}

func modifierByName(s string) (Modifier, bool) {
	for i, n := range modifierNames {
		if n == s {
			return Modifier(i), true
		}
	}
	return 0, false
}

// ModifierSet is a bit set of Modifier values.
type ModifierSet uint8

// NewModifierSet builds a set from the given modifiers.
func NewModifierSet(mods ...Modifier) ModifierSet {
	var s ModifierSet
	for _, m := range mods {
		s = s.With(m)
	}
	return s
}

func (s ModifierSet) With(m Modifier) ModifierSet { return s | 1<<m }
func (s ModifierSet) Has(m Modifier) bool        { return s&(1<<m) != 0 }

// Modifiers lists the set members in shift, ctrl, alt order.
func (s ModifierSet) Modifiers() []Modifier {
	var out []Modifier
	for m := Modifier(0); m < numModifiers; m++ {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s ModifierSet) String() string {
	parts := make([]string, 0, numModifiers)
	for _, m := range s.Modifiers() {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, "+")
}
