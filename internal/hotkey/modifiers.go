package hotkey

import "sync/atomic"

// ModifierTracker remembers which modifier categories are currently held.
// The key-event handler is the only writer.
type ModifierTracker struct {
	held [numModifiers]atomic.Bool
}

// Observe records a press or release. Keys that are not modifiers are ignored.
func (t *ModifierTracker) Observe(k Key, pressed bool) {
	if m, ok := k.Modifier(); ok {
		t.held[m].Store(pressed)
	}
}

// Held reports whether m is currently down.
func (t *ModifierTracker) Held(m Modifier) bool {
	if m >= numModifiers {
		return false
	}
	return t.held[m].Load()
}

// Satisfies reports whether every modifier in set is held. The empty set always matches.
func (t *ModifierTracker) Satisfies(set ModifierSet) bool {
	for _, m := range set.Modifiers() {
		if !t.Held(m) {
			return false
		}
	}
	return true
}
