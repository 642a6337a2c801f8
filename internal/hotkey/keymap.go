package hotkey

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoTriggerKey is returned by Parse when the keymap names no trigger key.
var ErrNoTriggerKey = errors.New("keymap has no trigger key")

// Spec is a parsed hotkey: every modifier in Modifiers held while Trigger is pressed.
type Spec struct {
	Modifiers ModifierSet
	Trigger   Key
}

// DefaultSpec is shift+f10.
var DefaultSpec = Spec{Modifiers: NewModifierSet(ModShift), Trigger: KeyF10}

// String renders the spec the way it is shown to the user, e.g. "Shift+F10".
func (s Spec) String() string {
	var parts []string
	for _, m := range s.Modifiers.Modifiers() {
		name := m.String()
		parts = append(parts, strings.ToUpper(name[:1])+name[1:])
	}
	parts = append(parts, strings.ToUpper(s.Trigger.String()))
	return strings.Join(parts, "+")
}

// Parse accepts strings like "shift+f10", "ctrl+alt+F7" or "f9".
// Unknown tokens are skipped. When several trigger keys are listed the last one wins.
func Parse(s string) (Spec, error) {
	var spec Spec
	for _, part := range strings.Split(strings.ToLower(s), "+") {
		part = strings.TrimSpace(part)
		if m, ok := modifierByName(part); ok {
			spec.Modifiers = spec.Modifiers.With(m)
			continue
		}
		if k, ok := triggerKeys[part]; ok {
			spec.Trigger = k
		}
	}
	if spec.Trigger == KeyUnknown {
		return Spec{}, fmt.Errorf("parse %q: %w", s, ErrNoTriggerKey)
	}
	return spec, nil
}

// LoadKeymap reads the first non-empty line of the keymap file at path.
// Any problem falls back to DefaultSpec; a missing file is not reported.
func LoadKeymap(path string, log zerolog.Logger) Spec {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("error reading keymap file, using default shift+f10")
		}
		return DefaultSpec
	}
	defer f.Close()

	var line string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line = strings.TrimSpace(sc.Text()); line != "" {
			break
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("error reading keymap file, using default shift+f10")
		return DefaultSpec
	}

	spec, err := Parse(line)
	if err != nil {
		log.Warn().Str("keymap", line).Msg("invalid keymap, using default shift+f10")
		return DefaultSpec
	}
	return spec
}
