package clipboard

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	sysclip "github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"

	"github.com/shivajreddy/hush/internal/hotkey"
)

// System is the OS clipboard.
type System struct{}

func (System) SetText(text string) error { return sysclip.WriteAll(text) }

// KeybdKeyboard synthesizes keys with keybd_event. Every key gets its own
// bonding so that press and release of modifiers can be sequenced one at
// a time.
type KeybdKeyboard struct {
	mu   sync.Mutex
	keys map[hotkey.Key]*keybd_event.KeyBonding
}

// NewKeybdKeyboard prepares bondings for the paste chord keys.
func NewKeybdKeyboard() (*KeybdKeyboard, error) {
	k := &KeybdKeyboard{keys: make(map[hotkey.Key]*keybd_event.KeyBonding)}
	for _, key := range []hotkey.Key{
		hotkey.KeyCtrlLeft, hotkey.KeyCtrlRight,
		hotkey.KeyShiftLeft, hotkey.KeyShiftRight,
		hotkey.KeyAltLeft, hotkey.KeyAltRight,
		hotkey.KeyV,
	} {
		kb, err := keybd_event.NewKeyBonding()
		if err != nil {
			return nil, fmt.Errorf("keyboard init failed: %w", err)
		}
		switch m, _ := key.Modifier(); {
		case key == hotkey.KeyV:
			kb.SetKeys(keybd_event.VK_V)
		case m == hotkey.ModCtrl:
			kb.HasCTRL(true)
		case m == hotkey.ModShift:
			kb.HasSHIFT(true)
		case m == hotkey.ModAlt:
			kb.HasALT(true)
		}
		k.keys[key] = &kb
	}
	if runtime.GOOS == "linux" {
		// uinput devices are ignored by the desktop until it has picked them up.
		time.Sleep(2 * time.Second)
	}
	return k, nil
}

func (k *KeybdKeyboard) bonding(key hotkey.Key) (*keybd_event.KeyBonding, error) {
	kb, ok := k.keys[key]
	if !ok {
		return nil, fmt.Errorf("key %s cannot be synthesized", key)
	}
	return kb, nil
}

func (k *KeybdKeyboard) KeyDown(key hotkey.Key) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	kb, err := k.bonding(key)
	if err != nil {
		return err
	}
	return kb.Press()
}

func (k *KeybdKeyboard) KeyUp(key hotkey.Key) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	kb, err := k.bonding(key)
	if err != nil {
		return err
	}
	return kb.Release()
}

// Xdotool clicks through the xdotool binary.
type Xdotool struct{}

func (Xdotool) Click(b MouseButton) error {
	cmd := exec.Command("xdotool", "click", strconv.Itoa(int(b)))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("xdotool failed: %w\n%s", err, stderr.String())
	}
	return nil
}
