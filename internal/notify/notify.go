package notify

import "github.com/gen2brain/beeep"

// AppName is the title shown on every notification.
const AppName = "hush"

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(message string)
}

// Desktop notifies through beeep. A disabled Desktop does nothing.
type Desktop struct {
	Enabled bool
}

func (d Desktop) Notify(message string) {
	if !d.Enabled {
		return
	}
	_ = beeep.Notify(AppName, message, "")
}
