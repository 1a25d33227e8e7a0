// Package hotkey turns global keyboard chords into session triggers.
// Two Windows backends exist: RegisterHotKey (default) and a low-level
// keyboard hook for applications that grab hotkeys for themselves.
package hotkey

import "github.com/Yuhamixli/voice-input-assistant/internal/config"

// Trigger identifies which binding fired.
type Trigger int

const (
	TriggerStart Trigger = iota + 1
	TriggerStop
	TriggerToggle
	TriggerCancel
)

func (t Trigger) String() string {
	switch t {
	case TriggerStart:
		return "start"
	case TriggerStop:
		return "stop"
	case TriggerToggle:
		return "toggle"
	case TriggerCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Handler receives fired triggers. It is called from the hotkey
// thread and must not block.
type Handler func(Trigger)

// Bindings are the chord specs for each trigger. Empty specs are
// skipped at registration.
type Bindings struct {
	Start  string
	Stop   string
	Toggle string
	Cancel string
}

// BindingsFrom maps the hotkey config section onto trigger bindings.
func BindingsFrom(cfg config.Hotkeys) Bindings {
	return Bindings{
		Start:  cfg.StartKey,
		Stop:   cfg.StopKey,
		Toggle: cfg.ToggleKey,
		Cancel: cfg.CancelKey,
	}
}

func (b Bindings) specs() map[Trigger]string {
	out := make(map[Trigger]string, 4)
	if b.Start != "" {
		out[TriggerStart] = b.Start
	}
	if b.Stop != "" {
		out[TriggerStop] = b.Stop
	}
	if b.Toggle != "" {
		out[TriggerToggle] = b.Toggle
	}
	if b.Cancel != "" {
		out[TriggerCancel] = b.Cancel
	}
	return out
}

// Validate parses every non-empty binding so bad chords fail at
// startup instead of at registration time.
func (b Bindings) Validate() error {
	for _, spec := range b.specs() {
		if _, _, err := parseChord(spec); err != nil {
			return err
		}
	}
	return nil
}
