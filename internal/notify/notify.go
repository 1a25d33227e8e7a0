// Package notify surfaces session outcomes as desktop notifications.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

const appTitle = "Voice Input"

// Sink is a session observer that shows toasts for outcomes a user
// needs to know about. Intermediate transitions stay quiet.
type Sink struct {
	enabled bool
	log     *zap.Logger
}

func NewSink(enabled bool, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{enabled: enabled, log: log.Named("notify")}
}

// StateChanged implements session.Observer.
func (n *Sink) StateChanged(ev session.StateChange) {
	if !n.enabled {
		return
	}
	switch ev.To {
	case session.StateCompleted:
		if ev.Text == "" {
			n.show("No speech detected")
			return
		}
		n.show("Inserted: " + preview(ev.Text, 60))
	case session.StateFailed:
		n.show(failureMessage(ev.Kind))
	}
}

func (n *Sink) show(message string) {
	if err := beeep.Notify(appTitle, message, ""); err != nil {
		n.log.Debug("notification failed", zap.Error(err))
	}
}

func failureMessage(kind session.ErrorKind) string {
	switch kind {
	case session.KindDeviceUnavailable:
		return "Microphone unavailable"
	case session.KindDeviceLost:
		return "Microphone disconnected during recording"
	case session.KindTranscription:
		return "Transcription failed"
	case session.KindInjection:
		return "Could not insert text into the active window"
	default:
		return fmt.Sprintf("Session failed (%s)", kind)
	}
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
