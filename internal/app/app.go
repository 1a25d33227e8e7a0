// Package app wires configuration, pipeline stages, hotkeys and
// notifications into the running assistant.
package app

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/capture"
	"github.com/Yuhamixli/voice-input-assistant/internal/config"
	"github.com/Yuhamixli/voice-input-assistant/internal/fg"
	"github.com/Yuhamixli/voice-input-assistant/internal/hotkey"
	"github.com/Yuhamixli/voice-input-assistant/internal/inject"
	"github.com/Yuhamixli/voice-input-assistant/internal/notify"
	"github.com/Yuhamixli/voice-input-assistant/internal/refine"
	"github.com/Yuhamixli/voice-input-assistant/internal/session"
	"github.com/Yuhamixli/voice-input-assistant/internal/transcribe"
)

// App is the assembled assistant.
type App struct {
	cfg   config.Config
	log   *zap.Logger
	coord *session.Coordinator
}

// NewLogger builds the process logger. Debug mode switches to the
// development encoder with debug-level output.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// New assembles the pipeline around cfg.
func New(cfg config.Config, log *zap.Logger) *App {
	eng := capture.NewEngine(capture.OpenDevice, capture.Denoise, log)
	httpc := transcribe.NewHTTPClient(cfg.Transcribe)
	stt := transcribe.NewClient(httpc, log)
	llm := refine.NewClient(httpc, log)
	inj := inject.NewInjector(log, inject.PlatformStrategies()...)

	coord := session.NewCoordinator(eng, stt, llm, inj,
		cfg.Snapshot, fg.AppID, log)
	coord.Subscribe(notify.NewSink(cfg.Notification, log))
	coord.Subscribe(session.ObserverFunc(func(ev session.StateChange) {
		log.Debug("session state",
			zap.String("session_id", ev.SessionID),
			zap.Stringer("from", ev.From),
			zap.Stringer("to", ev.To))
	}))

	return &App{cfg: cfg, log: log, coord: coord}
}

// Run registers the hotkeys and blocks until the process is
// interrupted. An in-flight session is cancelled on shutdown.
func (a *App) Run() error {
	transcribe.CleanupTempFiles(a.log)

	bindings := hotkey.BindingsFrom(a.cfg.Hotkeys)
	if err := bindings.Validate(); err != nil {
		return err
	}
	if err := hotkey.Register(bindings, a.cfg.Hotkeys.LowLevelHook, a.dispatch, a.log); err != nil {
		return err
	}
	a.log.Info("voice input ready",
		zap.String("start", a.cfg.Hotkeys.StartKey),
		zap.String("stop", a.cfg.Hotkeys.StopKey),
		zap.String("toggle", a.cfg.Hotkeys.ToggleKey),
		zap.String("cancel", a.cfg.Hotkeys.CancelKey),
		zap.Bool("low_level_hook", a.cfg.Hotkeys.LowLevelHook))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	a.log.Info("shutting down")
	a.coord.OnCancel()
	a.coord.Wait()
	return nil
}

func (a *App) dispatch(t hotkey.Trigger) {
	switch t {
	case hotkey.TriggerStart:
		if _, err := a.coord.OnStartTrigger(); errors.Is(err, session.ErrBusy) {
			a.log.Warn("start trigger ignored, session already active")
		}
	case hotkey.TriggerStop:
		a.coord.OnStopTrigger()
	case hotkey.TriggerToggle:
		a.coord.OnToggleTrigger()
	case hotkey.TriggerCancel:
		a.coord.OnCancel()
	}
}
