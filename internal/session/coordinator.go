package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
)

// Capturer streams microphone audio into the session until end-of-speech,
// the duration cap, an early stop, or cancellation.
type Capturer interface {
	Capture(ctx context.Context, s *Session) error
}

// Transcriber converts the session's finalized audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, s *Session) (string, error)
}

// Refiner post-processes a raw transcript. Errors are never fatal to the
// session; the coordinator falls back to the raw text.
type Refiner interface {
	Refine(ctx context.Context, s *Session, text string) (string, error)
}

// Injector delivers the final text into the session's target
// application. Implementations must observe ctx between fallback
// strategies and between synthetic key events.
type Injector interface {
	Inject(ctx context.Context, s *Session, text string) error
}

// StateChange is the event emitted to observers on every transition.
// Kind is set when To is StateFailed; Text carries the final text when
// To is StateCompleted.
type StateChange struct {
	SessionID string
	From      State
	To        State
	Kind      ErrorKind
	Text      string
}

// Observer consumes state-change events (tray icon, logs). Observers
// must not call back into the coordinator.
type Observer interface {
	StateChanged(StateChange)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(StateChange)

func (f ObserverFunc) StateChanged(ev StateChange) { f(ev) }

// Coordinator owns the single session slot and drives the pipeline.
// Triggers arrive from the hotkey source; stages run on a worker
// goroutine so the trigger path never blocks on audio, inference, or
// network I/O.
type Coordinator struct {
	capture    Capturer
	transcribe Transcriber
	refine     Refiner
	inject     Injector

	snapshot  func() config.Config
	targetApp func() string

	log *zap.Logger

	mu  sync.Mutex
	cur *Session
	obs []Observer

	wg sync.WaitGroup
}

// NewCoordinator wires the pipeline stages. snapshot supplies the
// current configuration and targetApp the foreground application id,
// both read once per session at trigger time.
func NewCoordinator(capture Capturer, transcribe Transcriber, refine Refiner, inject Injector,
	snapshot func() config.Config, targetApp func() string, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		capture:    capture,
		transcribe: transcribe,
		refine:     refine,
		inject:     inject,
		snapshot:   snapshot,
		targetApp:  targetApp,
		log:        log.Named("session"),
	}
}

// Subscribe registers an observer for state-change events.
func (c *Coordinator) Subscribe(o Observer) {
	c.mu.Lock()
	c.obs = append(c.obs, o)
	c.mu.Unlock()
}

// Current returns the active session, or nil when the slot is free.
func (c *Coordinator) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil && !c.cur.State().Terminal() {
		return c.cur
	}
	return nil
}

// OnStartTrigger claims the session slot and starts the pipeline. It
// returns ErrBusy while another session is in a non-terminal state; a
// second trigger is rejected, never queued.
func (c *Coordinator) OnStartTrigger() (*Session, error) {
	c.mu.Lock()
	if c.cur != nil && !c.cur.State().Terminal() {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	s := New(c.snapshot(), c.targetApp())
	c.cur = s
	c.mu.Unlock()

	c.log.Info("session started",
		zap.String("session_id", s.ID),
		zap.String("target_app", s.TargetAppID))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(s)
	}()
	return s, nil
}

// OnStopTrigger finalizes capture early, equivalent to end-of-speech.
// Outside StateRecording it is a no-op.
func (c *Coordinator) OnStopTrigger() {
	if s := c.Current(); s != nil && s.State() == StateRecording {
		s.RequestStop()
	}
}

// OnToggleTrigger starts a session when the slot is free and stops
// capture when one is recording.
func (c *Coordinator) OnToggleTrigger() {
	s := c.Current()
	if s == nil {
		_, _ = c.OnStartTrigger()
		return
	}
	if s.State() == StateRecording {
		s.RequestStop()
	}
}

// OnCancel aborts the active session. Cancelling a session already in a
// terminal state is a no-op.
func (c *Coordinator) OnCancel() {
	s := c.Current()
	if s == nil {
		return
	}
	s.cancel()
	s.RequestStop()
}

// Wait blocks until any in-flight pipeline has reached a terminal state.
func (c *Coordinator) Wait() { c.wg.Wait() }

func (c *Coordinator) run(s *Session) {
	c.transition(s, StateRecording)

	if err := c.capture.Capture(s.Context(), s); err != nil {
		if canceled(s, err) {
			c.finishCancelled(s)
			return
		}
		c.fail(s, err, KindDeviceLost)
		return
	}
	if s.Context().Err() != nil {
		c.finishCancelled(s)
		return
	}

	c.transition(s, StateTranscribing)
	text, err := c.transcribe.Transcribe(s.Context(), s)
	s.DropFrames()
	if err != nil {
		if canceled(s, err) {
			c.finishCancelled(s)
			return
		}
		c.fail(s, err, KindTranscription)
		return
	}
	s.SetRawTranscript(text)

	// Silence-only capture is a valid outcome: complete with empty
	// text and never invoke the injector.
	if text == "" {
		c.complete(s)
		return
	}

	if s.Config.Refine.Enabled && c.refine != nil {
		c.transition(s, StateRefining)
		refined, err := c.refine.Refine(s.Context(), s, text)
		if s.Context().Err() != nil {
			c.finishCancelled(s)
			return
		}
		if err != nil {
			c.log.Warn("refinement failed, falling back to raw transcript",
				zap.String("session_id", s.ID), zap.Error(err))
		} else if refined != "" {
			s.SetRefinedTranscript(refined)
		}
	}

	if s.Context().Err() != nil {
		c.finishCancelled(s)
		return
	}

	c.transition(s, StateInjecting)
	if err := c.inject.Inject(s.Context(), s, s.FinalText()); err != nil {
		if canceled(s, err) {
			c.finishCancelled(s)
			return
		}
		c.fail(s, err, KindInjection)
		return
	}
	// A cancel that raced the final strategy must not be reported as
	// success.
	if s.Context().Err() != nil {
		c.finishCancelled(s)
		return
	}
	c.complete(s)
}

func canceled(s *Session, err error) bool {
	return s.Context().Err() != nil || errors.Is(err, context.Canceled)
}

func (c *Coordinator) transition(s *Session, to State) {
	from := s.State()
	s.setState(to)
	c.emit(StateChange{SessionID: s.ID, From: from, To: to})
}

func (c *Coordinator) complete(s *Session) {
	from := s.State()
	s.setState(StateCompleted)
	c.log.Info("session completed", zap.String("session_id", s.ID))
	c.emit(StateChange{SessionID: s.ID, From: from, To: StateCompleted, Text: s.FinalText()})
}

func (c *Coordinator) fail(s *Session, err error, fallbackKind ErrorKind) {
	var se *Error
	if !errors.As(err, &se) {
		se = NewError(fallbackKind, err)
	}
	kind := se.Kind
	s.setFailure(se)
	s.DropFrames()
	from := s.State()
	s.setState(StateFailed)
	c.log.Error("session failed",
		zap.String("session_id", s.ID),
		zap.String("kind", string(kind)),
		zap.Error(err))
	c.emit(StateChange{SessionID: s.ID, From: from, To: StateFailed, Kind: kind})
}

func (c *Coordinator) finishCancelled(s *Session) {
	s.DropFrames()
	from := s.State()
	s.setState(StateCancelled)
	c.log.Info("session cancelled", zap.String("session_id", s.ID))
	c.emit(StateChange{SessionID: s.ID, From: from, To: StateCancelled})
}

func (c *Coordinator) emit(ev StateChange) {
	c.mu.Lock()
	obs := make([]Observer, len(c.obs))
	copy(obs, c.obs)
	c.mu.Unlock()
	for _, o := range obs {
		o.StateChanged(ev)
	}
}
