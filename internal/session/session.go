package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
)

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateRefining
	StateInjecting
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateRefining:
		return "refining"
	case StateInjecting:
		return "injecting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Session is one capture-to-injection cycle. It is created when a start
// trigger fires and never reused; the coordinator guarantees at most one
// non-terminal session exists at a time.
type Session struct {
	ID          string
	Config      config.Config
	TargetAppID string
	StartedAt   time.Time

	mu             sync.Mutex
	state          State
	frames         [][]int16
	energyTrace    []float64
	rawTranscript  string
	rawSet         bool
	refinedText    string
	refinedSet     bool
	failure        *Error
	ctx            context.Context
	cancel         context.CancelFunc
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// New creates a session owning an immutable config snapshot and the
// foreground application id captured at trigger time.
func New(cfg config.Config, targetAppID string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:          uuid.New().String(),
		Config:      cfg.Snapshot(),
		TargetAppID: targetAppID,
		StartedAt:   time.Now(),
		state:       StateIdle,
		ctx:         ctx,
		cancel:      cancel,
		stopCh:      make(chan struct{}),
	}
}

// Context is cancelled when the session is cancelled. Every blocking
// stage must watch it.
func (s *Session) Context() context.Context { return s.ctx }

// StopRequested is closed when an early stop trigger arrives; the
// capture stage treats it like end-of-speech.
func (s *Session) StopRequested() <-chan struct{} { return s.stopCh }

// RequestStop signals the capture stage to finalize early.
func (s *Session) RequestStop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// AppendFrame records one committed audio frame and its energy.
// Only the capture stage calls this, during StateRecording.
func (s *Session) AppendFrame(frame []int16, energy float64) {
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.energyTrace = append(s.energyTrace, energy)
	s.mu.Unlock()
}

// Frames hands the recorded audio to the caller. The session keeps the
// slice only for diagnostics after this point.
func (s *Session) Frames() [][]int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// DropFrames releases the audio buffers (cancel and failure paths).
func (s *Session) DropFrames() {
	s.mu.Lock()
	s.frames = nil
	s.energyTrace = nil
	s.mu.Unlock()
}

// EnergyTrace returns the per-frame energy scalars recorded so far.
func (s *Session) EnergyTrace() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.energyTrace))
	copy(out, s.energyTrace)
	return out
}

// SetRawTranscript sets the transcription result. The first call wins;
// later calls are ignored so the transcript is immutable once set.
func (s *Session) SetRawTranscript(text string) {
	s.mu.Lock()
	if !s.rawSet {
		s.rawTranscript = text
		s.rawSet = true
	}
	s.mu.Unlock()
}

// SetRefinedTranscript sets the refinement result, first call wins.
func (s *Session) SetRefinedTranscript(text string) {
	s.mu.Lock()
	if !s.refinedSet {
		s.refinedText = text
		s.refinedSet = true
	}
	s.mu.Unlock()
}

// RawTranscript returns the transcription output.
func (s *Session) RawTranscript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawTranscript
}

// FinalText is the refined transcript when available, else the raw one.
func (s *Session) FinalText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refinedText != "" {
		return s.refinedText
	}
	return s.rawTranscript
}

// Failure returns the terminal error, if the session failed.
func (s *Session) Failure() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *Session) setFailure(e *Error) {
	s.mu.Lock()
	s.failure = e
	s.mu.Unlock()
}
