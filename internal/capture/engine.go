package capture

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

// Engine streams microphone frames into the active session and decides
// when the recording ends. It is the sole owner of the capture device
// between session start and finalization; the device is released on
// every exit path, including failures.
type Engine struct {
	open    SourceFactory
	reducer NoiseReducer
	log     *zap.Logger
}

// NewEngine creates a capture engine. open is typically OpenDevice;
// tests substitute a fake. reducer may be nil to disable filtering.
func NewEngine(open SourceFactory, reducer NoiseReducer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{open: open, reducer: reducer, log: log.Named("capture")}
}

// Capture implements session.Capturer. It returns nil when the
// recording finalized normally (end-of-speech, duration cap, or early
// stop), ctx.Err() on cancellation, and a session.Error with a device
// kind otherwise.
func (e *Engine) Capture(ctx context.Context, s *session.Session) error {
	cfg := s.Config.Capture

	src, err := e.open(cfg)
	if err != nil {
		return session.NewError(session.KindDeviceUnavailable, err)
	}
	defer src.Close()

	frames, err := src.Start(ctx)
	if err != nil {
		return session.NewError(session.KindDeviceUnavailable, err)
	}

	det := NewDetector(DetectorParams{
		Threshold:         cfg.VADThreshold,
		MinFrames:         cfg.MinRecordingFrames(),
		SilenceHoldFrames: cfg.SilenceHoldFrames(),
		TrailingWindow:    cfg.TrailingWindow,
	})
	reduce := e.reducer
	if !cfg.NoiseReduction {
		reduce = nil
	}
	maxFrames := cfg.MaxRecordingFrames()

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.StopRequested():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Debug("early stop", zap.String("session_id", s.ID), zap.Int("frames", seen))
			return nil
		case frame, ok := <-frames:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				err := src.Err()
				if err == nil {
					err = errors.New("capture stream ended unexpectedly")
				}
				return session.NewError(session.KindDeviceLost, err)
			}
			if reduce != nil {
				frame = reduce(frame)
			}
			energy := Energy(frame)
			s.AppendFrame(frame, energy)
			seen++

			if cfg.DynamicRecording && det.Feed(energy) {
				e.log.Debug("end of speech", zap.String("session_id", s.ID), zap.Int("frames", seen))
				return nil
			}
			if seen >= maxFrames {
				e.log.Debug("duration cap reached", zap.String("session_id", s.ID), zap.Int("frames", seen))
				return nil
			}
		}
	}
}
