package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
)

// Frame is one fixed-duration block of mono 16-bit samples.
type Frame []int16

// Source produces microphone frames. The channel returned by Start is
// closed when the device stops delivering samples; Err reports the
// reason when that was not a clean shutdown.
type Source interface {
	Start(ctx context.Context) (<-chan Frame, error)
	Err() error
	Close() error
}

// SourceFactory opens a capture source for one session. A factory error
// means the device was unavailable at session start.
type SourceFactory func(cfg config.Capture) (Source, error)

// Device is the PortAudio-backed Source.
type Device struct {
	cfg    config.Capture
	stream *portaudio.Stream
	buf    []int16

	mu      sync.Mutex
	readErr error
}

// OpenDevice initializes PortAudio and opens the default input stream
// with one frame per read.
func OpenDevice(cfg config.Capture) (Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	buf := make([]int16, cfg.FrameSamples()*cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(cfg.Channels, 0, float64(cfg.SampleRate), len(buf), buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open stream failed: %w", err)
	}
	return &Device{cfg: cfg, stream: stream, buf: buf}, nil
}

// Start begins streaming frames on a bounded channel. The reader
// goroutine exits on ctx cancellation or a stream error.
func (d *Device) Start(ctx context.Context) (<-chan Frame, error) {
	if err := d.stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream failed: %w", err)
	}
	out := make(chan Frame, 32)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := d.stream.Read(); err != nil {
				d.setErr(fmt.Errorf("stream read failed: %w", err))
				return
			}
			frame := make(Frame, len(d.buf))
			copy(frame, d.buf)
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Err returns the terminal read error, if any.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readErr
}

func (d *Device) setErr(err error) {
	d.mu.Lock()
	d.readErr = err
	d.mu.Unlock()
}

// Close releases the device. Safe after a failed Start.
func (d *Device) Close() error {
	_ = d.stream.Stop()
	err := d.stream.Close()
	_ = portaudio.Terminate()
	return err
}
