// Package transcribe uploads finalized recordings to an HTTP
// speech-to-text endpoint and extracts the transcript from its
// response. Audio only ever touches disk as a short-lived temp file
// that is removed before the stage returns.
package transcribe

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/Yuhamixli/voice-input-assistant/internal/audio/ffmpeg"
	"github.com/Yuhamixli/voice-input-assistant/internal/config"
	"github.com/Yuhamixli/voice-input-assistant/internal/jsonfield"
	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

const maxAttempts = 2

// Client implements session.Transcriber against a multipart upload API.
type Client struct {
	httpc *http.Client
	log   *zap.Logger
}

// NewHTTPClient builds the HTTP client shared by the transcription and
// refinement gateways, honoring the configured transport options.
func NewHTTPClient(opts config.Transcribe) *http.Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !opts.VerifySSL},
	}
	if opts.HTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{Transport: tr}
}

// NewClient builds a transcription client on httpc (nil for a default
// client); per-session settings (endpoint, token, timeouts) are read
// from each session's config snapshot instead.
func NewClient(httpc *http.Client, log *zap.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{httpc: httpc, log: log.Named("transcribe")}
}

// CleanupTempFiles removes recording temp files a previous run may
// have left behind after a crash.
func CleanupTempFiles(log *zap.Logger) {
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "RecordTemp_*"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err == nil && log != nil {
			log.Debug("removed stale temp file", zap.String("path", path))
		}
	}
}

// Transcribe encodes the session's audio, uploads it, and returns the
// extracted transcript. An empty transcript is a valid result. The
// upload gets one retry; a second failure surfaces as a transcription
// error.
func (c *Client) Transcribe(ctx context.Context, s *session.Session) (string, error) {
	acfg := s.Config.Capture
	tcfg := s.Config.Transcribe

	frames := s.Frames()
	var samples []int16
	for _, fr := range frames {
		samples = append(samples, fr...)
	}
	audioSeconds := float64(len(samples)) / float64(acfg.SampleRate*acfg.Channels)

	wavPath, err := writeWAV(samples, acfg.SampleRate, acfg.Channels)
	if err != nil {
		return "", session.NewError(session.KindTranscription, err)
	}
	defer os.Remove(wavPath)

	uploadPath := wavPath
	if tcfg.Compress && ffmpeg.Available() {
		out, err := ffmpeg.Compress(ctx, tcfg, wavPath, acfg.SampleRate, acfg.Channels, c.log)
		if err != nil {
			c.log.Warn("compression failed, uploading raw wav", zap.Error(err))
		} else {
			uploadPath = out
			defer os.Remove(out)
		}
	}

	timeout := uploadTimeout(tcfg, audioSeconds)
	c.log.Debug("uploading recording",
		zap.String("session_id", s.ID),
		zap.Float64("audio_seconds", audioSeconds),
		zap.Duration("timeout", timeout))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := c.upload(ctx, tcfg, uploadPath, timeout)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		if attempt < maxAttempts {
			c.log.Warn("transcription attempt failed, retrying",
				zap.Int("attempt", attempt), zap.Error(err))
		}
	}
	return "", session.NewError(session.KindTranscription,
		fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr))
}

// uploadTimeout scales the per-attempt timeout with the recording
// length so long dictations are not cut off by a fixed deadline.
func uploadTimeout(cfg config.Transcribe, audioSeconds float64) time.Duration {
	secs := audioSeconds * cfg.TimeoutFactor
	if secs < float64(cfg.TimeoutFloor) {
		secs = float64(cfg.TimeoutFloor)
	}
	if secs > float64(cfg.TimeoutCeil) {
		secs = float64(cfg.TimeoutCeil)
	}
	return time.Duration(secs * float64(time.Second))
}

func (c *Client) upload(ctx context.Context, cfg config.Transcribe, path string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if cfg.Model != "" {
		_ = w.WriteField("model", cfg.Model)
	}
	if cfg.Language != "" {
		_ = w.WriteField("language", cfg.Language)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("endpoint returned %s: %s", resp.Status, truncate(raw, 200))
	}
	return jsonfield.Text(raw, cfg.TextPath), nil
}

// writeWAV encodes samples to a temp file named so leftovers from a
// crash are recognizable.
func writeWAV(samples []int16, sampleRate, channels int) (string, error) {
	path := filepath.Join(os.TempDir(), "RecordTemp_"+uuid.New().String()+".wav")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
