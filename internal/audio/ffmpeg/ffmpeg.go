// Package ffmpeg shells out to a system ffmpeg binary to shrink the
// captured WAV before upload. Compression is opt-in; when the binary
// is missing or a conversion fails, callers fall back to the raw WAV.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
)

// Available reports whether an ffmpeg binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Compress converts the WAV at inPath into the configured codec and
// container, writing next to the input, and returns the output path.
func Compress(ctx context.Context, cfg config.Transcribe, inPath string, sampleRate, channels int, log *zap.Logger) (string, error) {
	codec, wantsBitrate, ok := codecFor(cfg.Codec)
	if !ok {
		return "", fmt.Errorf("unsupported codec: %s", cfg.Codec)
	}
	container := strings.ToLower(strings.TrimPrefix(cfg.Container, "."))
	if container == "" {
		container = "ogg"
	}
	outPath := strings.TrimSuffix(inPath, ".wav") + "." + container

	if channels <= 0 {
		channels = 1
	}
	bitrate := cfg.BitRate
	if bitrate <= 0 {
		bitrate = 128
	}

	args := []string{
		"-y", "-i", inPath,
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", codec,
	}
	if wantsBitrate {
		args = append(args, "-b:a", fmt.Sprintf("%dk", bitrate))
	}
	args = append(args, outPath)

	if log != nil {
		log.Debug("ffmpeg convert", zap.String("args", strings.Join(args, " ")))
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg failed: %v\n%s", err, stderr.String())
	}
	return outPath, nil
}

// codecFor maps a config codec name onto the ffmpeg encoder and
// reports whether the encoder takes a bitrate.
func codecFor(key string) (string, bool, bool) {
	switch strings.ToLower(key) {
	case "opus", "libopus":
		return "libopus", true, true
	case "vorbis", "libvorbis":
		return "libvorbis", true, true
	case "mp3":
		return "libmp3lame", true, true
	case "aac":
		return "aac", true, true
	case "flac":
		return "flac", false, true
	case "wavpack":
		return "wavpack", false, true
	case "pcm":
		return "pcm_s16le", false, true
	default:
		return "", false, false
	}
}
