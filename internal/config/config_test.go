package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, Validate(&cfg))
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"capture": {"sample_rate": 48000, "frame_ms": 20, "channels": 1,
			"vad_threshold": 0.05, "min_recording_length": 0.5,
			"auto_recording_duration": 15, "dynamic_recording": true,
			"silence_hold": 0.8, "trailing_window": 10},
		"injection": {"method": "typing", "smart_mode": false,
			"typing_speed": 0.02, "auto_capitalize": true, "auto_punctuation": false}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, cfg.Capture.SampleRate)
	assert.Equal(t, "typing", cfg.Injection.Method)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, "f9", cfg.Hotkeys.StartKey)
	assert.Equal(t, "text", cfg.Transcribe.TextPath)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestEnvOverridesApply(t *testing.T) {
	t.Setenv("ASR_ENDPOINT", "https://stt.example.com/transcribe")
	t.Setenv("ASR_TOKEN", "secret")
	t.Setenv("OPENAI_API_BASE", "https://llm.example.com/v1/")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://stt.example.com/transcribe", cfg.Transcribe.Endpoint)
	assert.Equal(t, "secret", cfg.Transcribe.Token)
	assert.Equal(t, "https://llm.example.com/v1", cfg.Refine.Endpoint)
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutations := map[string]func(*Config){
		"sample_rate":   func(c *Config) { c.Capture.SampleRate = 0 },
		"frame_ms":      func(c *Config) { c.Capture.FrameMS = 5 },
		"vad_threshold": func(c *Config) { c.Capture.VADThreshold = 2 },
		"silence_hold":  func(c *Config) { c.Capture.SilenceHold = 0 },
		"method":        func(c *Config) { c.Injection.Method = "telepathy" },
		"profile":       func(c *Config) { c.Profiles["x.exe"] = AppProfile{Method: "bad"} },
		"timeouts":      func(c *Config) { c.Transcribe.TimeoutCeil = 1 },
		"temperature": func(c *Config) {
			c.Refine.Enabled = true
			c.Refine.Temperature = 5
		},
	}
	for name, mutate := range mutations {
		cfg := Default()
		mutate(&cfg)
		assert.Error(t, Validate(&cfg), name)
	}
}

func TestSnapshotIsolatesProfiles(t *testing.T) {
	cfg := Default()
	snap := cfg.Snapshot()

	cfg.Profiles["excel.exe"] = AppProfile{Method: "typing"}
	cfg.Injection.Method = "sendkeys"

	p, ok := snap.Profile("EXCEL.EXE")
	require.True(t, ok)
	assert.Equal(t, "clipboard", p.Method)
	assert.Equal(t, "clipboard", snap.Injection.Method)
}

func TestProfileLookupIsCaseInsensitive(t *testing.T) {
	cfg := Default()
	_, ok := cfg.Profile("NotePad.EXE")
	assert.True(t, ok)
	_, ok = cfg.Profile("unknown.exe")
	assert.False(t, ok)
}

func TestFrameArithmetic(t *testing.T) {
	c := Capture{
		SampleRate:            16000,
		FrameMS:               30,
		MinRecordingLength:    1.0,
		AutoRecordingDuration: 30.0,
		SilenceHold:           1.0,
	}
	assert.Equal(t, 33, c.FramesPerSecond())
	assert.Equal(t, 480, c.FrameSamples())
	assert.Equal(t, 33, c.MinRecordingFrames())
	assert.Equal(t, 990, c.MaxRecordingFrames())
	assert.Equal(t, 33, c.SilenceHoldFrames())
}

func TestSaveDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Snapshot(), cfg.Snapshot())
}
