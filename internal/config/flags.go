package config

import (
	"flag"
	"strconv"
	"strings"
)

// Flags captures command-line overrides. Empty values mean "not set";
// priority is flag > config file > default.
type Flags struct {
	values map[string]*string
}

// RegisterFlags declares the override flags on the default FlagSet.
func RegisterFlags() *Flags {
	f := &Flags{values: map[string]*string{}}
	str := func(name, usage string) {
		f.values[name] = flag.String(name, "", usage)
	}

	str("endpoint", "speech backend URL")
	str("token", "speech backend bearer token")
	str("model", "speech model tier (tiny, base, small, medium, large)")
	str("language", "language hint (e.g. zh, en)")
	str("text-path", "dot path to the transcript in the backend JSON")

	str("sample-rate", "capture sample rate (Hz)")
	str("vad-threshold", "minimum frame energy counted as speech (0..1)")
	str("min-recording-length", "seconds before end-of-speech may fire")
	str("auto-recording-duration", "duration cap in seconds")
	str("dynamic-recording", "adaptive end-of-speech detection (true/false)")
	str("silence-hold", "trailing silence (seconds) that ends a recording")
	str("noise-reduction", "per-frame noise reduction (true/false)")

	str("method", "injection method (clipboard, typing, sendkeys)")
	str("smart-mode", "per-application injection profiles (true/false)")
	str("typing-speed", "inter-character delay in seconds for typing method")

	str("refine", "LLM refinement pass (true/false)")
	str("refine-timeout", "refinement budget in seconds")

	str("start-key", "start-recording hotkey")
	str("stop-key", "stop-recording hotkey")
	str("toggle-key", "toggle-recording hotkey")
	str("cancel-key", "cancel hotkey")

	str("notification", "desktop notifications (true/false)")
	str("debug", "debug logging (true/false)")
	return f
}

// Any reports whether at least one override flag was provided.
func (f *Flags) Any() bool {
	for _, v := range f.values {
		if v != nil && *v != "" {
			return true
		}
	}
	return false
}

// Merge applies the provided flags onto cfg.
func (f *Flags) Merge(cfg *Config) {
	get := func(name string) (string, bool) {
		if p, ok := f.values[name]; ok && p != nil && *p != "" {
			return *p, true
		}
		return "", false
	}
	setStr := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v, ok := get(name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(name string, dst *float64) {
		if v, ok := get(name); ok {
			if x, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = x
			}
		}
	}
	setBool := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			l := strings.ToLower(v)
			*dst = l == "1" || l == "true" || l == "yes"
		}
	}

	setStr("endpoint", &cfg.Transcribe.Endpoint)
	setStr("token", &cfg.Transcribe.Token)
	setStr("model", &cfg.Transcribe.Model)
	setStr("language", &cfg.Transcribe.Language)
	setStr("text-path", &cfg.Transcribe.TextPath)

	setInt("sample-rate", &cfg.Capture.SampleRate)
	setFloat("vad-threshold", &cfg.Capture.VADThreshold)
	setFloat("min-recording-length", &cfg.Capture.MinRecordingLength)
	setFloat("auto-recording-duration", &cfg.Capture.AutoRecordingDuration)
	setBool("dynamic-recording", &cfg.Capture.DynamicRecording)
	setFloat("silence-hold", &cfg.Capture.SilenceHold)
	setBool("noise-reduction", &cfg.Capture.NoiseReduction)

	setStr("method", &cfg.Injection.Method)
	setBool("smart-mode", &cfg.Injection.SmartMode)
	setFloat("typing-speed", &cfg.Injection.TypingSpeed)

	setBool("refine", &cfg.Refine.Enabled)
	setFloat("refine-timeout", &cfg.Refine.Timeout)

	setStr("start-key", &cfg.Hotkeys.StartKey)
	setStr("stop-key", &cfg.Hotkeys.StopKey)
	setStr("toggle-key", &cfg.Hotkeys.ToggleKey)
	setStr("cancel-key", &cfg.Hotkeys.CancelKey)

	setBool("notification", &cfg.Notification)
	setBool("debug", &cfg.Debug)
}
