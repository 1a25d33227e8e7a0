package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Capture controls microphone streaming and end-of-speech detection.
type Capture struct {
	SampleRate            int     `json:"sample_rate"`
	Channels              int     `json:"channels"`
	FrameMS               int     `json:"frame_ms"`
	VADThreshold          float64 `json:"vad_threshold"`
	MinRecordingLength    float64 `json:"min_recording_length"`
	AutoRecordingDuration float64 `json:"auto_recording_duration"`
	DynamicRecording      bool    `json:"dynamic_recording"`
	SilenceHold           float64 `json:"silence_hold"`
	TrailingWindow        int     `json:"trailing_window"`
	NoiseReduction        bool    `json:"noise_reduction"`
}

// Transcribe configures the speech-recognition backend client.
type Transcribe struct {
	Endpoint      string  `json:"endpoint"`
	Token         string  `json:"token"`
	Model         string  `json:"model"`
	Language      string  `json:"language"`
	TextPath      string  `json:"text_path"`
	TimeoutFactor float64 `json:"timeout_factor"`
	TimeoutFloor  int     `json:"timeout_floor"`
	TimeoutCeil   int     `json:"timeout_ceil"`
	Compress      bool    `json:"compress"`
	Codec         string  `json:"codec"`
	Container     string  `json:"container"`
	BitRate       int     `json:"bit_rate"`
	HTTP2         bool    `json:"http2"`
	VerifySSL     bool    `json:"verify_ssl"`
}

// Refine configures the optional LLM post-processing pass.
type Refine struct {
	Enabled     bool    `json:"enabled"`
	Endpoint    string  `json:"endpoint"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Timeout     float64 `json:"timeout"`
}

// Injection controls how final text is delivered into the target app.
type Injection struct {
	Method          string  `json:"method"`
	SmartMode       bool    `json:"smart_mode"`
	TypingSpeed     float64 `json:"typing_speed"`
	AutoCapitalize  bool    `json:"auto_capitalize"`
	AutoPunctuation bool    `json:"auto_punctuation"`
}

// AppProfile is a per-application override for injection behavior,
// keyed by lowercase process name (e.g. "excel.exe").
type AppProfile struct {
	Method          string `json:"method"`
	AutoCapitalize  bool   `json:"auto_capitalize"`
	AutoPunctuation bool   `json:"auto_punctuation"`
}

// Hotkeys holds the global key bindings.
type Hotkeys struct {
	StartKey     string `json:"start_key"`
	StopKey      string `json:"stop_key"`
	ToggleKey    string `json:"toggle_key"`
	CancelKey    string `json:"cancel_key"`
	LowLevelHook bool   `json:"low_level_hook"`
}

// Config is the full application configuration. A session receives an
// immutable copy via Snapshot at start; later edits never reach a
// session already in flight.
type Config struct {
	Capture      Capture               `json:"capture"`
	Transcribe   Transcribe            `json:"transcribe"`
	Refine       Refine                `json:"refine"`
	Injection    Injection             `json:"injection"`
	Hotkeys      Hotkeys               `json:"hotkeys"`
	Profiles     map[string]AppProfile `json:"profiles"`
	Notification bool                  `json:"notification"`
	Debug        bool                  `json:"debug"`
}

// InjectionMethods lists the recognized injection strategy names in
// fallback order.
var InjectionMethods = []string{"clipboard", "typing", "sendkeys"}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Capture: Capture{
			SampleRate:            16000,
			Channels:              1,
			FrameMS:               30,
			VADThreshold:          0.02,
			MinRecordingLength:    1.0,
			AutoRecordingDuration: 30.0,
			DynamicRecording:      true,
			SilenceHold:           1.0,
			TrailingWindow:        15,
			NoiseReduction:        false,
		},
		Transcribe: Transcribe{
			Endpoint:      "",
			Token:         "",
			Model:         "base",
			Language:      "",
			TextPath:      "text",
			TimeoutFactor: 1.5,
			TimeoutFloor:  10,
			TimeoutCeil:   90,
			Compress:      false,
			Codec:         "opus",
			Container:     "ogg",
			BitRate:       128,
			HTTP2:         false,
			VerifySSL:     true,
		},
		Refine: Refine{
			Enabled:     false,
			Endpoint:    "https://api.openai.com/v1",
			APIKey:      "",
			Model:       "gpt-3.5-turbo",
			Prompt:      "You clean up dictated text. Fix recognition mistakes and punctuation without changing the meaning. Reply with the corrected text only.",
			Temperature: 0.3,
			MaxTokens:   200,
			Timeout:     8.0,
		},
		Injection: Injection{
			Method:          "clipboard",
			SmartMode:       true,
			TypingSpeed:     0.01,
			AutoCapitalize:  true,
			AutoPunctuation: true,
		},
		Hotkeys: Hotkeys{
			StartKey:     "f9",
			StopKey:      "f10",
			ToggleKey:    "f11",
			CancelKey:    "esc",
			LowLevelHook: false,
		},
		Profiles: map[string]AppProfile{
			"excel.exe":   {Method: "clipboard", AutoCapitalize: false, AutoPunctuation: false},
			"winword.exe": {Method: "clipboard", AutoCapitalize: true, AutoPunctuation: true},
			"notepad.exe": {Method: "typing", AutoCapitalize: true, AutoPunctuation: true},
			"chrome.exe":  {Method: "clipboard", AutoCapitalize: true, AutoPunctuation: true},
			"wechat.exe":  {Method: "clipboard", AutoCapitalize: false, AutoPunctuation: false},
		},
		Notification: true,
		Debug:        false,
	}
}

// Load reads a JSON config file on top of the defaults and applies
// environment overrides for secrets.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		dec := json.NewDecoder(f)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadEnvFiles loads .env/.env.local if present. Missing files are not
// an error.
func LoadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ASR_ENDPOINT"); v != "" {
		cfg.Transcribe.Endpoint = v
	}
	if v := os.Getenv("ASR_TOKEN"); v != "" {
		cfg.Transcribe.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Refine.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_BASE"); v != "" {
		cfg.Refine.Endpoint = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Refine.Model = v
	}
}

// SaveDefault writes the default config JSON to path.
func SaveDefault(path string) error {
	cfg := Default()
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks field ranges and enumerations.
func Validate(cfg *Config) error {
	c := cfg.Capture
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate: %d (must be > 0)", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 8 {
		return fmt.Errorf("invalid channels: %d (allowed 1..8)", c.Channels)
	}
	if c.FrameMS < 10 || c.FrameMS > 100 {
		return fmt.Errorf("invalid frame_ms: %d (allowed 10..100)", c.FrameMS)
	}
	if c.VADThreshold < 0 || c.VADThreshold > 1 {
		return fmt.Errorf("invalid vad_threshold: %v (allowed 0..1)", c.VADThreshold)
	}
	if c.MinRecordingLength < 0 {
		return fmt.Errorf("invalid min_recording_length: %v (must be >= 0)", c.MinRecordingLength)
	}
	if c.AutoRecordingDuration <= 0 {
		return fmt.Errorf("invalid auto_recording_duration: %v (must be > 0)", c.AutoRecordingDuration)
	}
	if c.SilenceHold <= 0 {
		return fmt.Errorf("invalid silence_hold: %v (must be > 0)", c.SilenceHold)
	}
	if c.TrailingWindow < 1 {
		return fmt.Errorf("invalid trailing_window: %d (must be >= 1)", c.TrailingWindow)
	}

	if !validMethod(cfg.Injection.Method) {
		return fmt.Errorf("invalid injection method: %s (allowed: %s)",
			cfg.Injection.Method, strings.Join(InjectionMethods, ", "))
	}
	if cfg.Injection.TypingSpeed < 0 {
		return fmt.Errorf("invalid typing_speed: %v (must be >= 0)", cfg.Injection.TypingSpeed)
	}
	for app, p := range cfg.Profiles {
		if !validMethod(p.Method) {
			return fmt.Errorf("invalid method %q in profile %q", p.Method, app)
		}
	}

	t := cfg.Transcribe
	if t.TimeoutFactor <= 0 {
		return fmt.Errorf("invalid timeout_factor: %v (must be > 0)", t.TimeoutFactor)
	}
	if t.TimeoutFloor <= 0 || t.TimeoutCeil < t.TimeoutFloor {
		return fmt.Errorf("invalid timeout bounds: floor=%d ceil=%d", t.TimeoutFloor, t.TimeoutCeil)
	}
	if cfg.Refine.Enabled {
		if cfg.Refine.Timeout <= 0 {
			return fmt.Errorf("invalid refine timeout: %v (must be > 0)", cfg.Refine.Timeout)
		}
		if cfg.Refine.Temperature < 0 || cfg.Refine.Temperature > 2 {
			return fmt.Errorf("invalid refine temperature: %v (allowed 0..2)", cfg.Refine.Temperature)
		}
	}
	return nil
}

func validMethod(m string) bool {
	for _, allowed := range InjectionMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of the configuration for a session to
// own. Concurrent edits to the live config cannot affect the copy.
func (c Config) Snapshot() Config {
	cp := c
	cp.Profiles = make(map[string]AppProfile, len(c.Profiles))
	for k, v := range c.Profiles {
		cp.Profiles[k] = v
	}
	return cp
}

// Profile looks up the injection profile for an application id.
func (c *Config) Profile(appID string) (AppProfile, bool) {
	p, ok := c.Profiles[strings.ToLower(appID)]
	return p, ok
}

// FramesPerSecond converts the frame duration into a frame rate.
func (c *Capture) FramesPerSecond() int {
	return 1000 / c.FrameMS
}

// FrameSamples is the number of samples in one frame.
func (c *Capture) FrameSamples() int {
	return c.SampleRate * c.FrameMS / 1000
}

// MinRecordingFrames is the VAD floor expressed in frames.
func (c *Capture) MinRecordingFrames() int {
	return int(c.MinRecordingLength * float64(c.FramesPerSecond()))
}

// MaxRecordingFrames is the duration cap expressed in frames.
func (c *Capture) MaxRecordingFrames() int {
	return int(c.AutoRecordingDuration * float64(c.FramesPerSecond()))
}

// SilenceHoldFrames is the silence-hold duration expressed in frames.
func (c *Capture) SilenceHoldFrames() int {
	n := int(c.SilenceHold * float64(c.FramesPerSecond()))
	if n < 1 {
		n = 1
	}
	return n
}
