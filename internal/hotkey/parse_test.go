package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	cases := []struct {
		spec string
		mod  uint32
		vk   uint32
	}{
		{"f9", 0, 0x78},
		{"F10", 0, 0x79},
		{"esc", 0, 0x1B},
		{"alt+q", modAlt, 'Q'},
		{"ctrl+shift+space", modCtrl | modShift, 0x20},
		{"win+5", modWin, '5'},
		{"Ctrl + Enter", modCtrl, 0x0D},
		{"numpad7", 0, 0x67},
		{"kp0", 0, 0x60},
		{"minus", 0, 0x6D},
	}
	for _, c := range cases {
		mod, vk, err := parseChord(c.spec)
		require.NoError(t, err, c.spec)
		assert.Equal(t, c.mod, mod, c.spec)
		assert.Equal(t, c.vk, vk, c.spec)
	}
}

func TestParseChordRejectsBadSpecs(t *testing.T) {
	for _, spec := range []string{"", "  ", "boost+q", "ctrl+", "f25", "numpadx"} {
		_, _, err := parseChord(spec)
		assert.Error(t, err, "%q", spec)
	}
}

func TestBindingsValidate(t *testing.T) {
	good := Bindings{Start: "f9", Stop: "f10", Toggle: "f11", Cancel: "esc"}
	assert.NoError(t, good.Validate())

	bad := Bindings{Start: "f9", Cancel: "notakey"}
	assert.Error(t, bad.Validate())

	// Empty bindings are skipped, not rejected.
	assert.NoError(t, Bindings{Start: "f9"}.Validate())
}

func TestTriggerString(t *testing.T) {
	assert.Equal(t, "start", TriggerStart.String())
	assert.Equal(t, "cancel", TriggerCancel.String())
	assert.Equal(t, "unknown", Trigger(99).String())
}
