package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier bits in RegisterHotKey order.
const (
	modAlt   uint32 = 0x0001
	modCtrl  uint32 = 0x0002
	modShift uint32 = 0x0004
	modWin   uint32 = 0x0008
)

var namedKeys = map[string]uint32{
	"esc": 0x1B, "escape": 0x1B,
	"space": 0x20,
	"enter": 0x0D, "return": 0x0D,
	"tab":       0x09,
	"backspace": 0x08,
	"insert":    0x2D,
	"delete":    0x2E,
	"home":      0x24,
	"end":       0x23,
	"pageup":    0x21,
	"pagedown":  0x22,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"add":       0x6B, "plus": 0x6B,
	"subtract": 0x6D, "minus": 0x6D,
}

// parseChord turns a spec like "f9", "ctrl+shift+space" or "alt+q"
// into a RegisterHotKey modifier mask and virtual key code.
func parseChord(spec string) (uint32, uint32, error) {
	if strings.TrimSpace(spec) == "" {
		return 0, 0, fmt.Errorf("empty hotkey")
	}
	parts := strings.Split(spec, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}

	var mod uint32
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "alt", "menu":
			mod |= modAlt
		case "ctrl", "control":
			mod |= modCtrl
		case "shift":
			mod |= modShift
		case "win", "meta", "super":
			mod |= modWin
		default:
			return 0, 0, fmt.Errorf("hotkey %q: unknown modifier %q", spec, p)
		}
	}

	vk, ok := keyCode(parts[len(parts)-1])
	if !ok {
		return 0, 0, fmt.Errorf("hotkey %q: unknown key %q", spec, parts[len(parts)-1])
	}
	return mod, vk, nil
}

func keyCode(tok string) (uint32, bool) {
	if len(tok) == 1 {
		switch ch := tok[0]; {
		case ch >= 'a' && ch <= 'z':
			return uint32(ch - 'a' + 'A'), true
		case ch >= '0' && ch <= '9':
			return uint32(ch), true
		}
	}
	if v, ok := namedKeys[tok]; ok {
		return v, true
	}
	// Function keys f1..f24.
	if rest, found := strings.CutPrefix(tok, "f"); found {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 24 {
			return 0x70 + uint32(n-1), true
		}
	}
	// Numpad digits in "numpad5", "num5" and "kp5" spellings.
	for _, prefix := range []string{"numpad", "num", "kp"} {
		if rest, found := strings.CutPrefix(tok, prefix); found && len(rest) == 1 {
			if rest[0] >= '0' && rest[0] <= '9' {
				return 0x60 + uint32(rest[0]-'0'), true
			}
		}
	}
	return 0, false
}
