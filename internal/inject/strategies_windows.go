//go:build windows

package inject

import (
	"context"
	"fmt"
	"time"
	"unicode/utf16"
	"unsafe"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
	"golang.org/x/sys/windows"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
)

// PlatformStrategies returns the real Windows strategies in fallback
// order.
func PlatformStrategies() []Strategy {
	return []Strategy{clipboardStrategy{}, typingStrategy{}, sendKeysStrategy{}}
}

// clipboardStrategy writes the text to the clipboard, sends Ctrl+V to
// the focused window, then restores the previous clipboard contents.
type clipboardStrategy struct{}

func (clipboardStrategy) Name() string { return "clipboard" }

func (clipboardStrategy) Deliver(ctx context.Context, text string, _ config.Injection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	orig, hadOrig := "", false
	if prev, err := clipboard.ReadAll(); err == nil {
		orig, hadOrig = prev, true
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	// Give the clipboard owner a moment before pasting.
	time.Sleep(80 * time.Millisecond)

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("sending ctrl+v: %w", err)
	}
	time.Sleep(120 * time.Millisecond)
	if hadOrig {
		_ = clipboard.WriteAll(orig)
	}
	return nil
}

// typingStrategy emits one character at a time with a configurable
// inter-key delay. Slower than pasting but survives applications that
// block programmatic paste.
type typingStrategy struct{}

func (typingStrategy) Name() string { return "typing" }

func (typingStrategy) Deliver(ctx context.Context, text string, cfg config.Injection) error {
	delay := time.Duration(cfg.TypingSpeed * float64(time.Second))
	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sendUnicode([]rune{r}); err != nil {
			return err
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil
}

// sendKeysStrategy pushes the whole string through SendInput in one
// burst of unicode key events.
type sendKeysStrategy struct{}

func (sendKeysStrategy) Name() string { return "sendkeys" }

func (sendKeysStrategy) Deliver(ctx context.Context, text string, _ config.Injection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return sendUnicode([]rune(text))
}

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard    = 1
	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004
)

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keyInput struct {
	Type uint32
	_    uint32
	Ki   keybdInput
	_    [8]byte
}

// sendUnicode injects the runes as KEYEVENTF_UNICODE down/up pairs.
// Surrogate pairs are handled by the UTF-16 encoding.
func sendUnicode(runes []rune) error {
	units := utf16.Encode(runes)
	if len(units) == 0 {
		return nil
	}
	inputs := make([]keyInput, 0, len(units)*2)
	for _, u := range units {
		inputs = append(inputs,
			keyInput{Type: inputKeyboard, Ki: keybdInput{Scan: u, Flags: keyeventfUnicode}},
			keyInput{Type: inputKeyboard, Ki: keybdInput{Scan: u, Flags: keyeventfUnicode | keyeventfKeyUp}},
		)
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput delivered %d of %d events: %v", n, len(inputs), err)
	}
	return nil
}
