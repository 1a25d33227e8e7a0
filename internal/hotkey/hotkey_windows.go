//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"go.uber.org/zap"
)

const registerWait = 2 * time.Second

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	PtX     int32
	PtY     int32
}

type chord struct {
	trigger Trigger
	spec    string
	mod     uint32
	vk      uint32
}

func compile(b Bindings) ([]chord, error) {
	var out []chord
	for trigger, spec := range b.specs() {
		mod, vk, err := parseChord(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, chord{trigger: trigger, spec: spec, mod: mod, vk: vk})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no hotkeys configured")
	}
	return out, nil
}

// Register installs the bindings globally and dispatches fired
// triggers to h on a dedicated OS thread. With lowLevel set it uses a
// WH_KEYBOARD_LL hook instead of RegisterHotKey, which also works when
// another process owns the chord.
func Register(b Bindings, lowLevel bool, h Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("hotkey")
	chords, err := compile(b)
	if err != nil {
		return err
	}
	if lowLevel {
		return runLowLevelHook(chords, h, log)
	}
	return runRegisterHotKey(chords, h, log)
}

func runRegisterHotKey(chords []chord, h Handler, log *zap.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		user32 := syscall.NewLazyDLL("user32.dll")
		procRegisterHotKey := user32.NewProc("RegisterHotKey")
		procUnregisterHotKey := user32.NewProc("UnregisterHotKey")
		procGetMessageW := user32.NewProc("GetMessageW")

		for i, c := range chords {
			r, _, _ := procRegisterHotKey.Call(0, uintptr(c.trigger), uintptr(c.mod), uintptr(c.vk))
			if r == 0 {
				for _, prev := range chords[:i] {
					procUnregisterHotKey.Call(0, uintptr(prev.trigger))
				}
				errCh <- fmt.Errorf("RegisterHotKey failed for %q (%s)", c.spec, c.trigger)
				return
			}
			log.Debug("hotkey registered",
				zap.String("trigger", c.trigger.String()), zap.String("chord", c.spec))
		}
		errCh <- nil

		const wmHotkey = 0x0312
		var m msg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(ret) == -1 {
				log.Error("GetMessageW failed, hotkey loop exiting")
				return
			}
			if m.Message == wmHotkey {
				h(Trigger(m.WParam))
			}
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(registerWait):
		return fmt.Errorf("timeout registering hotkeys")
	}
}

func runLowLevelHook(chords []chord, h Handler, log *zap.Logger) error {
	const (
		whKeyboardLL  = 13
		wmKeyDown     = 0x0100
		wmKeyUp       = 0x0101
		wmSysKeyDown  = 0x0104
		wmSysKeyUp    = 0x0105
		llkhfInjected = 0x10
		vkShift       = 0x10
		vkControl     = 0x11
		vkMenu        = 0x12
		vkLWin        = 0x5B
		vkRWin        = 0x5C
	)

	type kbdllHookStruct struct {
		VkCode    uint32
		ScanCode  uint32
		Flags     uint32
		Time      uint32
		ExtraInfo uintptr
	}

	byVk := make(map[uint32][]chord)
	for _, c := range chords {
		byVk[c.vk] = append(byVk[c.vk], c)
	}

	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		user32 := syscall.NewLazyDLL("user32.dll")
		procSetWindowsHookExW := user32.NewProc("SetWindowsHookExW")
		procUnhookWindowsHookEx := user32.NewProc("UnhookWindowsHookEx")
		procCallNextHookEx := user32.NewProc("CallNextHookEx")
		procGetMessageW := user32.NewProc("GetMessageW")
		procGetAsyncKeyState := user32.NewProc("GetAsyncKeyState")

		keyDown := func(vk uintptr) bool {
			st, _, _ := procGetAsyncKeyState.Call(vk)
			return st&0x8000 != 0
		}
		modsHeld := func(required uint32) bool {
			if required&modCtrl != 0 && !keyDown(vkControl) {
				return false
			}
			if required&modAlt != 0 && !keyDown(vkMenu) {
				return false
			}
			if required&modShift != 0 && !keyDown(vkShift) {
				return false
			}
			if required&modWin != 0 && !keyDown(vkLWin) && !keyDown(vkRWin) {
				return false
			}
			return true
		}

		// Keys whose keydown we consumed; their keyup is consumed too
		// so the focused app never sees half a chord.
		swallowed := make(map[uint32]bool)

		callback := syscall.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
			if int32(nCode) < 0 {
				ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
				return ret
			}
			k := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			if k.Flags&llkhfInjected != 0 {
				// Ignore our own synthetic events (paste, typing).
				ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
				return ret
			}
			switch uint32(wParam) {
			case wmKeyDown, wmSysKeyDown:
				for _, c := range byVk[k.VkCode] {
					if modsHeld(c.mod) {
						swallowed[k.VkCode] = true
						go h(c.trigger)
						return 1
					}
				}
			case wmKeyUp, wmSysKeyUp:
				if swallowed[k.VkCode] {
					delete(swallowed, k.VkCode)
					return 1
				}
			}
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		})

		hook, _, _ := procSetWindowsHookExW.Call(uintptr(whKeyboardLL), callback, 0, 0)
		if hook == 0 {
			errCh <- fmt.Errorf("SetWindowsHookExW failed")
			return
		}
		log.Debug("low-level keyboard hook installed")
		errCh <- nil

		var m msg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(ret) == -1 || ret == 0 {
				break
			}
		}
		procUnhookWindowsHookEx.Call(hook)
		log.Debug("low-level keyboard hook removed")
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(registerWait):
		return fmt.Errorf("timeout installing low-level hook")
	}
}
