//go:build !windows

package hotkey

import (
	"fmt"

	"go.uber.org/zap"
)

// Register is not supported on non-Windows builds.
func Register(Bindings, bool, Handler, *zap.Logger) error {
	return fmt.Errorf("global hotkeys not supported on this platform")
}
