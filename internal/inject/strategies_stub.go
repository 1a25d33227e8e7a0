//go:build !windows

package inject

import (
	"context"
	"fmt"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
)

// PlatformStrategies returns placeholder strategies on non-Windows
// builds; keyboard and clipboard synthesis are Windows specific here.
func PlatformStrategies() []Strategy {
	return []Strategy{unsupportedStrategy{"clipboard"}, unsupportedStrategy{"typing"}, unsupportedStrategy{"sendkeys"}}
}

type unsupportedStrategy struct{ name string }

func (u unsupportedStrategy) Name() string { return u.name }

func (u unsupportedStrategy) Deliver(context.Context, string, config.Injection) error {
	return fmt.Errorf("%s injection not supported on this platform", u.name)
}
