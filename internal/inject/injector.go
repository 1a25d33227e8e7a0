// Package inject delivers the final transcript into the foreground
// application. Strategies are tried in a fixed fallback order starting
// from the configured (or profile-selected) method; each strategy gets
// exactly one attempt per session.
package inject

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

// Strategy is one way of putting text into the focused window.
// Deliver must stop promptly when ctx is cancelled; the typing
// strategy in particular checks between key events.
type Strategy interface {
	Name() string
	Deliver(ctx context.Context, text string, cfg config.Injection) error
}

// Injector implements session.Injector over a set of strategies.
type Injector struct {
	strategies map[string]Strategy
	log        *zap.Logger
}

// NewInjector registers the given strategies. Platform wiring passes
// the real keyboard-driving ones; tests pass fakes.
func NewInjector(log *zap.Logger, strategies ...Strategy) *Injector {
	if log == nil {
		log = zap.NewNop()
	}
	m := make(map[string]Strategy, len(strategies))
	for _, st := range strategies {
		m[st.Name()] = st
	}
	return &Injector{strategies: m, log: log.Named("inject")}
}

// Inject shapes the text and walks the fallback chain. It fails only
// after every registered strategy in the chain has been attempted, and
// stops with ctx.Err() as soon as a cancel is observed.
func (in *Injector) Inject(ctx context.Context, s *session.Session, text string) error {
	cfg := s.Config.Injection
	method := cfg.Method
	shaping := Shaping{Capitalize: cfg.AutoCapitalize, Punctuate: cfg.AutoPunctuation}

	if cfg.SmartMode {
		if p, ok := s.Config.Profile(s.TargetAppID); ok {
			method = p.Method
			shaping = Shaping{Capitalize: p.AutoCapitalize, Punctuate: p.AutoPunctuation}
			in.log.Debug("application profile applied",
				zap.String("app", s.TargetAppID), zap.String("method", method))
		}
	}
	text = Shape(text, shaping)

	var lastErr error
	for _, name := range fallbackChain(method) {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, ok := in.strategies[name]
		if !ok {
			continue
		}
		err := st.Deliver(ctx, text, cfg)
		if err == nil {
			in.log.Debug("text injected",
				zap.String("session_id", s.ID), zap.String("strategy", name))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		in.log.Warn("injection strategy failed",
			zap.String("strategy", name), zap.Error(err))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no injection strategy available")
	}
	return session.NewError(session.KindInjection, lastErr)
}

// fallbackChain orders the known methods with the preferred one first.
func fallbackChain(first string) []string {
	out := make([]string, 0, len(config.InjectionMethods))
	out = append(out, first)
	for _, m := range config.InjectionMethods {
		if m != first {
			out = append(out, m)
		}
	}
	return out
}
