package inject

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

type scriptedStrategy struct {
	name     string
	err      error
	calls    int
	lastText string
}

func (s *scriptedStrategy) Name() string { return s.name }

func (s *scriptedStrategy) Deliver(_ context.Context, text string, _ config.Injection) error {
	s.calls++
	s.lastText = text
	return s.err
}

func injSession(method string, smart bool, target string) *session.Session {
	cfg := config.Default()
	cfg.Injection.Method = method
	cfg.Injection.SmartMode = smart
	return session.New(cfg, target)
}

func TestInjectUsesConfiguredMethod(t *testing.T) {
	cb := &scriptedStrategy{name: "clipboard"}
	ty := &scriptedStrategy{name: "typing"}
	in := NewInjector(zap.NewNop(), cb, ty)

	require.NoError(t, in.Inject(context.Background(), injSession("typing", false, ""), "hello"))
	assert.Zero(t, cb.calls)
	assert.Equal(t, 1, ty.calls)
}

func TestInjectFallsThroughChain(t *testing.T) {
	cb := &scriptedStrategy{name: "clipboard", err: errors.New("clipboard locked")}
	ty := &scriptedStrategy{name: "typing"}
	sk := &scriptedStrategy{name: "sendkeys"}
	in := NewInjector(zap.NewNop(), cb, ty, sk)

	require.NoError(t, in.Inject(context.Background(), injSession("clipboard", false, ""), "hello"))
	assert.Equal(t, 1, cb.calls)
	assert.Equal(t, 1, ty.calls)
	assert.Zero(t, sk.calls, "chain stops at first success")
}

func TestInjectFailsAfterChainExhausted(t *testing.T) {
	cb := &scriptedStrategy{name: "clipboard", err: errors.New("no")}
	ty := &scriptedStrategy{name: "typing", err: errors.New("no")}
	sk := &scriptedStrategy{name: "sendkeys", err: errors.New("no")}
	in := NewInjector(zap.NewNop(), cb, ty, sk)

	err := in.Inject(context.Background(), injSession("clipboard", false, ""), "hello")
	require.Error(t, err)
	kind, ok := session.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, session.KindInjection, kind)
	assert.Equal(t, 1, cb.calls, "each strategy attempted exactly once")
	assert.Equal(t, 1, ty.calls)
	assert.Equal(t, 1, sk.calls)
}

func TestInjectSmartModeUsesProfile(t *testing.T) {
	cb := &scriptedStrategy{name: "clipboard"}
	ty := &scriptedStrategy{name: "typing"}
	in := NewInjector(zap.NewNop(), cb, ty)

	// The default profile for notepad.exe selects typing.
	require.NoError(t, in.Inject(context.Background(), injSession("clipboard", true, "notepad.exe"), "hi there"))
	assert.Zero(t, cb.calls)
	assert.Equal(t, 1, ty.calls)
	assert.Equal(t, "Hi there.", ty.lastText)
}

func TestInjectSmartModeProfileDisablesShaping(t *testing.T) {
	cb := &scriptedStrategy{name: "clipboard"}
	in := NewInjector(zap.NewNop(), cb)

	// excel.exe profile turns both shaping rules off.
	require.NoError(t, in.Inject(context.Background(), injSession("clipboard", true, "excel.exe"), "q3 totals"))
	assert.Equal(t, "q3 totals", cb.lastText)
}

func TestInjectUnknownAppFallsBackToGlobals(t *testing.T) {
	cb := &scriptedStrategy{name: "clipboard"}
	in := NewInjector(zap.NewNop(), cb)

	require.NoError(t, in.Inject(context.Background(), injSession("clipboard", true, "unknown.exe"), "plain text"))
	assert.Equal(t, "Plain text.", cb.lastText)
}

func TestInjectStopsWhenCancelledBeforeAnyStrategy(t *testing.T) {
	cb := &scriptedStrategy{name: "clipboard"}
	in := NewInjector(zap.NewNop(), cb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := in.Inject(ctx, injSession("clipboard", false, ""), "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, cb.calls, "no strategy may run after cancel")
}

func TestInjectCancelMidChainStopsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := &scriptedStrategy{name: "clipboard"}
	cb.err = errors.New("window closed")
	cancelling := &cancellingStrategy{inner: cb, cancel: cancel}
	ty := &scriptedStrategy{name: "typing"}
	in := NewInjector(zap.NewNop(), cancelling, ty)

	err := in.Inject(ctx, injSession("clipboard", false, ""), "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, cb.calls)
	assert.Zero(t, ty.calls, "fallback must not continue after cancel")
}

// cancellingStrategy cancels the session while its inner strategy is
// being attempted, mimicking a cancel hotkey racing a failing paste.
type cancellingStrategy struct {
	inner  *scriptedStrategy
	cancel context.CancelFunc
}

func (c *cancellingStrategy) Name() string { return c.inner.name }

func (c *cancellingStrategy) Deliver(ctx context.Context, text string, cfg config.Injection) error {
	c.cancel()
	return c.inner.Deliver(ctx, text, cfg)
}

func TestShape(t *testing.T) {
	both := Shaping{Capitalize: true, Punctuate: true}
	cases := []struct {
		in   string
		opts Shaping
		want string
	}{
		{"hello world", both, "Hello world."},
		{"where is the report", both, "Where is the report?"},
		{"already done.", both, "Already done."},
		{"  padded  ", both, "Padded."},
		{"hello", Shaping{}, "hello"},
		{"", both, ""},
		{"你好", both, "你好。"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Shape(c.in, c.opts), c.in)
	}
}
