package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

func newSession(endpoint string) *session.Session {
	cfg := config.Default()
	cfg.Transcribe.Endpoint = endpoint
	cfg.Transcribe.Token = "tok-123"
	cfg.Transcribe.TextPath = "result.text"
	s := session.New(cfg, "notepad.exe")
	s.AppendFrame(make([]int16, 480), 0.05)
	s.AppendFrame(make([]int16, 480), 0.05)
	return s
}

func TestTranscribeExtractsConfiguredPath(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(16<<20))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		w.Write([]byte(`{"result": {"text": "hello world"}}`))
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop())
	text, err := c.Transcribe(context.Background(), newSession(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestTranscribeRetriesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "backend busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"result": {"text": "second try"}}`))
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop())
	text, err := c.Transcribe(context.Background(), newSession(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "second try", text)
	assert.Equal(t, 2, calls)
}

func TestTranscribeRetryExhausted(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop())
	_, err := c.Transcribe(context.Background(), newSession(srv.URL))
	require.Error(t, err)
	assert.Equal(t, 2, calls, "exactly one retry")
	kind, ok := session.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, session.KindTranscription, kind)
}

func TestTranscribeEmptyTranscriptIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"text": ""}}`))
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop())
	text, err := c.Transcribe(context.Background(), newSession(srv.URL))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestTranscribeStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(nil, zap.NewNop())
	_, err := c.Transcribe(ctx, newSession(srv.URL))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPClientHonorsTransportOptions(t *testing.T) {
	insecure := NewHTTPClient(config.Transcribe{VerifySSL: false})
	tr, ok := insecure.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)

	strict := NewHTTPClient(config.Transcribe{VerifySSL: true, HTTP2: true})
	tr, ok = strict.Transport.(*http.Transport)
	require.True(t, ok)
	assert.False(t, tr.TLSClientConfig.InsecureSkipVerify)
	assert.NotEmpty(t, tr.TLSClientConfig.NextProtos, "h2 negotiation configured")
}

func TestUploadTimeoutScalesWithAudio(t *testing.T) {
	cfg := config.Transcribe{TimeoutFactor: 1.5, TimeoutFloor: 10, TimeoutCeil: 90}

	assert.Equal(t, 10*time.Second, uploadTimeout(cfg, 2))    // floor
	assert.Equal(t, 30*time.Second, uploadTimeout(cfg, 20))   // proportional
	assert.Equal(t, 90*time.Second, uploadTimeout(cfg, 3600)) // ceiling
}
