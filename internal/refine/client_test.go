package refine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/config"
	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

func refineSession(base string) *session.Session {
	cfg := config.Default()
	cfg.Refine.Enabled = true
	cfg.Refine.Endpoint = base
	cfg.Refine.APIKey = "sk-test"
	cfg.Refine.Model = "gpt-4o-mini"
	cfg.Refine.Prompt = "Fix punctuation."
	return session.New(cfg, "")
}

func TestRefineReturnsModelOutput(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": " Hello, world. "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop())
	out, err := c.Refine(context.Background(), refineSession(srv.URL), "hello world")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", out)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])

	msgs := gotBody["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "Fix punctuation.", msgs[0].(map[string]interface{})["content"])
	assert.Equal(t, "hello world", msgs[1].(map[string]interface{})["content"])
}

func TestRefineErrorsSurfaceToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop())
	_, err := c.Refine(context.Background(), refineSession(srv.URL), "text")
	assert.Error(t, err)
}

func TestRefineRejectsEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop())
	_, err := c.Refine(context.Background(), refineSession(srv.URL), "text")
	assert.Error(t, err)
}

func TestRefineUnreachableEndpoint(t *testing.T) {
	c := NewClient(nil, zap.NewNop())
	_, err := c.Refine(context.Background(), refineSession("http://127.0.0.1:1"), "text")
	assert.Error(t, err)
}
