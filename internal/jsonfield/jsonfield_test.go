package jsonfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupNestedPaths(t *testing.T) {
	doc := []byte(`{
		"text": "hello",
		"data": {"items": [{"value": "a"}, {"value": "b"}]},
		"results": [{"alternatives": [{"transcript": "ok"}]}]
	}`)

	cases := []struct {
		expr string
		want string
	}{
		{"text", "hello"},
		{"data.items[1].value", "b"},
		{"results[0].alternatives[0].transcript", "ok"},
	}
	for _, c := range cases {
		p, err := Compile(c.expr)
		require.NoError(t, err, c.expr)
		got, ok := p.Lookup(doc)
		require.True(t, ok, c.expr)
		assert.Equal(t, c.want, got)
	}
}

func TestLookupMisses(t *testing.T) {
	doc := []byte(`{"data": {"items": ["a"]}}`)
	for _, expr := range []string{"data.items[3]", "data.missing", "data.items[0].deeper"} {
		p, err := Compile(expr)
		require.NoError(t, err)
		_, ok := p.Lookup(doc)
		assert.False(t, ok, expr)
	}
}

func TestCompileRejectsMalformed(t *testing.T) {
	for _, expr := range []string{"", "a..b", "a[", "a[x]"} {
		_, err := Compile(expr)
		assert.Error(t, err, expr)
	}
}

func TestTextFallsBack(t *testing.T) {
	assert.Equal(t, "hi", Text([]byte(`{"text": "hi"}`), "missing.path"))
	assert.Equal(t, "first", Text([]byte(`{"only": "first"}`), ""))
	assert.Equal(t, "", Text([]byte(`not json`), "text"))
	assert.Equal(t, "42", Text([]byte(`{"text": 42}`), "text"))
}
