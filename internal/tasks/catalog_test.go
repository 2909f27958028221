package tasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HoldsBuiltInPrompts(t *testing.T) {
	c := Default()
	assert.Contains(t, c.Chat, "Write a joke about you")
	assert.Contains(t, c.Draw, "Draw lion with horns")
}

func TestCatalog_Pick(t *testing.T) {
	c := &Catalog{Chat: []string{"only chat"}, Draw: []string{"a", "b"}}

	got, err := c.Pick("chat")
	require.NoError(t, err)
	assert.Equal(t, "only chat", got)

	for i := 0; i < 20; i++ {
		got, err := c.Pick("draw")
		require.NoError(t, err)
		assert.Contains(t, c.Draw, got)
	}
}

func TestCatalog_PickUnknownMode(t *testing.T) {
	_, err := Default().Pick("poetry")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestCatalog_PickEmptyMode(t *testing.T) {
	c := &Catalog{Chat: []string{"x"}}
	_, err := c.Pick("draw")
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte("chat:\n  - ' hello '\n  - ''\ndraw: []\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, c.Chat)
	assert.Empty(t, c.Draw)

	_, err = Parse([]byte("chat: []\n"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = Parse([]byte("chat: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("draw:\n  - Draw a cat\n"), 0o600))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Draw a cat"}, c.Draw)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
