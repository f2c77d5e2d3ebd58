package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.Listing("work", []string{"ctrl+1 -> open", "ctrl+2 -> close"})
	c.Listing("empty", nil)

	assert.Equal(t, "work\n  ctrl+1 -> open\n  ctrl+2 -> close\nempty\n  (no hotkeys)\n", out.String())
}

func TestChoices(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.Choices("", []string{"work", "game"})

	s := out.String()
	assert.Contains(t, s, "Current mapping: (none)")
	assert.Contains(t, s, "  work\n  game\n")
}

func TestPromptReadsLines(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("  work \nexit"), &out)

	line, err := c.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "work", line)

	line, err = c.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "exit", line)

	_, err = c.Prompt("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out.String(), "> ")
}

func TestBlockOnNonTerminal(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.Block([]string{"a", "b"}, true)
	c.Block([]string{"c", "d"}, false)

	assert.Equal(t, "a\nb\nc\nd\n", out.String())
}

func TestStatusAndWarn(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.Status("ready %d", 1)
	c.Warn("alias %q not found", "x")

	assert.Equal(t, "ready 1\nalias \"x\" not found\n", out.String())
}
