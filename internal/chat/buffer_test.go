package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamBufferAppendOnly(t *testing.T) {
	b := NewStreamBuffer()
	require.NoError(t, b.Append("Hel"))
	require.NoError(t, b.Append("lo"))
	assert.Equal(t, "Hello", b.String())
	assert.False(t, b.Finalized())

	b.Finalize()
	assert.ErrorIs(t, b.Append("!"), ErrFinalized)
	assert.Equal(t, "Hello", b.String())
}

func TestStreamBufferFailReplacesText(t *testing.T) {
	b := NewStreamBuffer()
	require.NoError(t, b.Append("partial"))
	b.Fail(Apology)
	assert.Equal(t, Apology, b.String())
	assert.True(t, b.Finalized())
	assert.True(t, b.Failed())
}

func TestNewFinalBuffer(t *testing.T) {
	b := NewFinalBuffer("hi")
	assert.True(t, b.Finalized())
	assert.Equal(t, "hi", b.String())
}
