package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyAPIKeyErrors(t *testing.T) {
	_, err := New("", "")
	assert.Error(t, err)
}

func TestNew_DefaultsModelName(t *testing.T) {
	c, err := New("test-key", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.ModelName())
}

func TestClient_CloseIsNoop(t *testing.T) {
	c, err := New("test-key", "")
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
