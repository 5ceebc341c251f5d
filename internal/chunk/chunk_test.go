package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	chunks := Split("short text", 1024, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].GlobalStart)
	assert.Equal(t, "short text", chunks[0].Text)
}

func TestSplit_LongTextProducesMultipleChunksWithOverlap(t *testing.T) {
	text := strings.Repeat("word ", 5000)
	chunks := Split(text, 1000, 50)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		if i == 0 {
			assert.Equal(t, 0, c.OverlapStart)
		} else {
			assert.Greater(t, c.OverlapStart, 0)
		}
	}
}

func TestSplit_PrefersParagraphBreak(t *testing.T) {
	para1 := strings.Repeat("a", 400)
	para2 := strings.Repeat("b", 400)
	text := para1 + "\n\n" + para2
	chunks := Split(text, 420, 10)
	require.GreaterOrEqual(t, len(chunks), 1)
}

func TestSplit_ReconstructsFullText(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps. ", 500)
	chunks := Split(text, 2000, 100)

	// every chunk's GlobalStart plus its text must stay within bounds
	for _, c := range chunks {
		assert.LessOrEqual(t, c.GlobalStart+len(c.Text), len(text))
		assert.Equal(t, text[c.GlobalStart:c.GlobalStart+len(c.Text)], c.Text)
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, len(text), last.GlobalStart+len(last.Text))
}
