package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	c := New(100, 0)
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\t  "))
}

func TestSplitSingleShortText(t *testing.T) {
	c := New(100, 0)
	chunks := c.Split("revenue grew twelve percent")
	require.Len(t, chunks, 1)
	assert.Equal(t, "revenue grew twelve percent", chunks[0])
}

func TestSplitRespectsSizeBudget(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = fmt.Sprintf("word%03d", i)
	}
	text := strings.Join(words, " ")

	for _, size := range []int{20, 50, 100, 333, 1000} {
		c := New(size, 0)
		for _, chunk := range c.Split(text) {
			assert.LessOrEqual(t, len(chunk), size, "size=%d chunk=%q", size, chunk)
		}
	}
}

func TestSplitPreservesAllWordsWithoutOverlap(t *testing.T) {
	words := []string{"net", "income", "attributable", "to", "shareholders", "rose",
		"by", "eleven", "percent", "versus", "the", "prior", "fiscal", "year"}
	text := strings.Join(words, " ")

	for _, size := range []int{10, 25, 60, 500} {
		c := New(size, 0)
		var got []string
		for _, chunk := range c.Split(text) {
			got = append(got, strings.Fields(chunk)...)
		}
		assert.Equal(t, words, got, "size=%d", size)
	}
}

func TestSplitOversizedWordEmittedAlone(t *testing.T) {
	long := strings.Repeat("x", 50)
	c := New(20, 0)

	chunks := c.Split("short " + long + " tail")
	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0])
	assert.Equal(t, long, chunks[1])
	assert.Equal(t, "tail", chunks[2])

	// oversized word as the very first token
	chunks = c.Split(long + " tail")
	require.Len(t, chunks, 2)
	assert.Equal(t, long, chunks[0])
	assert.Equal(t, "tail", chunks[1])
}

func TestSplitCarriesOverlap(t *testing.T) {
	c := New(30, 10)
	chunks := c.Split("alpha bravo charlie delta echo foxtrot golf hotel india")
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		cur := strings.Fields(chunks[i])
		assert.Equal(t, prev[len(prev)-1], cur[0],
			"chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestSplitZeroOverlapNoDuplicates(t *testing.T) {
	c := New(25, 0)
	seen := map[string]int{}
	for _, chunk := range c.Split("one two three four five six seven eight nine ten") {
		for _, w := range strings.Fields(chunk) {
			seen[w]++
		}
	}
	for w, n := range seen {
		assert.Equal(t, 1, n, "word %q emitted %d times", w, n)
	}
}

func TestNewClampsBadConfig(t *testing.T) {
	c := New(0, -1)
	assert.Equal(t, defaultChunkSize, c.size)
	assert.Equal(t, defaultChunkOverlap, c.overlap)

	// overlap at least as large as size would never make progress
	c = New(10, 10)
	assert.Equal(t, 5, c.overlap)
}
