package chunker

import "strings"

const (
	defaultChunkSize    = 1000 // bytes
	defaultChunkOverlap = 200  // bytes
)

// Chunker splits text into bounded-size word chunks. Words are never cut:
// a single word longer than the size budget is emitted alone and verbatim.
// When an overlap is configured, the trailing words of each emitted chunk
// are carried into the next one.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split tokenizes on whitespace and greedily packs words into chunks while
// the running length (word bytes plus one separator per word) stays within
// the size budget. Deterministic: same input, same configuration, same
// chunks.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	var chunks []string
	var current []string
	length := 0

	for _, word := range words {
		if length+len(word)+1 > c.size {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
				current = append(c.carryTail(current), word)
				length = runningLen(current)
				if length > c.size {
					// carry plus the new word would not fit, drop the carry
					current = []string{word}
					length = len(word) + 1
				}
			} else {
				// single word exceeds the budget, emit it alone
				chunks = append(chunks, word)
				current = nil
				length = 0
			}
		} else {
			current = append(current, word)
			length += len(word) + 1
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// carryTail returns the trailing words of an emitted chunk whose joined
// length fits the configured overlap. The whole chunk is never carried, so
// accumulation always makes progress.
func (c *Chunker) carryTail(words []string) []string {
	if c.overlap == 0 || len(words) < 2 {
		return nil
	}
	length := 0
	start := len(words)
	for i := len(words) - 1; i > 0; i-- {
		length += len(words[i]) + 1
		if length > c.overlap {
			break
		}
		start = i
	}
	if start == len(words) {
		return nil
	}
	tail := make([]string, len(words)-start)
	copy(tail, words[start:])
	return tail
}

func runningLen(words []string) int {
	n := 0
	for _, w := range words {
		n += len(w) + 1
	}
	return n
}
