// Package chunk splits large documents into overlapping, boundary-aware
// chunks so gates can run within their time budget on bounded input,
// then merges per-chunk findings back into a single document-ordered
// result equivalent to running the same gates on the whole text.
package chunk

import (
	"strings"
)

// Default sizing from the spec: texts above Threshold are chunked into
// pieces of roughly Size bytes with Overlap bytes shared between
// consecutive chunks.
const (
	DefaultThreshold = 50 * 1024
	DefaultSize      = 50 * 1024
	DefaultOverlap   = 500
)

// Chunk is one piece of a larger document: GlobalStart is the byte
// offset of Text[0] within the original document, so a gate's
// chunk-local span can be translated back with span.Shift(GlobalStart).
type Chunk struct {
	GlobalStart int
	Text        string
	// OverlapStart is the byte offset (chunk-local) at which this
	// chunk's leading overlap region with the previous chunk ends; 0
	// for the first chunk. Findings entirely within [0, OverlapStart)
	// are candidates for de-duplication against the previous chunk.
	OverlapStart int
}

// Split partitions text into chunks of approximately size bytes each,
// sharing overlap bytes between consecutive chunks, with each boundary
// snapped backward to the nearest natural break: a paragraph break,
// then a sentence end, then whitespace, then (only if none of those
// exist nearby) a hard byte split.
func Split(text string, size, overlap int) []Chunk {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= size {
		overlap = size / 2
	}

	if len(text) <= size {
		return []Chunk{{GlobalStart: 0, Text: text, OverlapStart: 0}}
	}

	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = snapBoundary(text, start, end)
		}

		overlapStart := 0
		chunkStart := start
		if len(chunks) > 0 {
			back := overlap
			if back > chunkStart {
				back = chunkStart
			}
			chunkStart -= back
			overlapStart = back
		}

		chunks = append(chunks, Chunk{
			GlobalStart:  chunkStart,
			Text:         text[chunkStart:end],
			OverlapStart: overlapStart,
		})

		if end >= len(text) {
			break
		}
		start = end
	}
	return chunks
}

// snapBoundary looks backward from end (bounded by start) for the
// nearest natural break, preferring a paragraph break, then a sentence
// end, then whitespace, falling back to end itself (a hard split) if
// none is found within the search window.
func snapBoundary(text string, start, end int) int {
	window := end - start
	searchFrom := end - window/4
	if searchFrom < start {
		searchFrom = start
	}

	if idx := lastIndexInRange(text, "\n\n", searchFrom, end); idx >= 0 {
		return idx + 2
	}
	if idx := lastSentenceEnd(text, searchFrom, end); idx >= 0 {
		return idx
	}
	if idx := lastWhitespace(text, searchFrom, end); idx >= 0 {
		return idx + 1
	}
	return end
}

func lastIndexInRange(text, sep string, from, to int) int {
	if to > len(text) {
		to = len(text)
	}
	if from < 0 || from >= to {
		return -1
	}
	idx := strings.LastIndex(text[from:to], sep)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func lastSentenceEnd(text string, from, to int) int {
	if to > len(text) {
		to = len(text)
	}
	best := -1
	for i := from; i < to; i++ {
		c := text[i]
		if c == '.' || c == '!' || c == '?' {
			best = i + 1
		}
	}
	return best
}

func lastWhitespace(text string, from, to int) int {
	if to > len(text) {
		to = len(text)
	}
	for i := to - 1; i >= from; i-- {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			return i
		}
	}
	return -1
}
