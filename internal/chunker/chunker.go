// Package chunker splits text into bounded-size chunks on sentence
// boundaries. Splitting is pure and deterministic: the same input and bound
// always yield the same chunk sequence, and concatenating the chunks in order
// reproduces the input exactly.
package chunker

import "unicode/utf8"

// Chunk is a contiguous ordered slice of the original content.
type Chunk struct {
	Index int
	Text  string
	Size  int // size in characters (runes)
}

// Terminal punctuation marks that end a sentence unit, ASCII and full-width.
var terminals = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// Split packs consecutive sentence units into chunks of at most maxChars
// characters. A single sentence longer than the bound becomes its own
// oversized chunk; sentences are never split mid-way, trading strict size
// compliance for semantic continuity. Empty content yields no chunks.
func Split(content string, maxChars int) []Chunk {
	if content == "" {
		return nil
	}

	sentences := splitSentences(content)

	var chunks []Chunk
	var current string
	currentSize := 0
	for _, sentence := range sentences {
		size := utf8.RuneCountInString(sentence)
		if currentSize+size <= maxChars {
			current += sentence
			currentSize += size
			continue
		}
		if current != "" {
			chunks = append(chunks, Chunk{Index: len(chunks), Text: current, Size: currentSize})
		}
		current = sentence
		currentSize = size
	}
	if current != "" {
		chunks = append(chunks, Chunk{Index: len(chunks), Text: current, Size: currentSize})
	}
	return chunks
}

// splitSentences cuts content after each terminal punctuation mark, keeping
// the mark attached to the sentence it ends. Trailing text without a terminal
// mark forms the final sentence.
func splitSentences(content string) []string {
	var sentences []string
	start := 0
	for i, r := range content {
		if terminals[r] {
			end := i + utf8.RuneLen(r)
			sentences = append(sentences, content[start:end])
			start = end
		}
	}
	if start < len(content) {
		sentences = append(sentences, content[start:])
	}
	return sentences
}
