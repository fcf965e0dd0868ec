package chunker

import (
	"slices"
	"unicode/utf8"
)

// Tokenizer converts between text and token ids.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// clamp applies defaults to invalid sizes and keeps overlap below size.
func clamp(size, overlap int) (int, int) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return size, overlap
}

// Split cuts text into chunks of at most size runes. Consecutive chunks
// share overlap runes. Empty text yields no chunks; any other text yields
// at least one. Dropping the first overlap runes of every chunk after the
// first and concatenating gives back text exactly.
func Split(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}

	size, overlap = clamp(size, overlap)
	runes := []rune(text)

	return windows(len(runes), size, overlap, func(start, end int) string {
		return string(runes[start:end])
	})
}

// SplitTokens cuts text into chunks of at most size tokens, sharing
// overlap tokens between neighbours. Window edges that fall inside a
// multi-byte rune move forward to the next rune, so every chunk is valid
// UTF-8 and the chunks still rejoin to text.
func SplitTokens(tok Tokenizer, text string, size, overlap int) []string {
	if text == "" {
		return nil
	}

	size, overlap = clamp(size, overlap)
	tokens := tok.Encode(text)
	if len(tokens) == 0 {
		return []string{text}
	}

	// offsets[i] is the byte offset in text where token i starts.
	offsets := make([]int, len(tokens)+1)
	for i, t := range tokens {
		offsets[i+1] = offsets[i] + len(tok.Decode([]int{t}))
	}
	if offsets[len(tokens)] != len(text) {
		return windows(len(tokens), size, overlap, func(start, end int) string {
			return tok.Decode(tokens[start:end])
		})
	}

	chunks := windows(len(tokens), size, overlap, func(start, end int) string {
		return text[runeStart(text, offsets[start]):runeStart(text, offsets[end])]
	})
	return slices.DeleteFunc(chunks, func(c string) bool { return c == "" })
}

// runeStart returns the first rune boundary in s at or after i.
func runeStart(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

// windows walks [0,n) in windows of size advancing by size-overlap and
// stops once a window reaches n.
func windows(n, size, overlap int, cut func(start, end int) string) []string {
	step := size - overlap
	out := make([]string, 0, n/step+1)

	for start := 0; start < n; start += step {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, cut(start, end))
		if end == n {
			break
		}
	}

	return out
}
