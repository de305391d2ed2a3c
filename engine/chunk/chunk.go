// Package chunk splits raw document text into the minimal retrievable units
// stored in the vector index. Contracts and policies are segmented on
// numbered section headers ("1. Introduction") and, within section bodies,
// on sentence boundaries.
package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Chunk is a single retrievable text unit with a globally unique id. Ids are
// random UUIDs: re-chunking the same text never reuses an id.
type Chunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Split segments text into an ordered sequence of chunks. Section headers
// become one chunk each; body text between headers is split per sentence.
// Empty or whitespace-only input yields an empty sequence. Split never
// fails.
func Split(text string) []Chunk {
	var chunks []Chunk

	emit := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		chunks = append(chunks, Chunk{ID: uuid.NewString(), Text: s})
	}

	start := 0
	for i := 0; i < len(text); {
		end := headerEnd(text, i)
		if end < 0 {
			i++
			continue
		}
		for _, s := range splitSentences(text[start:i]) {
			emit(s)
		}
		emit(text[i:end])
		start, i = end, end
	}
	for _, s := range splitSentences(text[start:]) {
		emit(s)
	}
	return chunks
}

// headerEnd reports the end offset of a section header starting at i, or -1
// if no header starts there. A header is a run of digits, a period, one
// whitespace character, and the heading word. "10)" style numbering is not
// recognized and falls through to sentence splitting.
func headerEnd(text string, i int) int {
	j := i
	for j < len(text) && text[j] >= '0' && text[j] <= '9' {
		j++
	}
	if j == i || j >= len(text) || text[j] != '.' {
		return -1
	}
	j++
	sep, size := utf8.DecodeRuneInString(text[j:])
	if size == 0 || !unicode.IsSpace(sep) {
		return -1
	}
	j += size
	k := j
	for k < len(text) {
		r, size := utf8.DecodeRuneInString(text[k:])
		if unicode.IsSpace(r) {
			break
		}
		k += size
	}
	if k == j {
		return -1
	}
	return k
}

// splitSentences splits body text on sentence boundaries: a terminator
// (. ! ?) immediately followed by whitespace and an uppercase letter. The
// terminator stays with the preceding sentence, the whitespace is consumed.
// The rule deliberately misfires on abbreviations ("Mr. Smith" splits after
// "Mr.") to stay faithful to the documented boundary behavior.
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != '.' && r != '!' && r != '?' {
			i += size
			continue
		}
		j := i + size
		for j < len(s) {
			ws, wsize := utf8.DecodeRuneInString(s[j:])
			if !unicode.IsSpace(ws) {
				break
			}
			j += wsize
		}
		next, _ := utf8.DecodeRuneInString(s[j:])
		if j > i+size && j < len(s) && unicode.IsUpper(next) {
			if piece := strings.TrimSpace(s[start : i+size]); piece != "" {
				out = append(out, piece)
			}
			start, i = j, j
			continue
		}
		i += size
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
