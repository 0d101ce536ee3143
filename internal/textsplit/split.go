// Package textsplit cuts long text into bounded, overlapping chunks for
// retrieval.
//
// Text is first broken on the coarsest separator that yields pieces no longer
// than the chunk size (paragraphs, then lines, sentences, words and finally
// single characters). The pieces are then packed greedily into chunks, and
// each new chunk starts with the trailing pieces of the previous one so that
// context carries across the boundary. Chunks are spans of the original text:
// nothing is trimmed or dropped.
package textsplit

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Defaults used by the ask-the-AI pipeline.
const (
	DefaultChunkSize = 300
	DefaultOverlap   = 120
)

// DefaultSeparators lists split points from most to least preferred.
// The empty separator splits into single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// ErrInvalidSize reports an unusable chunk size / overlap pair.
var ErrInvalidSize = errors.New("textsplit: invalid chunk size or overlap")

// Chunk is a span [Start, End) of the original text, in bytes.
type Chunk struct {
	Text  string
	Start int
	End   int
}

type piece struct {
	start, end int
	runes      int
}

// Split returns the chunks of text. Every chunk holds at most chunkSize
// characters and consecutive chunks share at most overlap characters.
func Split(text string, chunkSize, overlap int) ([]Chunk, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidSize, chunkSize, overlap)
	}
	if text == "" {
		return nil, nil
	}

	pieces := atomize(text, 0, DefaultSeparators, chunkSize, nil)
	return merge(text, pieces, chunkSize, overlap), nil
}

// atomize appends to out the pieces of s (which starts at offset in the full
// text), each no longer than chunkSize characters.
func atomize(s string, offset int, seps []string, chunkSize int, out []piece) []piece {
	n := utf8.RuneCountInString(s)
	if n <= chunkSize {
		return append(out, piece{start: offset, end: offset + len(s), runes: n})
	}

	sep := seps[0]
	if sep == "" {
		for i, r := range s {
			out = append(out, piece{start: offset + i, end: offset + i + utf8.RuneLen(r), runes: 1})
		}
		return out
	}
	if !strings.Contains(s, sep) {
		return atomize(s, offset, seps[1:], chunkSize, out)
	}

	pos := 0
	for pos < len(s) {
		end := len(s)
		if i := strings.Index(s[pos:], sep); i >= 0 {
			end = pos + i + len(sep)
		}
		part := s[pos:end]
		if utf8.RuneCountInString(part) <= chunkSize {
			out = append(out, piece{start: offset + pos, end: offset + end, runes: utf8.RuneCountInString(part)})
		} else {
			out = atomize(part, offset+pos, seps[1:], chunkSize, out)
		}
		pos = end
	}
	return out
}

func merge(text string, pieces []piece, chunkSize, overlap int) []Chunk {
	var (
		chunks    []Chunk
		window    []piece
		windowLen int
	)

	emit := func() {
		start, end := window[0].start, window[len(window)-1].end
		chunks = append(chunks, Chunk{Text: text[start:end], Start: start, End: end})
	}

	for _, p := range pieces {
		if len(window) > 0 && windowLen+p.runes > chunkSize {
			emit()
			for len(window) > 0 && (windowLen > overlap || windowLen+p.runes > chunkSize) {
				windowLen -= window[0].runes
				window = window[1:]
			}
		}
		window = append(window, p)
		windowLen += p.runes
	}
	if len(window) > 0 {
		emit()
	}
	return chunks
}

// Join rebuilds the original text from chunks produced by Split by dropping
// the overlapping prefix of every chunk after the first.
func Join(chunks []Chunk) string {
	var sb strings.Builder
	end := 0
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c.Text)
		} else {
			sb.WriteString(c.Text[end-c.Start:])
		}
		end = c.End
	}
	return sb.String()
}
