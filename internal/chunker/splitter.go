package chunker

import (
	"fmt"
	"strings"
)

// sentenceTerminators end a sentence. Both Chinese and ASCII forms
// count; the terminator stays attached to its sentence.
const sentenceTerminators = "。！？；.!?;"

// closingMarks may trail a terminator (closing quotes and brackets)
// and are absorbed into the preceding sentence.
const closingMarks = "”」』）)】]》>’\""

// Split breaks text into pieces no larger than maxSize units, as
// measured by sizeFn. When bySentence is true, pieces break on
// sentence boundaries and consecutive pieces share up to overlap units
// of trailing sentences; otherwise text is cut into fixed rune windows.
//
// A sentence that alone exceeds maxSize is emitted as an oversized
// piece with a warning rather than being cut mid-sentence. That is the
// only case where a returned piece exceeds maxSize.
func Split(text string, maxSize, overlap int, bySentence bool, sizeFn SizeFunc) ([]string, []string) {
	if sizeFn == nil {
		sizeFn = CharCount
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	// Within budget: hand the input back untouched so splitting already
	// split pieces is a no-op.
	if maxSize <= 0 || sizeFn(text) <= maxSize {
		return []string{text}, nil
	}
	text = trimmed
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize - 1
	}

	if !bySentence {
		return splitRaw(text, maxSize, overlap), nil
	}
	return splitSentenceWise(text, maxSize, overlap, sizeFn)
}

// splitRaw cuts text into rune windows of maxSize with overlap runes
// shared between consecutive windows.
func splitRaw(text string, maxSize, overlap int) []string {
	runes := []rune(text)
	step := maxSize - overlap
	if step < 1 {
		step = 1
	}

	var pieces []string
	for start := 0; start < len(runes); start += step {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return pieces
}

func splitSentenceWise(text string, maxSize, overlap int, sizeFn SizeFunc) ([]string, []string) {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return []string{text}, nil
	}

	var (
		pieces   []string
		warnings []string
		current  []string
	)

	for _, sent := range sentences {
		sentSize := sizeFn(sent)

		// A sentence larger than the whole budget cannot be placed
		// without cutting it mid-sentence. Emit it as its own
		// oversized piece and note it.
		if sentSize > maxSize {
			if len(current) > 0 {
				pieces = append(pieces, strings.Join(current, " "))
				current = nil
			}
			pieces = append(pieces, sent)
			warnings = append(warnings, fmt.Sprintf(
				"sentence of size %d exceeds max chunk size %d, emitted unsplit", sentSize, maxSize))
			continue
		}

		if len(current) > 0 && sizeFn(joined(current, sent)) > maxSize {
			full := strings.Join(current, " ")
			pieces = append(pieces, full)

			current = overlapTail(current, overlap, sizeFn)
			if len(current) == 0 && overlap > 0 {
				// No whole sentence fits the overlap window; carry a
				// raw tail of the previous piece instead.
				if tail := rawTail(full, overlap); tail != "" {
					current = []string{tail}
				}
			}
			// Drop the carried overlap rather than break the size
			// bound when it cannot share a piece with this sentence.
			if len(current) > 0 && sizeFn(joined(current, sent)) > maxSize {
				current = nil
			}
		}

		current = append(current, sent)
	}
	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}

	return pieces, warnings
}

func joined(current []string, next string) string {
	return strings.Join(current, " ") + " " + next
}

// overlapTail returns the longest run of trailing sentences whose
// combined size fits within overlap units.
func overlapTail(sentences []string, overlap int, sizeFn SizeFunc) []string {
	if overlap <= 0 {
		return nil
	}
	total := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		s := sizeFn(sentences[i])
		if total+s > overlap {
			break
		}
		total += s
		start = i
	}
	if start == len(sentences) {
		return nil
	}
	return append([]string(nil), sentences[start:]...)
}

// rawTail returns the last n runes of text.
func rawTail(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[len(runes)-n:]))
}

// SplitSentences segments text on sentence terminators. Terminators
// remain attached, closing quotes and brackets after a terminator are
// absorbed into the sentence, and fragments of two runes or fewer are
// dropped as punctuation noise.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if !strings.ContainsRune(sentenceTerminators, r) {
			continue
		}
		// Pull trailing closers into this sentence.
		for i+1 < len(runes) && strings.ContainsRune(closingMarks, runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		appendSentence(&sentences, current.String())
		current.Reset()
	}
	appendSentence(&sentences, current.String())

	return sentences
}

func appendSentence(sentences *[]string, s string) {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= 2 {
		return
	}
	*sentences = append(*sentences, s)
}
