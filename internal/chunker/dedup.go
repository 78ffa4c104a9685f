package chunker

import (
	"regexp"
	"strings"
)

// DefaultDedupThreshold is the similarity above which a later chunk is
// dropped as a near-duplicate of an earlier one.
const DefaultDedupThreshold = 0.7

// fingerprintLen bounds the normalized prefix used for comparison, so
// similarity stays cheap on very large chunks.
const fingerprintLen = 300

// decorationRes strip presentation noise that would otherwise make two
// renderings of the same content look different: chunk banners,
// separator rules and length annotations.
var decorationRes = []*regexp.Regexp{
	regexp.MustCompile(`【Chunk \d+】.*?\n`),
	regexp.MustCompile(`={50,}`),
	regexp.MustCompile(`-{20,}`),
	regexp.MustCompile(`\(长度: \d+ 字符\)`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Dedup removes near-duplicate chunks, keeping the first occurrence
// and preserving order. Two chunks are near-duplicates when the
// character-set similarity of their fingerprints reaches threshold.
// Running Dedup on its own output is a no-op.
func Dedup(chunks []string, threshold float64) []string {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}
	if len(chunks) < 2 {
		return chunks
	}

	kept := make([]string, 0, len(chunks))
	seen := make([]map[rune]struct{}, 0, len(chunks))

	for _, chunk := range chunks {
		set := runeSet(Fingerprint(chunk))
		dup := false
		for _, prev := range seen {
			if jaccard(set, prev) >= threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, chunk)
		seen = append(seen, set)
	}
	return kept
}

// Fingerprint normalizes a chunk for duplicate comparison: decorations
// stripped, whitespace collapsed, lowercased and truncated to a fixed
// prefix.
func Fingerprint(chunk string) string {
	s := chunk
	for _, re := range decorationRes {
		s = re.ReplaceAllString(s, "")
	}
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.ToLower(strings.TrimSpace(s))

	runes := []rune(s)
	if len(runes) > fingerprintLen {
		return string(runes[:fingerprintLen])
	}
	return s
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// jaccard computes set similarity: |a∩b| / |a∪b|. Two empty sets are
// identical.
func jaccard(a, b map[rune]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for r := range a {
		if _, ok := b[r]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}
