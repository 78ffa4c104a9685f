package chunker

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// SizeFunc measures text for chunk budgeting. All size and overlap
// limits are expressed in the units this function returns.
type SizeFunc func(text string) int

// CharCount measures text in runes. It is the default and the right
// choice for Chinese documents, where one character carries roughly as
// much meaning as one English word.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

var (
	tokenEncOnce sync.Once
	tokenEnc     *tiktoken.Tiktoken
	tokenEncErr  error
)

// TokenCount measures text in cl100k_base tokens. The encoding is
// loaded once; if loading fails (offline cache miss), it degrades to a
// rune count so size limits keep working.
func TokenCount(text string) int {
	tokenEncOnce.Do(func() {
		tokenEnc, tokenEncErr = tiktoken.GetEncoding("cl100k_base")
	})
	if tokenEncErr != nil || tokenEnc == nil {
		return CharCount(text)
	}
	return len(tokenEnc.Encode(text, nil, nil))
}
