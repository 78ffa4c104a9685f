package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortCircuit(t *testing.T) {
	text := "第一条 本合同自签订之日起生效。"
	pieces, warnings := Split(text, 1000, 200, true, CharCount)
	if len(pieces) != 1 || pieces[0] != text {
		t.Fatalf("got %v, want [%q]", pieces, text)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestSplitShortCircuitVerbatim(t *testing.T) {
	// Whitespace-padded input within budget comes back untouched, so
	// splitting is idempotent.
	text := "  第一条 本合同自签订之日起生效。  "
	pieces, _ := Split(text, 1000, 200, true, CharCount)
	if len(pieces) != 1 || pieces[0] != text {
		t.Fatalf("got %v, want [%q]", pieces, text)
	}
	again, _ := Split(pieces[0], 1000, 200, true, CharCount)
	if len(again) != 1 || again[0] != pieces[0] {
		t.Fatalf("second pass changed output: %v", again)
	}
}

func TestSplitEmpty(t *testing.T) {
	pieces, warnings := Split("   ", 100, 0, true, CharCount)
	if pieces != nil || warnings != nil {
		t.Fatalf("got %v / %v, want nil / nil", pieces, warnings)
	}
}

func TestSplitBySentenceBoundaries(t *testing.T) {
	pieces, warnings := Split("第一条 ABC。第二条 DEF。", 8, 0, true, CharCount)
	want := []string{"第一条 ABC。", "第二条 DEF。"}
	if len(pieces) != len(want) {
		t.Fatalf("got %d pieces %v, want %v", len(pieces), pieces, want)
	}
	for i := range want {
		if pieces[i] != want[i] {
			t.Errorf("pieces[%d] = %q, want %q", i, pieces[i], want[i])
		}
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestSplitOversizedSentenceEscapeHatch(t *testing.T) {
	text := "一个很长很长很长很长很长很长很长很长的单句没有句号"
	pieces, warnings := Split(text, 5, 0, true, CharCount)
	if len(pieces) != 1 || pieces[0] != text {
		t.Fatalf("got %v, want the sentence unsplit", pieces)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "exceeds max chunk size") {
		t.Errorf("warning = %q, want oversized-sentence note", warnings[0])
	}
}

func TestSplitSizeBound(t *testing.T) {
	text := strings.Repeat("甲方应当履行义务。乙方应当支付价款。", 20)
	pieces, _ := Split(text, 50, 10, true, CharCount)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	for i, p := range pieces {
		if CharCount(p) > 50 {
			t.Errorf("pieces[%d] size %d exceeds 50: %q", i, CharCount(p), p)
		}
	}
}

func TestSplitWholeSentenceOverlap(t *testing.T) {
	// Four sentences of 9 runes each; budget fits two per piece, and
	// the 10-rune overlap window fits exactly the last sentence.
	text := "一二三四五六七八。二二三四五六七八。三二三四五六七八。四二三四五六七八。"
	pieces, warnings := Split(text, 20, 10, true, CharCount)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(pieces) < 2 {
		t.Fatalf("expected overlapping pieces, got %v", pieces)
	}
	for i := 1; i < len(pieces); i++ {
		prevLast := lastSentence(pieces[i-1])
		if !strings.HasPrefix(pieces[i], prevLast) {
			t.Errorf("pieces[%d] %q does not start with previous tail sentence %q", i, pieces[i], prevLast)
		}
	}
}

func TestSplitRawTailOverlapFallback(t *testing.T) {
	// Sentences of 9 runes with a 4-rune overlap window: no whole
	// sentence fits, so the raw tail of the previous piece carries over.
	text := "一二三四五六七八。二二三四五六七八。三二三四五六七八。"
	pieces, _ := Split(text, 15, 4, true, CharCount)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %v", pieces)
	}
	tail := rawTail(pieces[0], 4)
	if !strings.HasPrefix(pieces[1], tail) {
		t.Errorf("pieces[1] = %q, want raw-tail prefix %q", pieces[1], tail)
	}
}

func TestSplitRawMode(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10)
	pieces, warnings := Split(text, 30, 5, false, CharCount)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	for i, p := range pieces {
		if utf8.RuneCountInString(p) > 30 {
			t.Errorf("pieces[%d] size %d exceeds 30", i, utf8.RuneCountInString(p))
		}
	}
	// Step is maxSize-overlap, so consecutive windows share 5 runes.
	if len(pieces) < 4 {
		t.Errorf("got %d pieces, want at least 4", len(pieces))
	}
}

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "terminators retained",
			in:   "甲方交付货物。乙方支付价款！双方确认无误？",
			want: []string{"甲方交付货物。", "乙方支付价款！", "双方确认无误？"},
		},
		{
			name: "closing quote absorbed",
			in:   "他说：“合同已签。”随后离开了。",
			want: []string{"他说：“合同已签。”", "随后离开了。"},
		},
		{
			name: "closing bracket absorbed",
			in:   "详见附件（合同正本。）另行送达。",
			want: []string{"详见附件（合同正本。）", "另行送达。"},
		},
		{
			name: "no terminator",
			in:   "没有终止符的一段文字",
			want: []string{"没有终止符的一段文字"},
		},
		{
			name: "ascii semicolon",
			in:   "first clause; second clause.",
			want: []string{"first clause;", "second clause."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSentences(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func lastSentence(text string) string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return text
	}
	return sentences[len(sentences)-1]
}
