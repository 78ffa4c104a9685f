// Package classify decides whether a text fragment is a heading and at
// what hierarchy level. The rule-based classifier is tuned for numbered
// Chinese legal and contract documents (编/篇/章/节/条/款/项/目) with a
// secondary table for generic Chinese/Latin numbering.
package classify

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Hierarchy levels, 1 = broadest structural unit. LevelDefault is the
// sentinel reported for plain (non-heading) content.
const (
	LevelBook        = 1  // 编
	LevelPart        = 2  // 篇
	LevelChapter     = 3  // 章
	LevelSection     = 4  // 节
	LevelArticle     = 5  // 条
	LevelClause      = 6  // 款
	LevelItem        = 7  // 项
	LevelSubItem     = 8  // 目
	LevelParagraph   = 9  // 段
	LevelEnumeration = 10 // （一）、一、
	LevelNumbering   = 11 // 1、 1.2

	LevelDefault = 10
)

// Result is a single classification outcome. Confidence exists for
// non-deterministic classifiers; the rule-based classifier always
// reports 1.0.
type Result struct {
	IsHeading  bool    `json:"is_heading"`
	Level      int     `json:"level"`
	Confidence float64 `json:"confidence"`
}

// NotHeading is the result for plain content.
func NotHeading() Result {
	return Result{IsHeading: false, Level: LevelDefault, Confidence: 1.0}
}

// Classifier decides heading-ness for a single trimmed fragment.
// Implementations hold only read-only state after construction and are
// safe for concurrent use.
type Classifier interface {
	Classify(text string) Result
}

// BatchClassifier is implemented by classifiers that benefit from seeing
// many fragments at once (e.g. a remote LLM-backed classifier). The
// returned slice always has one entry per input, in order.
type BatchClassifier interface {
	Classifier
	ClassifyBatch(ctx context.Context, texts []string) []Result
}

type patternEntry struct {
	re    *regexp.Regexp
	level int
}

// Config tunes the rule-based classifier. The zero value is usable;
// Defaults are applied by NewRuleBased.
type Config struct {
	// DocumentType selects pattern priority: "legal", "contract" and
	// "regulation" try the legal table first; "general" tries generic
	// numbering first.
	DocumentType string

	// FuzzyFallback enables the short-fragment heuristic for text no
	// pattern matched.
	FuzzyFallback bool

	// FuzzyMaxLen is the rune-length ceiling for the fuzzy heuristic.
	FuzzyMaxLen int

	// ArticleMaxLen is the rune length beyond which an article-level
	// match (第X条) is treated as clause body rather than a heading.
	ArticleMaxLen int
}

// DefaultConfig returns the settings used for legal documents.
func DefaultConfig() Config {
	return Config{
		DocumentType:  "legal",
		FuzzyFallback: true,
		FuzzyMaxLen:   30,
		ArticleMaxLen: 50,
	}
}

// RuleBased classifies headings with precompiled pattern tables.
// Construct once and share; it is immutable after construction.
type RuleBased struct {
	cfg   Config
	table []patternEntry
}

const cnNum = `[一二三四五六七八九十百千万\d]+`

var legalPatterns = []struct {
	expr  string
	level int
}{
	{`^第` + cnNum + `编\s*`, LevelBook},
	{`^第` + cnNum + `篇\s*`, LevelPart},
	{`^第` + cnNum + `章\s*`, LevelChapter},
	{`^第` + cnNum + `节\s*`, LevelSection},
	{`^第` + cnNum + `条\s*`, LevelArticle},
	{`^第` + cnNum + `款\s*`, LevelClause},
	{`^第` + cnNum + `项\s*`, LevelItem},
	{`^第` + cnNum + `目\s*`, LevelSubItem},
	{`^（` + cnNum + `）\s*`, LevelEnumeration},
	{`^\(` + cnNum + `\)\s*`, LevelEnumeration},
	{`^[一二三四五六七八九十百千万]+[、．.]\s*`, LevelEnumeration},
	{`^\d+[、．.]\s*`, LevelNumbering},
	{`^\d+\.\d+[、．.]?\s*`, LevelNumbering},
	{`^\d+\)\s*`, LevelNumbering},
}

var generalPatterns = []struct {
	expr  string
	level int
}{
	{`(?i)^Chapter\s+\d+`, LevelChapter},
	{`(?i)^Section\s+\d+`, LevelSection},
	{`(?i)^Article\s+\d+`, LevelArticle},
	{`^[一二三四五六七八九十\d]+[、．]\s*`, LevelEnumeration},
	{`^（[一二三四五六七八九十\d]+）\s*`, LevelEnumeration},
	{`^\d+\.\d+\.?\s+`, LevelNumbering},
	{`^\d+\.?\s+`, LevelNumbering},
}

// Fragments containing these words read like clause bodies, not titles.
var contentKeywords = []string{"内容", "规定", "说明", "包含", "详细"}

// Extra markers used only for the article downgrade check.
var articleContentKeywords = append([]string{"很长", "多"}, contentKeywords...)

var sentenceEndings = []string{"。", ".", "！", "!", "？", "?", "；", ";", "：", ":"}

// NewRuleBased compiles the pattern tables for the given configuration.
func NewRuleBased(cfg Config) *RuleBased {
	if cfg.FuzzyMaxLen <= 0 {
		cfg.FuzzyMaxLen = 30
	}
	if cfg.ArticleMaxLen <= 0 {
		cfg.ArticleMaxLen = 50
	}
	if cfg.DocumentType == "" {
		cfg.DocumentType = "legal"
	}

	c := &RuleBased{cfg: cfg}

	legalFirst := cfg.DocumentType != "general"
	if legalFirst {
		c.appendPatterns(legalPatterns)
		c.appendPatterns(generalPatterns)
	} else {
		c.appendPatterns(generalPatterns)
		c.appendPatterns(legalPatterns)
	}
	return c
}

func (c *RuleBased) appendPatterns(src []struct {
	expr  string
	level int
}) {
	for _, p := range src {
		c.table = append(c.table, patternEntry{
			re:    regexp.MustCompile(p.expr),
			level: p.level,
		})
	}
}

// Classify reports whether text is a heading and at what level. The
// first matching pattern wins; an article-level match is downgraded to
// plain content when the fragment is long or reads like clause body.
func (c *RuleBased) Classify(text string) Result {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < 2 || n > 200 {
		return NotHeading()
	}

	for _, entry := range c.table {
		if !entry.re.MatchString(text) {
			continue
		}
		if entry.level == LevelArticle && c.articleLooksLikeContent(text, n) {
			continue
		}
		return Result{IsHeading: true, Level: entry.level, Confidence: 1.0}
	}

	if c.cfg.FuzzyFallback && c.fuzzyHeading(text, n) {
		return Result{IsHeading: true, Level: LevelDefault, Confidence: 1.0}
	}

	return NotHeading()
}

// articleLooksLikeContent guards against long clause bodies that merely
// start with a 第X条 marker.
func (c *RuleBased) articleLooksLikeContent(text string, runeLen int) bool {
	if runeLen > c.cfg.ArticleMaxLen {
		return true
	}
	for _, word := range articleContentKeywords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// fuzzyHeading treats short fragments without terminal punctuation,
// clause separators or content keywords as headings.
func (c *RuleBased) fuzzyHeading(text string, runeLen int) bool {
	if runeLen >= c.cfg.FuzzyMaxLen {
		return false
	}
	for _, end := range sentenceEndings {
		if strings.HasSuffix(text, end) {
			return false
		}
	}
	if strings.ContainsAny(text, "，,、") {
		return false
	}
	for _, word := range contentKeywords {
		if strings.Contains(text, word) {
			return false
		}
	}
	return true
}

// ClassifyBatch applies Classify to each fragment. It exists so the
// rule-based classifier satisfies BatchClassifier and can serve as the
// fallback for remote classifiers.
func (c *RuleBased) ClassifyBatch(_ context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	for i, t := range texts {
		results[i] = c.Classify(t)
	}
	return results
}
