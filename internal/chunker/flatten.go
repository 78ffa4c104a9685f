package chunker

import (
	"fmt"
	"strings"

	"github.com/hailan-new/contractsplit/internal/doctree"
)

// Strategy selects which sections of a tree become chunks.
type Strategy string

const (
	// StrategyFinest emits only leaf sections. No two chunks share
	// underlying source text.
	StrategyFinest Strategy = "finest_granularity"

	// StrategyAllLevels emits every section with content, parents and
	// leaves alike. Deliberately duplicative.
	StrategyAllLevels Strategy = "all_levels"

	// StrategyParentOnly behaves identically to StrategyFinest. It is
	// kept as a documented alias for callers that select it by name.
	StrategyParentOnly Strategy = "parent_only"
)

var validStrategies = []Strategy{StrategyFinest, StrategyAllLevels, StrategyParentOnly}

// ParseStrategy validates a strategy name. Unknown values fail with an
// error naming the value and the valid set; flattening never silently
// defaults.
func ParseStrategy(s string) (Strategy, error) {
	for _, v := range validStrategies {
		if Strategy(s) == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown flatten strategy %q (valid: %v)", s, validStrategies)
}

// Flatten walks a section forest and returns chunks in document order.
func Flatten(forest []*doctree.Section, strategy Strategy) ([]string, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	var chunks []string
	for _, sec := range forest {
		flattenSection(sec, "", strategy, &chunks)
	}
	return chunks, nil
}

func flattenSection(sec *doctree.Section, parentPath string, strategy Strategy, chunks *[]string) {
	path := headingPath(parentPath, sec.Heading)

	switch strategy {
	case StrategyAllLevels:
		if strings.TrimSpace(sec.Content) != "" {
			*chunks = append(*chunks, qualifyContent(sec, path))
		}
	case StrategyFinest, StrategyParentOnly:
		if len(sec.Subsections) == 0 {
			if chunk := leafChunk(sec, path); chunk != "" {
				*chunks = append(*chunks, chunk)
			}
		}
	}

	for _, sub := range sec.Subsections {
		flattenSection(sub, path, strategy, chunks)
	}
}

func headingPath(parentPath, heading string) string {
	heading = strings.TrimSpace(heading)
	if parentPath == "" {
		return heading
	}
	if heading == "" {
		return parentPath
	}
	return parentPath + " > " + heading
}

// leafChunk renders a childless section: its content qualified with the
// full heading path, or the bare path when it has no content.
func leafChunk(sec *doctree.Section, path string) string {
	if strings.TrimSpace(sec.Content) == "" {
		return path
	}
	return qualifyContent(sec, path)
}

// qualifyContent replaces the heading line at the head of a section's
// content with the full heading path, so a chunk carries its position
// in the document. Content that does not open with the heading gets
// the path prepended instead.
func qualifyContent(sec *doctree.Section, path string) string {
	content := sec.Content
	heading := strings.TrimSpace(sec.Heading)
	if path == "" || path == heading {
		return content
	}
	if heading != "" && strings.HasPrefix(content, heading) {
		return path + content[len(heading):]
	}
	return path + "\n\n" + content
}
