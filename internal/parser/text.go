package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/hailan-new/contractsplit/internal/doctree"
)

// TextParser handles plain text files. Nothing in the format marks
// headings, so every line is emitted unclassified; in legal text a
// line is usually a standalone unit (heading or clause).
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var elements []doctree.Element
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		elements = append(elements, doctree.Element{
			Text: line,
			Kind: doctree.KindParagraph,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Document{
		Title:    titleFromFilename(filename, ".txt"),
		Elements: elements,
	}, nil
}
