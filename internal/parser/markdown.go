package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/hailan-new/contractsplit/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Heading blocks
// carry their # depth as the element level.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var elements []doctree.Element

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(string(node.Text(src)))
			if title == "" {
				continue
			}
			elements = append(elements, doctree.Element{
				Text:      title,
				IsHeading: true,
				Level:     node.Level,
				Kind:      doctree.KindHeading,
			})
		default:
			t := extractText(n, src)
			if t != "" {
				elements = append(elements, doctree.Element{
					Text: t,
					Kind: doctree.KindParagraph,
				})
			}
		}
	}

	return &Document{
		Title:    titleFromFilename(filename, ".md", ".markdown"),
		Elements: elements,
	}, nil
}

// extractText gets the text content of a goldmark AST node. Nodes with
// children (paragraphs, lists) are read through their inline text nodes;
// childless blocks (fenced code) fall back to their raw lines. Reading
// both would emit the content twice.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.HasChildren() {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			} else {
				buf.WriteString(extractText(c, src))
				if c.Type() == ast.TypeBlock {
					buf.WriteByte('\n')
				}
			}
		}
	} else if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	return strings.TrimSpace(buf.String())
}
