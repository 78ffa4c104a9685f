package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hailan-new/contractsplit/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs with a Heading-N style
// become heading elements; everything else is left for the classifier,
// since Chinese contracts rarely use Word heading styles.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "contractsplit-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &Document{Title: titleFromFilename(filename, ".docx")}

	for _, item := range doc.Document.Body.Items {
		switch body := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(body)
			if text == "" {
				continue
			}
			if level := docxHeadingLevel(body); level > 0 {
				out.Elements = append(out.Elements, doctree.Element{
					Text:      text,
					IsHeading: true,
					Level:     level,
					Kind:      doctree.KindHeading,
				})
			} else {
				out.Elements = append(out.Elements, doctree.Element{
					Text: text,
					Kind: doctree.KindParagraph,
				})
			}
		case *docx.Table:
			for _, row := range body.TableRows {
				for _, cell := range row.TableCells {
					text := docxCellText(cell)
					if text == "" {
						continue
					}
					out.Elements = append(out.Elements, doctree.Element{
						Text: text,
						Kind: doctree.KindTableCell,
					})
				}
			}
		}
	}

	return out, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxCellText(cell *docx.WTableCell) string {
	var parts []string
	for _, para := range cell.Paragraphs {
		if t := docxParagraphText(para); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
