package parser

import (
	"fmt"
	"io"

	"github.com/hailan-new/contractsplit/internal/doctree"
	"github.com/xuri/excelize/v2"
)

// XLSXParser handles Excel workbooks using excelize. Each sheet name
// becomes a top-level heading and its rows get the same header-qualified
// batch rendering as CSV files.
type XLSXParser struct{}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer f.Close()

	doc := &Document{Title: titleFromFilename(filename, ".xlsx")}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		doc.Elements = append(doc.Elements, doctree.Element{
			Text:      sheet,
			IsHeading: true,
			Level:     1,
			Kind:      doctree.KindHeading,
			SourceTag: "sheet",
		})

		// First row is headers, as with CSV.
		headers := rows[0]
		doc.Elements = append(doc.Elements, rowBatchElements(headers, rows[1:], func(start, end int) string {
			// 1-indexed row span, header row excluded.
			return fmt.Sprintf("%s rows %d-%d", sheet, start+2, end+1)
		})...)
	}

	return doc, nil
}
