package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hailan-new/contractsplit/internal/doctree"
)

// CSVParser handles CSV files. Rows are rendered as header-qualified
// cell lines and grouped into batches so each batch stays a manageable
// element.
type CSVParser struct{}

const tableBatchSize = 20

// rowBatchElements renders header-qualified data rows in batches of
// tableBatchSize, one table_cell element per batch. tag annotates each
// batch with its half-open data-row range.
func rowBatchElements(headers []string, dataRows [][]string, tag func(start, end int) string) []doctree.Element {
	var elements []doctree.Element
	for i := 0; i < len(dataRows); i += tableBatchSize {
		end := i + tableBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		elements = append(elements, doctree.Element{
			Text:      text.String(),
			Kind:      doctree.KindTableCell,
			SourceTag: tag(i, end),
		})
	}
	return elements
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: titleFromFilename(filename, ".csv")}
	if len(records) == 0 {
		return doc, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	doc.Elements = rowBatchElements(headers, dataRows, func(start, end int) string {
		// 1-indexed row span, header row excluded.
		return fmt.Sprintf("rows %d-%d", start+2, end+1)
	})

	return doc, nil
}
