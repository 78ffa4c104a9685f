package parser

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/hailan-new/contractsplit/internal/doctree"
	"github.com/xuri/excelize/v2"
)

func xlsxBytes(t *testing.T, build func(f *excelize.File)) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestXLSXParser_SheetAndRows(t *testing.T) {
	r := xlsxBytes(t, func(f *excelize.File) {
		f.SetSheetName("Sheet1", "合同条款")
		f.SetCellValue("合同条款", "A1", "编号")
		f.SetCellValue("合同条款", "B1", "条款")
		f.SetCellValue("合同条款", "A2", "1")
		f.SetCellValue("合同条款", "B2", "甲方应当按期交付货物。")
	})

	p := &XLSXParser{}
	doc, err := p.Parse(r, "contracts.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "contracts" {
		t.Errorf("title: got %q", doc.Title)
	}
	if len(doc.Elements) != 2 {
		t.Fatalf("expected 2 elements (sheet heading + row batch), got %d: %+v", len(doc.Elements), doc.Elements)
	}

	heading := doc.Elements[0]
	if !heading.IsHeading || heading.Level != 1 || heading.Text != "合同条款" {
		t.Errorf("sheet heading: got %+v", heading)
	}

	batch := doc.Elements[1]
	if batch.Kind != doctree.KindTableCell {
		t.Errorf("batch kind: got %v", batch.Kind)
	}
	if !strings.Contains(batch.Text, "Headers: 编号, 条款") {
		t.Errorf("batch missing header line: %q", batch.Text)
	}
	if !strings.Contains(batch.Text, "条款: 甲方应当按期交付货物。") {
		t.Errorf("batch missing qualified cell: %q", batch.Text)
	}
	if batch.SourceTag != "合同条款 rows 2-2" {
		t.Errorf("source tag: got %q", batch.SourceTag)
	}
}

func TestXLSXParser_BatchesLargeSheets(t *testing.T) {
	r := xlsxBytes(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "name")
		for i := 0; i < 25; i++ {
			f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i+2), fmt.Sprintf("row-%d", i))
		}
	})

	p := &XLSXParser{}
	doc, err := p.Parse(r, "big.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Sheet heading plus two row batches (20 + 5).
	if len(doc.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(doc.Elements))
	}
	if got := doc.Elements[1].SourceTag; got != "Sheet1 rows 2-21" {
		t.Errorf("first batch tag: got %q", got)
	}
	if got := doc.Elements[2].SourceTag; got != "Sheet1 rows 22-26" {
		t.Errorf("second batch tag: got %q", got)
	}
}

func TestXLSXParser_EmptyWorkbook(t *testing.T) {
	r := xlsxBytes(t, func(f *excelize.File) {})

	p := &XLSXParser{}
	doc, err := p.Parse(r, "empty.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Elements) != 0 {
		t.Errorf("expected no elements for empty workbook, got %+v", doc.Elements)
	}
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	p := &XLSXParser{}
	if _, err := p.Parse(strings.NewReader("not a zip"), "bad.xlsx"); err == nil {
		t.Fatal("expected error for non-xlsx input")
	}
}
