package parser

import (
	"strings"
	"testing"
)

func TestTextParser_LineElements(t *testing.T) {
	input := "第一章 总则\n双方为明确权利义务，订立本合同。\n\n第一条 交付\n甲方应当按期交付货物。"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "contract.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "contract" {
		t.Errorf("expected title %q, got %q", "contract", doc.Title)
	}
	want := []string{
		"第一章 总则",
		"双方为明确权利义务，订立本合同。",
		"第一条 交付",
		"甲方应当按期交付货物。",
	}
	if len(doc.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(doc.Elements))
	}
	for i, w := range want {
		if doc.Elements[i].Text != w {
			t.Errorf("element[%d]: expected %q, got %q", i, w, doc.Elements[i].Text)
		}
		if doc.Elements[i].IsHeading {
			t.Errorf("element[%d]: text parser should leave classification to downstream", i)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if len(doc.Elements) != 0 {
		t.Errorf("expected 0 elements for empty input, got %d", len(doc.Elements))
	}
}

func TestTextParser_SingleLine(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("Hello world"), "single.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(doc.Elements))
	}
	if doc.Elements[0].Text != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", doc.Elements[0].Text)
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should not produce elements.
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(doc.Elements))
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "b.md", "c.csv", "d.html", "e.pdf", "f.docx", "g.xlsx"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): %v", name, err)
		}
	}
	if _, err := ForFile("archive.zip"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("contract.DOCX") {
		t.Error("extension check should be case-insensitive")
	}
	if IsSupportedExtension("binary.exe") {
		t.Error("exe should not be supported")
	}
}
