package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/hailan-new/contractsplit/internal/classify"
	"github.com/hailan-new/contractsplit/internal/doctree"
)

func contractElements() []doctree.Element {
	return []doctree.Element{
		{Text: "第一章 总则"},
		{Text: "双方为明确权利义务，订立本合同。"},
		{Text: "第一条 X"},
		{Text: "甲方应当按期交付货物。"},
	}
}

func TestPipelineProcess(t *testing.T) {
	p := NewPipeline(nil, DefaultOptions(), nil)

	result, err := p.Process(context.Background(), contractElements())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Sections) != 1 {
		t.Fatalf("got %d roots, want 1", len(result.Sections))
	}
	root := result.Sections[0]
	if root.Heading != "第一章 总则" || len(root.Subsections) != 1 {
		t.Fatalf("unexpected tree: %+v", root)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("got chunks %q, want exactly one leaf chunk", result.Chunks)
	}
	if want := "第一章 总则 > 第一条 X\n\n甲方应当按期交付货物。"; result.Chunks[0] != want {
		t.Errorf("chunk = %q, want %q", result.Chunks[0], want)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestPipelineTrustsPreclassifiedElements(t *testing.T) {
	elements := []doctree.Element{
		{Text: "Overview", IsHeading: true, Level: 1, Kind: doctree.KindHeading},
		{Text: "第一条 看起来像条文但已被标记为正文的内容。", Level: classify.LevelDefault},
	}
	p := NewPipeline(nil, DefaultOptions(), nil)

	result, err := p.Process(context.Background(), elements)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Sections) != 1 {
		t.Fatalf("got %d roots, want 1", len(result.Sections))
	}
	if got := result.Sections[0].Heading; got != "Overview" {
		t.Errorf("root heading = %q", got)
	}
	if n := len(result.Sections[0].Subsections); n != 0 {
		t.Errorf("got %d subsections, want the pre-marked element kept as content", n)
	}
}

func TestPipelineStrictSizing(t *testing.T) {
	elements := []doctree.Element{
		{Text: "第一章 总则"},
		{Text: strings.Repeat("甲方应当履行合同项下的全部义务。", 10)},
	}
	opts := DefaultOptions()
	opts.MaxSize = 60
	opts.Overlap = 0
	opts.StrictSizing = true
	opts.Dedup = false
	p := NewPipeline(nil, opts, nil)

	result, err := p.Process(context.Background(), elements)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Chunks) < 2 {
		t.Fatalf("expected split chunks, got %d", len(result.Chunks))
	}
	for i, c := range result.Chunks {
		if CharCount(c) > 60 {
			t.Errorf("chunks[%d] size %d exceeds 60", i, CharCount(c))
		}
	}
}

func TestPipelineOversizedSentenceWarning(t *testing.T) {
	elements := []doctree.Element{
		{Text: "第一章 总则"},
		{Text: "一个很长很长很长很长很长很长很长很长很长很长很长很长的单句没有任何句号也没有分号"},
	}
	opts := DefaultOptions()
	opts.MaxSize = 10
	opts.StrictSizing = true
	p := NewPipeline(nil, opts, nil)

	result, err := p.Process(context.Background(), elements)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected oversized-sentence warning")
	}
}

func TestPipelineDedup(t *testing.T) {
	elements := []doctree.Element{
		{Text: "第一章 总则"},
		{Text: "重复的正文内容甲方应当按期交付货物并承担运输费用。"},
		{Text: "第二章 义务"},
		{Text: "重复的正文内容甲方应当按期交付货物并承担运输费用。"},
	}
	opts := DefaultOptions()
	opts.Strategy = StrategyAllLevels
	p := NewPipeline(nil, opts, nil)

	result, err := p.Process(context.Background(), elements)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("got %d chunks %q, want near-duplicate dropped", len(result.Chunks), result.Chunks)
	}
	if !strings.Contains(result.Chunks[0], "第一章 总则") {
		t.Errorf("kept chunk %q, want first occurrence", result.Chunks[0])
	}
}

func TestPipelineInvalidStrategy(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = Strategy("nope")
	p := NewPipeline(nil, opts, nil)

	_, err := p.Process(context.Background(), contractElements())
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error %q does not name the invalid strategy", err)
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	p := NewPipeline(nil, DefaultOptions(), nil)
	result, err := p.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Sections) != 0 || len(result.Chunks) != 0 {
		t.Errorf("got %+v, want empty result", result)
	}
}
