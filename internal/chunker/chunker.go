package chunker

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hailan-new/contractsplit/internal/classify"
	"github.com/hailan-new/contractsplit/internal/doctree"
)

// Options control how a document is flattened into chunks.
type Options struct {
	MaxSize    int  // Chunk size budget, in SizeFunc units.
	Overlap    int  // Overlap window between consecutive split pieces.
	BySentence bool // Split on sentence boundaries instead of raw windows.

	// SizeFunc measures text against MaxSize and Overlap. Nil means
	// CharCount.
	SizeFunc SizeFunc

	Strategy Strategy

	// StrictSizing passes every flattened chunk through Split so the
	// output respects MaxSize (oversized single sentences excepted).
	StrictSizing bool

	Dedup          bool
	DedupThreshold float64
}

// DefaultOptions mirror the defaults used for general documents.
func DefaultOptions() Options {
	return Options{
		MaxSize:        2000,
		Overlap:        200,
		BySentence:     true,
		Strategy:       StrategyFinest,
		Dedup:          true,
		DedupThreshold: DefaultDedupThreshold,
	}
}

// Result is the outcome of processing one document. Warnings carry
// best-effort degradations (oversized sentences, classifier fallbacks);
// they never accompany a failure.
type Result struct {
	Sections []*doctree.Section `json:"sections"`
	Chunks   []string           `json:"chunks"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Pipeline runs classification, hierarchy building, flattening,
// splitting and dedup over extracted elements. A Pipeline is safe for
// concurrent use.
type Pipeline struct {
	classifier classify.Classifier
	opts       Options
	logger     *slog.Logger
}

// NewPipeline builds a pipeline. A nil classifier gets the default
// rule-based one; a nil logger discards nothing and uses slog's
// default.
func NewPipeline(classifier classify.Classifier, opts Options, logger *slog.Logger) *Pipeline {
	if classifier == nil {
		classifier = classify.NewRuleBased(classify.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SizeFunc == nil {
		opts.SizeFunc = CharCount
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyFinest
	}
	return &Pipeline{classifier: classifier, opts: opts, logger: logger}
}

// Process turns extracted elements into chunks. The only hard failure
// is an invalid strategy; everything else degrades into Warnings.
func (p *Pipeline) Process(ctx context.Context, elements []doctree.Element) (*Result, error) {
	if _, err := ParseStrategy(string(p.opts.Strategy)); err != nil {
		return nil, err
	}

	classified := p.classifyElements(ctx, elements)
	forest := doctree.Build(classified)

	chunks, err := Flatten(forest, p.opts.Strategy)
	if err != nil {
		return nil, err
	}

	result := &Result{Sections: forest}

	if p.opts.StrictSizing {
		for _, chunk := range chunks {
			pieces, warnings := Split(chunk, p.opts.MaxSize, p.opts.Overlap, p.opts.BySentence, p.opts.SizeFunc)
			result.Chunks = append(result.Chunks, pieces...)
			result.Warnings = append(result.Warnings, warnings...)
		}
	} else {
		result.Chunks = chunks
	}

	if p.opts.Dedup {
		before := len(result.Chunks)
		result.Chunks = Dedup(result.Chunks, p.opts.DedupThreshold)
		if dropped := before - len(result.Chunks); dropped > 0 {
			p.logger.Debug("dropped near-duplicate chunks", "count", dropped)
		}
	}

	return result, nil
}

// classifyElements fills in heading decisions for elements the
// extractor left unclassified. Elements that arrive with a heading flag
// or level are trusted as-is.
func (p *Pipeline) classifyElements(ctx context.Context, elements []doctree.Element) []doctree.Element {
	out := make([]doctree.Element, len(elements))
	copy(out, elements)

	var pending []int
	for i := range out {
		if out[i].IsHeading || out[i].Level != 0 {
			continue
		}
		// Table cells never act as structural headings.
		if out[i].Kind == doctree.KindTableCell {
			continue
		}
		if strings.TrimSpace(out[i].Text) == "" {
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return out
	}

	texts := make([]string, len(pending))
	for j, i := range pending {
		texts[j] = strings.TrimSpace(out[i].Text)
	}

	var results []classify.Result
	if bc, ok := p.classifier.(classify.BatchClassifier); ok {
		results = bc.ClassifyBatch(ctx, texts)
	} else {
		results = make([]classify.Result, len(texts))
		for j, text := range texts {
			results[j] = p.classifier.Classify(text)
		}
	}

	for j, i := range pending {
		out[i].IsHeading = results[j].IsHeading
		if results[j].IsHeading {
			out[i].Level = results[j].Level
			out[i].Kind = doctree.KindHeading
		}
	}
	return out
}
