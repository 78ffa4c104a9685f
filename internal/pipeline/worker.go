package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hailan-new/contractsplit/internal/chunker"
	"github.com/hailan-new/contractsplit/internal/classify"
	"github.com/hailan-new/contractsplit/internal/doctree"
	"github.com/hailan-new/contractsplit/internal/parser"
)

// Worker processes a single split job end to end.
type Worker struct {
	classifier classify.Classifier
	log        *slog.Logger
}

func NewWorker(classifier classify.Classifier, log *slog.Logger) *Worker {
	return &Worker{classifier: classifier, log: log}
}

// Process runs parse, classify, build and chunk for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title == "" {
		job.Title = doc.Title
	}

	// Hash the extracted text rather than the raw bytes, so the same
	// content in different container formats hashes alike.
	job.ContentHash = ContentHashHex([]byte(elementsText(doc.Elements)))

	// Phase 2: Classify and chunk. The chunker pipeline handles both;
	// statuses are split so progress remains observable.
	job.SetStatus(StatusClassifying, "classifying")
	pl := chunker.NewPipeline(w.classifier, job.Options, w.log)

	job.SetStatus(StatusChunking, "chunking")
	result, err := pl.Process(ctx, doc.Elements)
	if err != nil {
		log.Error("chunking failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	headings := 0
	for _, sec := range result.Sections {
		headings += countSections(sec)
	}
	job.SetElementCounts(len(doc.Elements), headings)
	job.SetResult(result)
	log.Info("split complete", "elements", len(doc.Elements), "chunks", len(result.Chunks), "warnings", len(result.Warnings))

	if len(result.Chunks) == 0 {
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}
	if len(result.Warnings) > 0 {
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

func countSections(sec *doctree.Section) int {
	n := 1
	for _, sub := range sec.Subsections {
		n += countSections(sub)
	}
	return n
}

// elementsText joins all element text for content hashing.
func elementsText(elements []doctree.Element) string {
	var sb strings.Builder
	for _, el := range elements {
		if el.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(el.Text)
	}
	return sb.String()
}
