package doctree

// ElementKind identifies where a document element came from.
type ElementKind string

const (
	KindParagraph ElementKind = "paragraph"
	KindTableCell ElementKind = "table_cell"
	KindHeading   ElementKind = "heading"
)

// Element is a single text fragment in document order, produced by a
// format extractor. Extractors set IsHeading/Level when the source format
// supplies them (e.g. a "Heading 2" style); otherwise Level is 0 and the
// fragment is classified before hierarchy building.
type Element struct {
	Text      string      // Trimmed fragment text
	IsHeading bool        // True if this element opens a section
	Level     int         // Heading level, 1 = highest; 0 = unclassified
	Kind      ElementKind // paragraph, table_cell, or heading
	SourceTag string      // Optional extractor annotation (e.g. style name)
}

// Section is a node in the hierarchical document tree. A child's Level is
// always strictly greater than its parent's. Content holds the heading's
// own text followed by directly-contained non-heading text, blank-line
// separated; descendant content is reachable only via Subsections.
type Section struct {
	Heading     string     `json:"heading"`
	Content     string     `json:"content"`
	Level       int        `json:"level"`
	Subsections []*Section `json:"subsections"`
}

// AppendContent adds a text block to the section, blank-line separated.
func (s *Section) AppendContent(text string) {
	if text == "" {
		return
	}
	if s.Content != "" {
		s.Content += "\n\n" + text
	} else {
		s.Content = text
	}
}
