package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hailan-new/contractsplit/internal/doctree"
)

// Document is a parsed file: a title and the ordered text elements
// extracted from it. Elements carry heading levels only when the
// format itself declares them; plain paragraphs are left unclassified
// for the heading classifier downstream.
type Document struct {
	Title    string
	Elements []doctree.Element
}

// Parser converts raw document bytes into an ordered element stream.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
	".xlsx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".xlsx":
		return &XLSXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string, exts ...string) string {
	base := filepath.Base(filename)
	for _, ext := range exts {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
