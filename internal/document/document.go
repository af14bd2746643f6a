package document

import (
	"errors"
	"image"
)

// ErrNoPages is returned when a document source yields no pages.
var ErrNoPages = errors.New("document has no pages")

// Page is one page of a document. Index is its 0-based position and never
// changes after loading.
type Page struct {
	Index  int
	Image  image.Image
	Text   string
	Source string
}

// Document is an ordered, index-stable sequence of pages.
type Document struct {
	Name  string
	Path  string
	Pages []Page
}

// Len returns the page count.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// HasText reports whether any page carries extracted text.
func (d *Document) HasText() bool {
	if d == nil {
		return false
	}
	for _, p := range d.Pages {
		if p.Text != "" {
			return true
		}
	}
	return false
}

// New builds a document from in-memory pages, assigning indexes by position.
func New(name string, pages []Page) *Document {
	out := make([]Page, len(pages))
	for i, p := range pages {
		p.Index = i
		out[i] = p
	}
	return &Document{Name: name, Pages: out}
}
