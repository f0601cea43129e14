package render

import "sync"

// StylesheetID identifies the widget stylesheet in a document.
const StylesheetID = "leadform-widget-styles"

// Document tracks which stylesheets have been written into one page so
// several forms on the same page share a single copy.
type Document struct {
	mu       sync.Mutex
	injected map[string]bool
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{injected: make(map[string]bool)}
}

// EnsureStylesheet reports whether id still needs to be written and marks it
// as present.
func (d *Document) EnsureStylesheet(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.injected[id] {
		return false
	}
	d.injected[id] = true
	return true
}
