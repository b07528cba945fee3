// Package element defines DocumentElement, the central entity the
// pipeline passes between stages, along with the construction and
// validation logic that enforces its invariants.
package element

import (
	"fmt"

	"github.com/tsawler/docpipe/docerr"
	"github.com/tsawler/docpipe/geometry"
)

// Type identifies the kind of document element.
type Type int

const (
	TypeUnknown Type = iota
	TypeTitle
	TypeTextBlock
	TypeParagraph
	TypeHeader
	TypeListItem
	TypeList
	TypeTable
	TypeImage
	TypeBarcode
	TypeFootnote
	TypeCaption
)

// String names the element type.
func (t Type) String() string {
	switch t {
	case TypeTitle:
		return "Title"
	case TypeTextBlock:
		return "TextBlock"
	case TypeParagraph:
		return "Paragraph"
	case TypeHeader:
		return "Header"
	case TypeListItem:
		return "ListItem"
	case TypeList:
		return "List"
	case TypeTable:
		return "Table"
	case TypeImage:
		return "Image"
	case TypeBarcode:
		return "Barcode"
	case TypeFootnote:
		return "Footnote"
	case TypeCaption:
		return "Caption"
	default:
		return "Unknown"
	}
}

// IsTextBearing reports whether elements of this type carry prose text
// that the merger and structure detector may operate on, per spec.md
// §4.6 ("both are text-bearing (not Image/Barcode/Table)").
func (t Type) IsTextBearing() bool {
	switch t {
	case TypeImage, TypeBarcode, TypeTable:
		return false
	default:
		return true
	}
}

// Recognized metadata keys.
const (
	MetaListMarker             = "listMarker"
	MetaIndentLevel            = "indentLevel"
	MetaHeaderLevel            = "headerLevel"
	MetaOriginalFragmentCount  = "originalFragmentCount"
	MetaLanguage               = "language"
	MetaRegion                 = "region" // "header" or "footer"
	MetaCaption                = "caption"
)

// Element is the central document-pipeline entity: a typed, positioned,
// text-bearing (or media) unit of content. Elements are immutable in
// practice; stages replace an Element rather than mutate it in place,
// and metadata changes go through WithMetadata, which copies the map.
type Element struct {
	Type        Type
	BoundingBox geometry.Box
	Content     string
	Confidence  float64
	PageNumber  int
	Metadata    map[string]string

	// InsertionIndex is the monotonically increasing index assigned by
	// the OCR source; it is the final tie-break in the reading-order
	// relation (spec.md §4.8 step 5).
	InsertionIndex int
}

// New constructs an Element and validates it against the invariants of
// spec.md §3. A caller that receives raw OCR observations should
// construct elements through this function so violations surface as
// docerr.ErrInvalidInput rather than corrupting later stages.
func New(t Type, box geometry.Box, content string, confidence float64, pageNumber int, meta map[string]string) (Element, error) {
	el := Element{
		Type:        t,
		BoundingBox: box,
		Content:     content,
		Confidence:  confidence,
		PageNumber:  pageNumber,
		Metadata:    meta,
	}
	if err := el.Validate(); err != nil {
		return Element{}, err
	}
	return el, nil
}

// Validate checks the element against the invariants of spec.md §3.
func (e Element) Validate() error {
	if !e.BoundingBox.Valid() {
		return fmt.Errorf("%w: bounding box out of [0,1] range or non-positive dimensions", docerr.ErrInvalidInput)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v not in [0,1]", docerr.ErrInvalidInput, e.Confidence)
	}
	if e.PageNumber < 1 {
		return fmt.Errorf("%w: pageNumber %d must be >= 1", docerr.ErrInvalidInput, e.PageNumber)
	}
	if e.Type == TypeHeader {
		level, ok := e.HeaderLevel()
		if !ok || level < 1 || level > 6 {
			return fmt.Errorf("%w: Header element missing valid headerLevel metadata", docerr.ErrInvalidInput)
		}
	}
	if e.Type == TypeListItem {
		if e.Metadata[MetaListMarker] == "" {
			return fmt.Errorf("%w: ListItem element missing listMarker metadata", docerr.ErrInvalidInput)
		}
	}
	return nil
}

// HeaderLevel reads the headerLevel metadata key, returning false if
// absent or malformed.
func (e Element) HeaderLevel() (int, bool) {
	v, ok := e.Metadata[MetaHeaderLevel]
	if !ok {
		return 0, false
	}
	level := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0, false
		}
		level = level*10 + int(r-'0')
	}
	if level == 0 {
		return 0, false
	}
	return level, true
}

// WithMetadata returns a copy of e with key set to value in its
// metadata map. The original element's map is not mutated.
func (e Element) WithMetadata(key, value string) Element {
	next := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		next[k] = v
	}
	next[key] = value
	e.Metadata = next
	return e
}

// Region returns the header/footer region tag set by the classifier
// (C4), or "" if the element was not classified as a region candidate.
func (e Element) Region() string {
	return e.Metadata[MetaRegion]
}

// DocumentInfo is produced once per document by the OCR/loading
// collaborator and describes the source document as a whole.
type DocumentInfo struct {
	PageCount int
	Format    string
	FileSize  int64
	Created   *int64 // unix seconds, optional
	Modified  *int64 // unix seconds, optional
	Metadata  map[string]string
}
