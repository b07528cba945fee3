package element

import (
	"errors"
	"testing"

	"github.com/tsawler/docpipe/docerr"
	"github.com/tsawler/docpipe/geometry"
)

func box() geometry.Box {
	return geometry.New(0.1, 0.1, 0.3, 0.05)
}

func TestNewValid(t *testing.T) {
	el, err := New(TypeTextBlock, box(), "hello", 0.9, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if el.Content != "hello" {
		t.Errorf("content = %q", el.Content)
	}
}

func TestNewInvalidConfidence(t *testing.T) {
	_, err := New(TypeTextBlock, box(), "hello", 1.5, 1, nil)
	if !errors.Is(err, docerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewInvalidPageNumber(t *testing.T) {
	_, err := New(TypeTextBlock, box(), "hello", 0.5, 0, nil)
	if !errors.Is(err, docerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestHeaderRequiresLevel(t *testing.T) {
	_, err := New(TypeHeader, box(), "Intro", 0.9, 1, nil)
	if !errors.Is(err, docerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing headerLevel, got %v", err)
	}

	el, err := New(TypeHeader, box(), "Intro", 0.9, 1, map[string]string{MetaHeaderLevel: "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	level, ok := el.HeaderLevel()
	if !ok || level != 2 {
		t.Errorf("HeaderLevel() = %d, %v; want 2, true", level, ok)
	}
}

func TestListItemRequiresMarker(t *testing.T) {
	_, err := New(TypeListItem, box(), "item", 0.9, 1, nil)
	if !errors.Is(err, docerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing listMarker, got %v", err)
	}

	_, err = New(TypeListItem, box(), "item", 0.9, 1, map[string]string{MetaListMarker: "bullet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithMetadataDoesNotMutateOriginal(t *testing.T) {
	el, _ := New(TypeTextBlock, box(), "x", 0.5, 1, map[string]string{"a": "1"})
	next := el.WithMetadata("b", "2")

	if _, ok := el.Metadata["b"]; ok {
		t.Error("original metadata should be unmodified")
	}
	if next.Metadata["a"] != "1" || next.Metadata["b"] != "2" {
		t.Errorf("unexpected metadata on copy: %+v", next.Metadata)
	}
}

func TestIsTextBearing(t *testing.T) {
	if TypeImage.IsTextBearing() {
		t.Error("Image should not be text-bearing")
	}
	if TypeTable.IsTextBearing() {
		t.Error("Table should not be text-bearing")
	}
	if !TypeParagraph.IsTextBearing() {
		t.Error("Paragraph should be text-bearing")
	}
}
