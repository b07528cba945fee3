package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/docpipe/lang"
	"github.com/tsawler/docpipe/llm"
	"github.com/tsawler/docpipe/ocrsrc"
	"github.com/tsawler/docpipe/prompt"
)

// memoryDocument is a DocumentSource backed by an in-memory page count;
// the bytes returned by PageImage are never actually decoded, since the
// test OCR source ignores them and returns pre-canned observations.
type memoryDocument struct {
	pages int
	err   error
}

func (d *memoryDocument) PageCount(ctx context.Context) (int, error) {
	return d.pages, d.err
}

func (d *memoryDocument) PageImage(ctx context.Context, pageNumber int) ([]byte, error) {
	return []byte("page"), nil
}

func twoPageSource() *ocrsrc.MockSource {
	return &ocrsrc.MockSource{
		ByPage: map[int][]ocrsrc.Observation{
			1: {
				{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.05, Text: "Introduction", Confidence: 0.9, PageNumber: 1, InsertionIndex: 0},
				{X: 0.1, Y: 0.2, Width: 0.8, Height: 0.02, Text: "This is the first page of the document.", Confidence: 0.95, PageNumber: 1, InsertionIndex: 1},
			},
			2: {
				{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.02, Text: "This is the second page of the document.", Confidence: 0.95, PageNumber: 2, InsertionIndex: 0},
			},
		},
	}
}

func testCatalogue() *prompt.Catalogue {
	return prompt.New(prompt.Config{
		DefaultLanguage:  lang.English,
		FallbackLanguage: lang.English,
	})
}

func TestProcessDocumentProducesMarkdown(t *testing.T) {
	p := New(DefaultConfig(), twoPageSource(), nil, nil)
	doc := &memoryDocument{pages: 2}

	result, warnings, err := p.ProcessDocument(context.Background(), doc, "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Markdown == "" {
		t.Fatal("expected non-empty markdown")
	}
	if !strings.HasSuffix(result.Markdown, "\n") || strings.HasSuffix(result.Markdown, "\n\n") {
		t.Errorf("markdown must end with exactly one trailing newline, got %q", result.Markdown)
	}
	if result.Info.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", result.Info.PageCount)
	}
	_ = warnings
}

func TestProcessDocumentEmitsListMarkerGlyphNotClassName(t *testing.T) {
	source := &ocrsrc.MockSource{
		ByPage: map[int][]ocrsrc.Observation{
			1: {
				{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.02, Text: "- First point", Confidence: 0.9, PageNumber: 1, InsertionIndex: 0},
				{X: 0.1, Y: 0.2, Width: 0.8, Height: 0.02, Text: "- Second point", Confidence: 0.9, PageNumber: 1, InsertionIndex: 1},
			},
		},
	}
	p := New(DefaultConfig(), source, nil, nil)
	doc := &memoryDocument{pages: 1}

	result, _, err := p.ProcessDocument(context.Background(), doc, "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Markdown, "- First point\n- Second point\n") {
		t.Errorf("expected literal bullet glyph in output, got %q", result.Markdown)
	}
	if strings.Contains(result.Markdown, "bullet ") {
		t.Errorf("marker class name leaked into markdown, got %q", result.Markdown)
	}
}

func TestProcessDocumentRespectsPageRange(t *testing.T) {
	p := New(DefaultConfig(), twoPageSource(), nil, nil)
	doc := &memoryDocument{pages: 2}

	result, _, err := p.ProcessDocument(context.Background(), doc, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, el := range result.Elements {
		if el.PageNumber != 1 {
			t.Errorf("expected only page 1 elements, got page %d", el.PageNumber)
		}
	}
}

func TestProcessDocumentPropagatesDocumentSourceError(t *testing.T) {
	p := New(DefaultConfig(), twoPageSource(), nil, nil)
	doc := &memoryDocument{err: errors.New("boom")}

	_, _, err := p.ProcessDocument(context.Background(), doc, "all")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestProcessDocumentCancellationStopsBetweenPages(t *testing.T) {
	p := New(DefaultConfig(), twoPageSource(), nil, nil)
	doc := &memoryDocument{pages: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.ProcessDocument(ctx, doc, "all")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestProcessDocumentWithLLMRefinement(t *testing.T) {
	client := &llm.MockClient{Response: "# Introduction\n\nRefined body text.\n"}
	cfg := DefaultConfig()
	cfg.LLM.Enabled = true

	p := New(cfg, twoPageSource(), client, testCatalogue())
	doc := &memoryDocument{pages: 2}

	result, _, err := p.ProcessDocument(context.Background(), doc, "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Markdown == "" {
		t.Fatal("expected non-empty markdown")
	}
}

func TestProcessDocumentEmptyPageYieldsNoElements(t *testing.T) {
	p := New(DefaultConfig(), &ocrsrc.MockSource{}, nil, nil)
	doc := &memoryDocument{pages: 1}

	result, _, err := p.ProcessDocument(context.Background(), doc, "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Elements) != 0 {
		t.Errorf("expected no elements from an empty page, got %d", len(result.Elements))
	}
}
