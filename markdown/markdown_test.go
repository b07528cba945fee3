package markdown

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tsawler/docpipe/element"
	"github.com/tsawler/docpipe/geometry"
	"github.com/tsawler/docpipe/structure"
)

func mk(t *testing.T, typ element.Type, content string, meta map[string]string) element.Element {
	t.Helper()
	el, err := element.New(typ, geometry.New(0.1, 0.1, 0.3, 0.02), content, 0.9, 1, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return el
}

func TestEmitTitle(t *testing.T) {
	out := Emit([]element.Element{mk(t, element.TypeTitle, "My Document", nil)}, Options{})
	if !strings.HasPrefix(out, "# My Document\n\n") {
		t.Errorf("got %q", out)
	}
}

func TestEmitHeaderLevel(t *testing.T) {
	out := Emit([]element.Element{mk(t, element.TypeHeader, "Intro", map[string]string{element.MetaHeaderLevel: "2"})}, Options{})
	if !strings.HasPrefix(out, "## Intro\n\n") {
		t.Errorf("got %q", out)
	}
}

func TestEmitParagraphEscapesMarkdown(t *testing.T) {
	out := Emit([]element.Element{mk(t, element.TypeParagraph, "Use *bold* and [links]", nil)}, Options{})
	if !strings.Contains(out, `\*bold\*`) || !strings.Contains(out, `\[links\]`) {
		t.Errorf("expected escaped markdown, got %q", out)
	}
}

func TestEmitEndsWithExactlyOneTrailingNewline(t *testing.T) {
	out := Emit([]element.Element{mk(t, element.TypeParagraph, "hello", nil)}, Options{})
	if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Errorf("expected exactly one trailing newline, got %q", out)
	}
}

func TestEmitListCollapsesConsecutiveItems(t *testing.T) {
	els := []element.Element{
		mk(t, element.TypeListItem, "first", map[string]string{element.MetaListMarker: structure.MarkerBullet, element.MetaIndentLevel: "1"}),
		mk(t, element.TypeListItem, "second", map[string]string{element.MetaListMarker: structure.MarkerBullet, element.MetaIndentLevel: "1"}),
	}
	out := Emit(els, Options{})
	if !strings.Contains(out, "- first\n- second\n") {
		t.Errorf("expected consecutive list items collapsed, got %q", out)
	}
}

func TestEmitListMarkerClassMapsToGlyph(t *testing.T) {
	els := []element.Element{
		mk(t, element.TypeListItem, "one", map[string]string{element.MetaListMarker: structure.MarkerNumeric, element.MetaIndentLevel: "1"}),
		mk(t, element.TypeListItem, "two", map[string]string{element.MetaListMarker: structure.MarkerNumeric, element.MetaIndentLevel: "1"}),
	}
	out := Emit(els, Options{})
	if !strings.Contains(out, "1. one\n1. two\n") {
		t.Errorf("expected numeric class to emit '1.' glyphs, got %q", out)
	}
	if strings.Contains(out, structure.MarkerNumeric) {
		t.Errorf("expected class name not to leak into output, got %q", out)
	}
}

func TestEmitListDifferentClassesDoNotCollapse(t *testing.T) {
	els := []element.Element{
		mk(t, element.TypeListItem, "bullet item", map[string]string{element.MetaListMarker: structure.MarkerBullet, element.MetaIndentLevel: "1"}),
		mk(t, element.TypeListItem, "numeric item", map[string]string{element.MetaListMarker: structure.MarkerNumeric, element.MetaIndentLevel: "1"}),
	}
	out := Emit(els, Options{})

	source := []byte(out)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	var lists int
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindList {
			lists++
		}
		return ast.WalkContinue, nil
	})
	if lists != 2 {
		t.Errorf("expected marker class change to split into two lists, got %d", lists)
	}
}

func TestEmitImageUsesCaptionAsAlt(t *testing.T) {
	out := Emit([]element.Element{mk(t, element.TypeImage, "", map[string]string{element.MetaCaption: "a diagram"})}, Options{})
	if !strings.Contains(out, "![a diagram](placeholder)") {
		t.Errorf("got %q", out)
	}
}

func TestEmitFootnoteCollectedAtEnd(t *testing.T) {
	els := []element.Element{
		mk(t, element.TypeParagraph, "body text", nil),
		mk(t, element.TypeFootnote, "a note", nil),
	}
	out := Emit(els, Options{})
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), "[^1]: a note") {
		t.Errorf("expected footnote at end, got %q", out)
	}
}

func TestEmitTableFencedFallback(t *testing.T) {
	out := Emit([]element.Element{mk(t, element.TypeTable, "a\tb\nc\td", nil)}, Options{})
	if !strings.Contains(out, "```\na\tb\nc\td\n```") {
		t.Errorf("expected fenced fallback, got %q", out)
	}
}

func TestEmitProducesParseableMarkdown(t *testing.T) {
	els := []element.Element{
		mk(t, element.TypeTitle, "Report", nil),
		mk(t, element.TypeHeader, "Findings", map[string]string{element.MetaHeaderLevel: "2"}),
		mk(t, element.TypeParagraph, "The results were conclusive.", nil),
		mk(t, element.TypeListItem, "first point", map[string]string{element.MetaListMarker: structure.MarkerBullet, element.MetaIndentLevel: "1"}),
		mk(t, element.TypeListItem, "second point", map[string]string{element.MetaListMarker: structure.MarkerBullet, element.MetaIndentLevel: "1"}),
	}
	out := Emit(els, Options{})

	source := []byte(out)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var headings, lists int
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			headings++
		case ast.KindList:
			lists++
		}
		return ast.WalkContinue, nil
	})

	if headings < 2 {
		t.Errorf("expected at least 2 headings in the parsed AST (title + header), got %d", headings)
	}
	if lists != 1 {
		t.Errorf("expected exactly one list in the parsed AST, got %d", lists)
	}
}

func TestEmitTableStructured(t *testing.T) {
	provider := func(el element.Element) (TableData, bool) {
		return TableData{Header: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}}, true
	}
	out := Emit([]element.Element{mk(t, element.TypeTable, "", nil)}, Options{TableData: provider})
	if !strings.Contains(out, "| A | B |") || !strings.Contains(out, "| 1 | 2 |") {
		t.Errorf("got %q", out)
	}
}
