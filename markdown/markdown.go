// Package markdown emits GitHub-flavored Markdown from a reading-order
// element stream (spec.md §4.9), grounded on the teacher's
// strings.Builder-based ToMarkdown methods on Heading and List.
package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/docpipe/element"
	"github.com/tsawler/docpipe/structure"
	"golang.org/x/text/unicode/norm"
)

// markerGlyphByClass maps the marker class written by structure.DetectMarker
// into MetaListMarker to the literal glyph spec.md §4.9's ListItem emission
// rule requires. The collapse logic in Emit stays keyed on the class itself
// so runs of differently-numbered items (all "numeric") still collapse into
// one list.
var markerGlyphByClass = map[string]string{
	structure.MarkerBullet:     "-",
	structure.MarkerNumeric:    "1.",
	structure.MarkerAlphabetic: "a.",
	structure.MarkerRoman:      "i.",
	structure.MarkerCJK:        "一、",
}

// markerGlyph resolves a marker class to its emitted glyph, falling back to
// a bullet for any value the classifier didn't produce.
func markerGlyph(class string) string {
	if g, ok := markerGlyphByClass[class]; ok {
		return g
	}
	return "-"
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// escapeText escapes markdown-significant characters in non-code
// content and normalizes it to NFC, so visually identical input never
// produces byte-different output across runs.
func escapeText(s string) string {
	return escaper.Replace(norm.NFC.String(s))
}

// TableData carries row/column metadata for pipe-table emission. When
// absent for a TypeTable element, the emitter falls back to a fenced
// verbatim block, per spec.md §4.9.
type TableData struct {
	Header []string
	Rows   [][]string
}

// TableDataProvider is a seam for callers that decode table structure
// out of an element's metadata. pipeline.ProcessDocument passes no
// provider, so the tables it emits use the fenced fallback.
type TableDataProvider func(el element.Element) (TableData, bool)

// Options controls emission behavior.
type Options struct {
	// TableData resolves structured table rows for a TypeTable element,
	// if available. May be nil, in which case all tables fall back to
	// fenced verbatim emission.
	TableData TableDataProvider
}

// footnote is collected during the main pass and rendered at the end.
type footnote struct {
	number  int
	content string
}

// Emit renders els (already in reading order) as Markdown following
// the emission table of spec.md §4.9. Output is UTF-8, LF-terminated,
// and ends with exactly one trailing newline.
func Emit(els []element.Element, opts Options) string {
	var b strings.Builder
	var footnotes []footnote
	var pendingList []element.Element
	listMarkerClass := ""

	flushList := func() {
		if len(pendingList) == 0 {
			return
		}
		emitList(&b, pendingList)
		pendingList = nil
		listMarkerClass = ""
		b.WriteString("\n")
	}

	for _, el := range els {
		if el.Type == element.TypeListItem {
			class := el.Metadata[element.MetaListMarker]
			if listMarkerClass != "" && listMarkerClass != class {
				flushList()
			}
			listMarkerClass = class
			pendingList = append(pendingList, el)
			continue
		}
		flushList()

		switch el.Type {
		case element.TypeTitle:
			b.WriteString("# ")
			b.WriteString(escapeText(el.Content))
			b.WriteString("\n\n")
		case element.TypeHeader:
			level, ok := el.HeaderLevel()
			if !ok {
				level = 1
			}
			b.WriteString(strings.Repeat("#", level))
			b.WriteString(" ")
			b.WriteString(escapeText(el.Content))
			b.WriteString("\n\n")
		case element.TypeParagraph, element.TypeTextBlock:
			b.WriteString(escapeText(el.Content))
			b.WriteString("\n\n")
		case element.TypeTable:
			emitTable(&b, el, opts)
		case element.TypeImage:
			alt := el.Metadata[element.MetaCaption]
			b.WriteString(fmt.Sprintf("![%s](placeholder)\n\n", escapeText(alt)))
		case element.TypeFootnote:
			footnotes = append(footnotes, footnote{number: len(footnotes) + 1, content: el.Content})
		case element.TypeCaption:
			b.WriteString("*")
			b.WriteString(escapeText(el.Content))
			b.WriteString("*\n\n")
		default:
			if el.Content != "" {
				b.WriteString(escapeText(el.Content))
				b.WriteString("\n\n")
			}
		}
	}
	flushList()

	for _, f := range footnotes {
		b.WriteString("[^")
		b.WriteString(strconv.Itoa(f.number))
		b.WriteString("]: ")
		b.WriteString(escapeText(f.content))
		b.WriteString("\n")
	}

	return finalize(b.String())
}

// emitList renders a run of consecutive ListItem elements as nested
// markdown list lines, indenting each item by its indentLevel metadata
// (written by package structure) relative to the shallowest item in the
// run, so the run's outermost items start at column zero.
func emitList(b *strings.Builder, items []element.Element) {
	levels := make([]int, len(items))
	base := 0
	for i, item := range items {
		if n, err := strconv.Atoi(item.Metadata[element.MetaIndentLevel]); err == nil && n > 0 {
			levels[i] = n
			if base == 0 || n < base {
				base = n
			}
		}
	}
	for i, item := range items {
		depth := 0
		if levels[i] > base {
			depth = levels[i] - base
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(markerGlyph(item.Metadata[element.MetaListMarker]))
		b.WriteString(" ")
		b.WriteString(escapeText(item.Content))
		b.WriteString("\n")
	}
}

// emitTable renders a GitHub-flavored pipe table when structured row
// data is available, falling back to a fenced block of the raw content
// otherwise, per spec.md §4.9.
func emitTable(b *strings.Builder, el element.Element, opts Options) {
	if opts.TableData == nil {
		emitFencedTable(b, el)
		return
	}
	data, ok := opts.TableData(el)
	if !ok || len(data.Header) == 0 {
		emitFencedTable(b, el)
		return
	}

	b.WriteString("| ")
	b.WriteString(strings.Join(escapeAll(data.Header), " | "))
	b.WriteString(" |\n|")
	for range data.Header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range data.Rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(escapeAll(row), " | "))
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
}

func emitFencedTable(b *strings.Builder, el element.Element) {
	b.WriteString("```\n")
	b.WriteString(el.Content)
	b.WriteString("\n```\n\n")
}

func escapeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeText(c)
	}
	return out
}

// finalize collapses trailing whitespace down to exactly one trailing
// newline, per spec.md §4.9 and §6 "Markdown output".
func finalize(s string) string {
	s = strings.TrimRight(s, "\n")
	return s + "\n"
}
