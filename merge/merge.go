// Package merge stitches elements that OCR split across lines or
// columns into single logical elements (spec.md §4.6). It is grounded
// on the teacher's line/paragraph assembly passes in layout/line.go and
// layout/paragraph.go, generalized from absolute PDF geometry to the
// normalized merge predicates of package geometry and to the spec's
// fixed merge policy table.
package merge

import (
	"strconv"
	"unicode"

	"github.com/tsawler/docpipe/element"
	"github.com/tsawler/docpipe/geometry"
	"github.com/tsawler/docpipe/lang"
)

// Config holds the merge thresholds from spec.md §6.
type Config struct {
	// MergeDistanceThreshold is the max normalized vertical gap between
	// two elements for them to be merge candidates. Default 0.015.
	MergeDistanceThreshold float64
	// IndentTolerance is the max x-start difference that still counts
	// as column-aligned for merge purposes. Default 0.02.
	IndentTolerance float64
	// HeaderHeightTolerance is the relative bounding-box height
	// difference within which two elements are considered to share a
	// font-height band. Default 0.10 (±10%).
	HeaderHeightTolerance float64
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{MergeDistanceThreshold: 0.015, IndentTolerance: 0.02, HeaderHeightTolerance: 0.10}
}

// Merge walks els — assumed already in reading order via package order
// — and stitches adjacent merge candidates into single elements,
// per-page, then applies a final cross-page pass for trailing/leading
// fragments that straddle a page boundary. languageCode controls the
// separator used when joining TextBlock content (spec.md §4.6
// "Language-sensitive rules").
//
// Merge is idempotent: running it again over its own output is a
// no-op, because a merged element's geometry and content no longer
// satisfy the merge predicate against its former neighbor.
func Merge(els []element.Element, config Config, languageCode lang.Code) []element.Element {
	byPage := splitByPage(els)
	var merged []element.Element
	for _, page := range byPage {
		merged = append(merged, mergeRun(page, config, languageCode)...)
	}
	return mergeCrossPage(merged, config, languageCode)
}

func splitByPage(els []element.Element) [][]element.Element {
	var out [][]element.Element
	var current []element.Element
	var currentPage int
	started := false
	for _, el := range els {
		if !started {
			currentPage = el.PageNumber
			started = true
		}
		if el.PageNumber != currentPage {
			out = append(out, current)
			current = nil
			currentPage = el.PageNumber
		}
		current = append(current, el)
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// mergeRun performs a single left-to-right pass over a page's elements
// in reading order, merging each element into its predecessor whenever
// the merge predicate holds, per spec.md §4.6.
func mergeRun(page []element.Element, config Config, languageCode lang.Code) []element.Element {
	if len(page) == 0 {
		return nil
	}
	out := make([]element.Element, 0, len(page))
	out = append(out, page[0])
	for i := 1; i < len(page); i++ {
		prev := out[len(out)-1]
		next := page[i]
		if merged, ok := tryMerge(prev, next, config, languageCode); ok {
			out[len(out)-1] = merged
			continue
		}
		out = append(out, next)
	}
	return out
}

// mergeCrossPage merges the last element of page P into the first of
// page P+1 when they satisfy the merge predicate evaluated without the
// absolute vertical gap check (spec.md §4.6 "Cross-page merging"), and
// neither is a header/footer region candidate. The merged element
// takes the first page's PageNumber.
func mergeCrossPage(els []element.Element, config Config, languageCode lang.Code) []element.Element {
	if len(els) < 2 {
		return els
	}
	out := make([]element.Element, 0, len(els))
	out = append(out, els[0])
	for i := 1; i < len(els); i++ {
		prev := out[len(out)-1]
		next := els[i]
		if prev.PageNumber == next.PageNumber {
			out = append(out, next)
			continue
		}
		if prev.Region() != "" || next.Region() != "" {
			out = append(out, next)
			continue
		}
		if merged, ok := tryMergeIgnoringVerticalGap(prev, next, config, languageCode); ok {
			merged.PageNumber = prev.PageNumber
			out[len(out)-1] = merged
			continue
		}
		out = append(out, next)
	}
	return out
}

func isMergeCandidateGeometry(a, b element.Element, config Config, ignoreVerticalGap bool) bool {
	if !a.Type.IsTextBearing() || !b.Type.IsTextBearing() {
		return false
	}
	if a.Type == element.TypeTable || b.Type == element.TypeTable {
		return false
	}
	if !ignoreVerticalGap {
		if geometry.VerticalGap(a.BoundingBox, b.BoundingBox) > config.MergeDistanceThreshold {
			return false
		}
	}
	overlap := geometry.HorizontalOverlapRatio(a.BoundingBox, b.BoundingBox)
	if overlap >= 0.5 {
		return true
	}
	indentDiff := b.BoundingBox.X - a.BoundingBox.X
	if indentDiff < 0 {
		indentDiff = -indentDiff
	}
	return indentDiff <= config.IndentTolerance
}

func tryMerge(a, b element.Element, config Config, languageCode lang.Code) (element.Element, bool) {
	return tryMergeImpl(a, b, config, languageCode, false)
}

func tryMergeIgnoringVerticalGap(a, b element.Element, config Config, languageCode lang.Code) (element.Element, bool) {
	return tryMergeImpl(a, b, config, languageCode, true)
}

func tryMergeImpl(a, b element.Element, config Config, languageCode lang.Code, ignoreVerticalGap bool) (element.Element, bool) {
	if a.Type == element.TypeTable || b.Type == element.TypeTable ||
		a.Type == element.TypeImage || b.Type == element.TypeImage ||
		a.Type == element.TypeBarcode || b.Type == element.TypeBarcode {
		return element.Element{}, false
	}
	if !isMergeCandidateGeometry(a, b, config, ignoreVerticalGap) {
		return element.Element{}, false
	}

	switch {
	case a.Type == element.TypeListItem && b.Type == element.TypeTextBlock && b.Metadata[element.MetaListMarker] == "":
		return mergeListContinuation(a, b, languageCode), true
	case (a.Type == element.TypeTitle || a.Type == element.TypeHeader) && b.Type == element.TypeTextBlock && sameHeightBand(a, b, config.HeaderHeightTolerance):
		return mergeIntoHeader(a, b, languageCode), true
	case a.Type == element.TypeTextBlock && b.Type == element.TypeTextBlock:
		return mergeTextBlocks(a, b, languageCode), true
	default:
		return element.Element{}, false
	}
}

func sameHeightBand(a, b element.Element, tolerance float64) bool {
	ha, hb := a.BoundingBox.Height, b.BoundingBox.Height
	if ha == 0 {
		return false
	}
	ratio := (hb - ha) / ha
	if ratio < 0 {
		ratio = -ratio
	}
	return ratio <= tolerance
}

func joinSeparator(languageCode lang.Code) string {
	if languageCode.CJK() {
		return ""
	}
	return " "
}

// joinContent joins a's content with b's content applying the
// soft-hyphen rule: if a ends with a hyphen immediately preceded by a
// letter, the hyphen is stripped and the join is empty.
func joinContent(a, b string, sep string) string {
	runes := []rune(a)
	if len(runes) >= 2 && runes[len(runes)-1] == '-' && unicode.IsLetter(runes[len(runes)-2]) {
		return string(runes[:len(runes)-1]) + b
	}
	return a + sep + b
}

func mergeTextBlocks(a, b element.Element, languageCode lang.Code) element.Element {
	sep := joinSeparator(languageCode)
	content := joinContent(a.Content, b.Content, sep)
	confidence := a.Confidence
	if b.Confidence < confidence {
		confidence = b.Confidence
	}
	merged := a
	merged.BoundingBox = a.BoundingBox.Union(b.BoundingBox)
	merged.Content = content
	merged.Confidence = confidence
	return bumpFragmentCount(merged, a, b)
}

func mergeListContinuation(a, b element.Element, languageCode lang.Code) element.Element {
	sep := joinSeparator(languageCode)
	merged := a
	merged.BoundingBox = a.BoundingBox.Union(b.BoundingBox)
	merged.Content = joinContent(a.Content, b.Content, sep)
	if b.Confidence < merged.Confidence {
		merged.Confidence = b.Confidence
	}
	return bumpFragmentCount(merged, a, b)
}

func mergeIntoHeader(a, b element.Element, languageCode lang.Code) element.Element {
	sep := joinSeparator(languageCode)
	merged := a
	merged.Type = element.TypeHeader
	merged.BoundingBox = a.BoundingBox.Union(b.BoundingBox)
	merged.Content = joinContent(a.Content, b.Content, sep)
	if b.Confidence < merged.Confidence {
		merged.Confidence = b.Confidence
	}
	if _, ok := merged.Metadata[element.MetaHeaderLevel]; !ok {
		merged = merged.WithMetadata(element.MetaHeaderLevel, "1")
	}
	return bumpFragmentCount(merged, a, b)
}

// bumpFragmentCount sets merged's originalFragmentCount metadata to the
// sum of a's and b's counts, treating an absent count as a single
// original fragment, per spec.md §3's merge lifecycle.
func bumpFragmentCount(merged, a, b element.Element) element.Element {
	return merged.WithMetadata(element.MetaOriginalFragmentCount, strconv.Itoa(fragmentCount(a)+fragmentCount(b)))
}

func fragmentCount(el element.Element) int {
	v, ok := el.Metadata[element.MetaOriginalFragmentCount]
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
