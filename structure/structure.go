// Package structure assigns header levels and detects list structure
// (spec.md §4.7), grounded on the teacher's HeadingLevel/heading-score
// model in layout/heading.go and its marker-class detection in
// layout/list.go, adapted from absolute font sizes to relative
// bounding-box height bands over normalized elements.
package structure

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/docpipe/element"
)

// Config holds the structure-detection thresholds from spec.md §6.
type Config struct {
	// ListIndentStep buckets bounding-box x-start into indent levels.
	// Default 0.03.
	ListIndentStep float64
	// HeightClusterTolerance is the relative height difference within
	// which two header candidates share a font-height bucket. Default
	// 0.05 (±5%).
	HeightClusterTolerance float64
	// MaxHeaderLevel caps the assigned header level. Default 6.
	MaxHeaderLevel int
}

// DefaultConfig returns the spec.md §6/§4.7 defaults.
func DefaultConfig() Config {
	return Config{ListIndentStep: 0.03, HeightClusterTolerance: 0.05, MaxHeaderLevel: 6}
}

var numberingPattern = regexp.MustCompile(`^(\d+)(\.\d+)*`)

// numberingDepth returns the dot-separated depth of a hierarchical
// numbering prefix (e.g. "1.1.2" has depth 3), or 0 if content does not
// begin with one.
func numberingDepth(content string) int {
	trimmed := strings.TrimSpace(content)
	m := numberingPattern.FindString(trimmed)
	if m == "" {
		return 0
	}
	return strings.Count(m, ".") + 1
}

// AssignHeaderLevels ranks header/title candidates by a composite score
// of inverse font-height rank and numbering-pattern depth, then writes
// element.MetaHeaderLevel on each, per spec.md §4.7 "Header leveling".
// Non-candidate elements pass through unmodified. candidates must
// already be in document order; ties are broken by that order.
func AssignHeaderLevels(els []element.Element, config Config) []element.Element {
	var infos []candidateInfo
	for i, el := range els {
		if el.Type == element.TypeTitle || el.Type == element.TypeHeader {
			infos = append(infos, candidateInfo{index: i, height: el.BoundingBox.Height})
		}
	}
	if len(infos) == 0 {
		return els
	}

	heightRank := buildHeightRanks(infos, config)

	out := make([]element.Element, len(els))
	copy(out, els)
	for _, info := range infos {
		el := out[info.index]
		level := heightRank[info.height]
		if depth := numberingDepth(el.Content); depth > 0 {
			level = depth
		}
		if level < 1 {
			level = 1
		}
		if level > config.MaxHeaderLevel {
			level = config.MaxHeaderLevel
		}
		out[info.index] = el.WithMetadata(element.MetaHeaderLevel, levelString(level))
	}
	return out
}

// candidateInfo pairs a header/title candidate's position in els with
// its bounding-box height for ranking purposes.
type candidateInfo struct {
	index  int
	height float64
}

// buildHeightRanks clusters distinct heights (within tolerance) and
// maps each to a 1-based level, tallest first.
func buildHeightRanks(infos []candidateInfo, config Config) map[float64]int {
	heights := make([]float64, 0, len(infos))
	for _, info := range infos {
		heights = append(heights, info.height)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(heights)))

	rank := make(map[float64]int)
	level := 0
	var clusterHeight float64
	for i, h := range heights {
		if i == 0 || !withinTolerance(clusterHeight, h, config.HeightClusterTolerance) {
			level++
			clusterHeight = h
		}
		if _, seen := rank[h]; !seen {
			rank[h] = level
		}
	}
	return rank
}

func withinTolerance(reference, value, tolerance float64) bool {
	if reference == 0 {
		return value == 0
	}
	ratio := (reference - value) / reference
	if ratio < 0 {
		ratio = -ratio
	}
	return ratio <= tolerance
}

func levelString(level int) string {
	return strconv.Itoa(level)
}

// Marker classes recognized by list detection, per spec.md §4.7.
const (
	MarkerBullet     = "bullet"
	MarkerNumeric    = "numeric"
	MarkerAlphabetic = "alphabetic"
	MarkerRoman      = "roman"
	MarkerCJK        = "cjk"
)

var (
	bulletPattern  = regexp.MustCompile(`^[•·*\-–—▪◦]\s+`)
	numericPattern = regexp.MustCompile(`^\d+[.)]\s+`)
	alphaPattern   = regexp.MustCompile(`^[A-Za-z][.)]\s+`)
	romanPattern   = regexp.MustCompile(`(?i)^(m{0,4}(cm|cd|d?c{0,3})(xc|xl|l?x{0,3})(ix|iv|v?i{0,3}))[.)]\s+`)
	cjkPattern     = regexp.MustCompile(`^([一二三四五六七八九十百千]+、|（[一二三四五六七八九十百千]+）)`)
)

// DetectMarker reports the marker class of content, if any, and the
// length of the marker prefix (including trailing whitespace) so
// callers can strip it when needed.
func DetectMarker(content string) (class string, prefixLen int, ok bool) {
	trimmed := content
	if m := bulletPattern.FindString(trimmed); m != "" {
		return MarkerBullet, len(m), true
	}
	if m := numericPattern.FindString(trimmed); m != "" {
		return MarkerNumeric, len(m), true
	}
	if m := romanPattern.FindString(trimmed); m != "" {
		return MarkerRoman, len(m), true
	}
	if m := alphaPattern.FindString(trimmed); m != "" {
		return MarkerAlphabetic, len(m), true
	}
	if m := cjkPattern.FindString(trimmed); m != "" {
		return MarkerCJK, len(m), true
	}
	return "", 0, false
}

// IndentLevel buckets an x-start into discrete indent steps.
func IndentLevel(xStart float64, step float64) int {
	if step <= 0 {
		return 0
	}
	return int(xStart / step)
}

// DetectLists writes element.MetaIndentLevel (1-based, from the
// x-start bucketed by ListIndentStep) on each ListItem element. It
// operates on elements already typed TypeListItem by the caller's
// marker detection (typically applied while building elements from OCR
// observations). It does not create List elements or link nested items
// to a parent; consecutive items are grouped only at emission, by
// package markdown, according to their marker class.
func DetectLists(els []element.Element, config Config) []element.Element {
	out := make([]element.Element, len(els))
	copy(out, els)
	for i, el := range out {
		if el.Type != element.TypeListItem {
			continue
		}
		indent := IndentLevel(el.BoundingBox.X, config.ListIndentStep)
		out[i] = el.WithMetadata(element.MetaIndentLevel, levelString(indent+1))
	}
	return out
}
