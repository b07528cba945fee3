// Package dedup removes page-repeated running headers, footers, and
// page numbers across a document's pages (spec.md §4.5), grounded on
// the fingerprint-grouping and repeating-pattern-detection approach of
// the teacher's HeaderFooterDetector.findRepeatingPatterns, generalized
// from per-page fragment matching to a fingerprint over all pages at
// once.
package dedup

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/tsawler/docpipe/docerr"
	"github.com/tsawler/docpipe/element"
	"github.com/tsawler/docpipe/headerfooter"
)

// Config holds the deduplication threshold from spec.md §6.
type Config struct {
	// DuplicateMinPageFraction is the minimum fraction of distinct
	// pages a fingerprint must appear on to be treated as boilerplate.
	// Default 0.5.
	DuplicateMinPageFraction float64
}

// DefaultConfig returns the spec.md §6 default.
func DefaultConfig() Config {
	return Config{DuplicateMinPageFraction: 0.5}
}

// Result is the outcome of a Deduplicate call.
type Result struct {
	Elements      []element.Element
	RemovedCount  int
}

var digitRun = regexp.MustCompile(`\d+`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// fingerprint normalizes content for cross-page comparison: lowercase,
// whitespace-collapsed, each digit run replaced with '#', combined with
// a y-band discretized to 2 decimal places, per spec.md §4.5 step 2.
func fingerprint(content string, yCenter float64) string {
	normalized := strings.ToLower(strings.TrimSpace(content))
	normalized = whitespaceRun.ReplaceAllString(normalized, " ")
	normalized = digitRun.ReplaceAllString(normalized, "#")
	yBand := fmt.Sprintf("%.2f", yCenter)
	return normalized + "|" + yBand
}

// Deduplicate partitions els into header/footer candidates (tagged by
// package headerfooter) and body elements, then removes any candidate
// whose fingerprint recurs on enough distinct pages to be considered
// boilerplate. Body elements pass through untouched. pageCount is the
// total number of pages in the document (spec.md §4.5 step 3 uses it,
// not just the number of pages that happen to carry candidates).
func Deduplicate(els []element.Element, pageCount int, config Config) (Result, error) {
	if pageCount < 1 {
		return Result{}, fmt.Errorf("%w: pageCount must be >= 1, got %d", docerr.ErrInvalidInput, pageCount)
	}

	type group struct {
		pages map[int]bool
		idxs  []int
	}
	groups := make(map[string]*group)

	for i, el := range els {
		region := el.Region()
		if region != headerfooter.RegionHeader && region != headerfooter.RegionFooter {
			continue
		}
		fp := region + "|" + fingerprint(el.Content, el.BoundingBox.CenterY())
		g, ok := groups[fp]
		if !ok {
			g = &group{pages: make(map[int]bool)}
			groups[fp] = g
		}
		g.pages[el.PageNumber] = true
		g.idxs = append(g.idxs, i)
	}

	minOccurrences := int(math.Ceil(float64(pageCount)*config.DuplicateMinPageFraction - 1e-9))
	if minOccurrences < 2 {
		minOccurrences = 2
	}

	removed := make(map[int]bool)
	for _, g := range groups {
		if len(g.pages) < minOccurrences {
			continue
		}
		for _, idx := range g.idxs {
			removed[idx] = true
		}
	}

	out := make([]element.Element, 0, len(els)-len(removed))
	for i, el := range els {
		if removed[i] {
			continue
		}
		out = append(out, el)
	}

	return Result{Elements: out, RemovedCount: len(removed)}, nil
}
