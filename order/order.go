// Package order defines the reading-order total relation on elements
// within a document (spec.md §4.8), grounded on the column/row banding
// approach of the teacher's layout.ReadingOrderConfig and layout.Columns,
// generalized from absolute PDF points to normalized coordinates and
// simplified to the spec's fixed five-step relation.
package order

import (
	"fmt"
	"sort"

	"github.com/tsawler/docpipe/element"
)

// Config holds the reading-order thresholds from spec.md §6.
type Config struct {
	// RowBandTolerance is the max y-center difference for two elements
	// to be considered part of the same row band. Default 0.01.
	RowBandTolerance float64
	// MaxColumns bounds the column clustering. Default 2.
	MaxColumns int
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{RowBandTolerance: 0.01, MaxColumns: 2}
}

// Sort orders els in place (via a stable sort) into reading order for a
// single page, following spec.md §4.8. Columns are clustered across the
// whole page first and ordered left-to-right, then elements within a
// column are ordered top-to-bottom by row band, so a multi-column page
// reads one column to completion before the next (spec.md §8 scenario
// 6) rather than row-major across columns. Callers that need
// document-wide order should group by PageNumber first (see SortDocument).
func Sort(els []element.Element, config Config) {
	columnOf := assignColumns(els, config.MaxColumns)
	bands := bandElements(els, config.RowBandTolerance)

	sort.SliceStable(els, func(i, j int) bool {
		ci, cj := columnOf[elementKey(els[i])], columnOf[elementKey(els[j])]
		if ci != cj {
			return ci < cj
		}
		bi, bj := bandIndexFor(els[i], bands), bandIndexFor(els[j], bands)
		if bi != bj {
			return bi < bj
		}
		if els[i].BoundingBox.X != els[j].BoundingBox.X {
			return els[i].BoundingBox.X < els[j].BoundingBox.X
		}
		return els[i].InsertionIndex < els[j].InsertionIndex
	})
}

// SortDocument orders els across an entire document: lower PageNumber
// first (spec.md §4.8 step 1), then reading order within each page.
func SortDocument(els []element.Element, config Config) []element.Element {
	byPage := make(map[int][]element.Element)
	var pages []int
	for _, el := range els {
		if _, ok := byPage[el.PageNumber]; !ok {
			pages = append(pages, el.PageNumber)
		}
		byPage[el.PageNumber] = append(byPage[el.PageNumber], el)
	}
	sort.Ints(pages)

	out := make([]element.Element, 0, len(els))
	for _, p := range pages {
		page := byPage[p]
		Sort(page, config)
		out = append(out, page...)
	}
	return out
}

// band is a cluster of elements whose y-centers are mutually within
// tolerance, ordered top-to-bottom by its representative y-center.
type band struct {
	yCenter float64
}

// bandElements clusters elements into row bands with a sweep over the
// sorted y-centers: an element joins the current band while its
// y-center is within tolerance of the band's first y-center, and
// starts a new band otherwise (spec.md §4.8 step 2).
func bandElements(els []element.Element, tolerance float64) []band {
	if len(els) == 0 {
		return nil
	}
	order := make([]int, len(els))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return els[order[i]].BoundingBox.CenterY() < els[order[j]].BoundingBox.CenterY()
	})

	var bands []band
	var currentSum float64
	var currentCount int
	var currentStart float64

	flush := func() {
		if currentCount > 0 {
			bands = append(bands, band{yCenter: currentSum / float64(currentCount)})
		}
	}

	for _, idx := range order {
		y := els[idx].BoundingBox.CenterY()
		if currentCount == 0 {
			currentStart = y
			currentSum = y
			currentCount = 1
			continue
		}
		if y-currentStart <= tolerance {
			currentSum += y
			currentCount++
			continue
		}
		flush()
		currentStart = y
		currentSum = y
		currentCount = 1
	}
	flush()
	return bands
}

// bandIndexFor finds the band whose yCenter is nearest el's y-center.
func bandIndexFor(el element.Element, bands []band) int {
	y := el.BoundingBox.CenterY()
	best := 0
	bestDist := -1.0
	for i, b := range bands {
		d := y - b.yCenter
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// assignColumns partitions all of a page's elements into at most
// maxColumns clusters of x-start, using simple sorted-gap splitting (a
// lightweight stand-in for k-means appropriate at this scale), per
// spec.md §4.8 step 4. Clustering runs over the whole page rather than
// within a row band first, so a page-wide column layout is detected
// even when each column's rows don't share a band with the other
// column's rows. It returns a map keyed by elementKey to a column
// index, ordered left-to-right.
func assignColumns(els []element.Element, maxColumns int) map[string]int {
	result := make(map[string]int, len(els))
	if maxColumns < 1 {
		maxColumns = 1
	}

	sorted := make([]element.Element, len(els))
	copy(sorted, els)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BoundingBox.X < sorted[j].BoundingBox.X
	})

	cols := splitIntoColumns(sorted, maxColumns)
	for ci, col := range cols {
		for _, el := range col {
			result[elementKey(el)] = ci
		}
	}
	return result
}

// splitIntoColumns splits x-sorted elements into at most maxColumns
// groups by cutting at the largest x-start gaps.
func splitIntoColumns(sorted []element.Element, maxColumns int) [][]element.Element {
	if len(sorted) <= 1 || maxColumns <= 1 {
		return [][]element.Element{sorted}
	}

	type gap struct {
		index float64
		at    int
	}
	var gaps []gap
	for i := 1; i < len(sorted); i++ {
		g := sorted[i].BoundingBox.X - sorted[i-1].BoundingBox.X
		gaps = append(gaps, gap{index: g, at: i})
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].index > gaps[j].index })

	cuts := maxColumns - 1
	if cuts > len(gaps) {
		cuts = len(gaps)
	}
	var cutPoints []int
	for i := 0; i < cuts; i++ {
		if gaps[i].index <= 0 {
			continue
		}
		cutPoints = append(cutPoints, gaps[i].at)
	}
	sort.Ints(cutPoints)

	var columns [][]element.Element
	prev := 0
	for _, c := range cutPoints {
		columns = append(columns, sorted[prev:c])
		prev = c
	}
	columns = append(columns, sorted[prev:])
	return columns
}

// elementKey identifies an element uniquely within a single Sort call
// by its insertion index and page, which are stable for the lifetime
// of one sort regardless of slice reordering.
func elementKey(el element.Element) string {
	return fmt.Sprintf("%d-%d", el.PageNumber, el.InsertionIndex)
}
