// Package pagerange parses the user-facing page selector grammar
// (spec.md §4.2) into a concrete, sorted, de-duplicated set of page
// numbers against a known document length.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/docpipe/docerr"
)

// Range is a parsed, normalized page selection: a sorted, de-duplicated
// list of 1-based page numbers, all within [1, total].
type Range struct {
	Pages []int
	total int
	raw   string
}

// Parse parses s against a document with total pages, following the
// grammar:
//
//	range    := "all" | from | to | explicit
//	from     := INT "+"
//	to       := "-" INT
//	explicit := INT | INT ("," INT)+ | INT "-" INT
//
// "all" is case-insensitive and whitespace around tokens is ignored.
func Parse(s string, total int) (Range, error) {
	if total < 0 {
		return Range{}, fmt.Errorf("%w: total pages must be >= 0, got %d", docerr.ErrInvalidInput, total)
	}

	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, "all") {
		return allPages(total, trimmed), nil
	}

	if strings.HasSuffix(trimmed, "+") {
		nStr := strings.TrimSpace(strings.TrimSuffix(trimmed, "+"))
		n, err := parsePositiveInt(nStr)
		if err != nil {
			return Range{}, fmt.Errorf("%w: invalid 'from' page range %q: %v", docerr.ErrInvalidInput, s, err)
		}
		if n > total {
			return Range{}, fmt.Errorf("%w: page %d exceeds total pages %d", docerr.ErrInvalidInput, n, total)
		}
		pages := make([]int, 0, total-n+1)
		for p := n; p <= total; p++ {
			pages = append(pages, p)
		}
		return Range{Pages: pages, total: total, raw: trimmed}, nil
	}

	if strings.HasPrefix(trimmed, "-") {
		nStr := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
		n, err := parsePositiveInt(nStr)
		if err != nil {
			return Range{}, fmt.Errorf("%w: invalid 'to' page range %q: %v", docerr.ErrInvalidInput, s, err)
		}
		if n > total {
			return Range{}, fmt.Errorf("%w: page %d exceeds total pages %d", docerr.ErrInvalidInput, n, total)
		}
		pages := make([]int, 0, n)
		for p := 1; p <= n; p++ {
			pages = append(pages, p)
		}
		return Range{Pages: pages, total: total, raw: trimmed}, nil
	}

	return parseExplicit(trimmed, total)
}

func allPages(total int, raw string) Range {
	pages := make([]int, total)
	for i := 0; i < total; i++ {
		pages[i] = i + 1
	}
	return Range{Pages: pages, total: total, raw: raw}
}

func parseExplicit(s string, total int) (Range, error) {
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty page range", docerr.ErrInvalidInput)
	}

	set := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Range{}, fmt.Errorf("%w: empty page token in %q", docerr.ErrInvalidInput, s)
		}

		if idx := strings.IndexByte(part, '-'); idx > 0 {
			aStr := strings.TrimSpace(part[:idx])
			bStr := strings.TrimSpace(part[idx+1:])
			a, err := parsePositiveInt(aStr)
			if err != nil {
				return Range{}, fmt.Errorf("%w: invalid range start %q: %v", docerr.ErrInvalidInput, part, err)
			}
			b, err := parsePositiveInt(bStr)
			if err != nil {
				return Range{}, fmt.Errorf("%w: invalid range end %q: %v", docerr.ErrInvalidInput, part, err)
			}
			if a > b {
				return Range{}, fmt.Errorf("%w: range start %d greater than end %d", docerr.ErrInvalidInput, a, b)
			}
			if b > total {
				return Range{}, fmt.Errorf("%w: page %d exceeds total pages %d", docerr.ErrInvalidInput, b, total)
			}
			for p := a; p <= b; p++ {
				set[p] = true
			}
			continue
		}

		n, err := parsePositiveInt(part)
		if err != nil {
			return Range{}, fmt.Errorf("%w: invalid page token %q: %v", docerr.ErrInvalidInput, part, err)
		}
		if n > total {
			return Range{}, fmt.Errorf("%w: page %d exceeds total pages %d", docerr.ErrInvalidInput, n, total)
		}
		set[n] = true
	}

	pages := make([]int, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return Range{Pages: pages, total: total, raw: s}, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers must be >= 1, got %d", n)
	}
	return n, nil
}

// Format renders a Range back into the explicit comma/dash grammar,
// collapsing consecutive runs into "a-b" spans. It is the inverse of
// Parse for the explicit grammar and is used to validate the
// page-range round-trip property (spec.md §8).
func Format(pages []int) string {
	if len(pages) == 0 {
		return ""
	}
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)

	var parts []string
	start := sorted[0]
	prev := sorted[0]
	flush := func(end int) {
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, end))
		}
	}
	for _, p := range sorted[1:] {
		if p == prev+1 {
			prev = p
			continue
		}
		flush(prev)
		start, prev = p, p
	}
	flush(prev)

	return strings.Join(parts, ",")
}

// Contains reports whether page p is selected.
func (r Range) Contains(p int) bool {
	for _, v := range r.Pages {
		if v == p {
			return true
		}
	}
	return false
}
