package pagerange

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tsawler/docpipe/docerr"
)

func TestParseAll(t *testing.T) {
	r, err := Parse("all", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Pages, []int{1, 2, 3, 4, 5}) {
		t.Errorf("Pages = %v", r.Pages)
	}

	r2, err := Parse("  ALL  ", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r2.Pages, []int{1, 2, 3}) {
		t.Errorf("Pages = %v", r2.Pages)
	}
}

func TestParseFrom(t *testing.T) {
	r, err := Parse("3+", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Pages, []int{3, 4, 5}) {
		t.Errorf("Pages = %v", r.Pages)
	}
}

func TestParseTo(t *testing.T) {
	r, err := Parse("-3", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Pages, []int{1, 2, 3}) {
		t.Errorf("Pages = %v", r.Pages)
	}
}

func TestParseExplicitListAndRangeAndDedup(t *testing.T) {
	r, err := Parse("1, 3-5, 3, 2", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Pages, []int{1, 2, 3, 4, 5}) {
		t.Errorf("Pages = %v", r.Pages)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"0", "11", "5-3", "abc", "1,,2", ""}
	for _, c := range cases {
		if _, err := Parse(c, 10); !errors.Is(err, docerr.ErrInvalidInput) {
			t.Errorf("Parse(%q) expected ErrInvalidInput, got %v", c, err)
		}
	}
}

func TestFormatCollapsesRuns(t *testing.T) {
	got := Format([]int{1, 2, 3, 5, 7, 8, 9})
	want := "1-3,5,7-9"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	r, err := Parse("1,3-5,7-9", 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	formatted := Format(r.Pages)
	r2, err := Parse(formatted, 9)
	if err != nil {
		t.Fatalf("unexpected error on reparse: %v", err)
	}
	if !reflect.DeepEqual(r.Pages, r2.Pages) {
		t.Errorf("round trip mismatch: %v != %v", r.Pages, r2.Pages)
	}
}

func TestContains(t *testing.T) {
	r, _ := Parse("1,3-5", 10)
	if !r.Contains(4) {
		t.Error("expected range to contain 4")
	}
	if r.Contains(2) {
		t.Error("did not expect range to contain 2")
	}
}
