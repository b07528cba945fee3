package merge

import (
	"reflect"
	"testing"

	"github.com/tsawler/docpipe/element"
	"github.com/tsawler/docpipe/geometry"
	"github.com/tsawler/docpipe/lang"
)

func textBlock(t *testing.T, page int, x, y, h float64, content string, idx int) element.Element {
	t.Helper()
	e, err := element.New(element.TypeTextBlock, geometry.New(x, y, 0.3, h), content, 0.9, page, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.InsertionIndex = idx
	return e
}

func TestMergeTwoTextBlocksWithSpace(t *testing.T) {
	a := textBlock(t, 1, 0.1, 0.1, 0.02, "hello", 0)
	b := textBlock(t, 1, 0.1, 0.111, 0.02, "world", 1)
	out := Merge([]element.Element{a, b}, DefaultConfig(), lang.English)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged element, got %d", len(out))
	}
	if out[0].Content != "hello world" {
		t.Errorf("Content = %q, want %q", out[0].Content, "hello world")
	}
}

func TestMergeSoftHyphen(t *testing.T) {
	a := textBlock(t, 1, 0.1, 0.1, 0.02, "docu-", 0)
	b := textBlock(t, 1, 0.1, 0.111, 0.02, "ment", 1)
	out := Merge([]element.Element{a, b}, DefaultConfig(), lang.English)
	if len(out) != 1 || out[0].Content != "document" {
		t.Fatalf("got %+v", out)
	}
}

func TestMergeCJKNoSpace(t *testing.T) {
	a := textBlock(t, 1, 0.1, 0.1, 0.02, "你好", 0)
	b := textBlock(t, 1, 0.1, 0.111, 0.02, "世界", 1)
	out := Merge([]element.Element{a, b}, DefaultConfig(), lang.Chinese)
	if len(out) != 1 || out[0].Content != "你好世界" {
		t.Fatalf("got %+v", out)
	}
}

func TestMergeDoesNotJoinFarApartBlocks(t *testing.T) {
	a := textBlock(t, 1, 0.1, 0.1, 0.02, "hello", 0)
	b := textBlock(t, 1, 0.1, 0.5, 0.02, "world", 1)
	out := Merge([]element.Element{a, b}, DefaultConfig(), lang.English)
	if len(out) != 2 {
		t.Fatalf("expected elements far apart to stay separate, got %d", len(out))
	}
}

func TestMergeTakesMinConfidence(t *testing.T) {
	a, _ := element.New(element.TypeTextBlock, geometry.New(0.1, 0.1, 0.3, 0.02), "hello", 0.95, 1, nil)
	b, _ := element.New(element.TypeTextBlock, geometry.New(0.1, 0.111, 0.3, 0.02), "world", 0.6, 1, nil)
	out := Merge([]element.Element{a, b}, DefaultConfig(), lang.English)
	if len(out) != 1 || out[0].Confidence != 0.6 {
		t.Fatalf("got %+v", out)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	a := textBlock(t, 1, 0.1, 0.1, 0.02, "hello", 0)
	b := textBlock(t, 1, 0.1, 0.111, 0.02, "world", 1)
	once := Merge([]element.Element{a, b}, DefaultConfig(), lang.English)
	twice := Merge(once, DefaultConfig(), lang.English)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent: %+v != %+v", once, twice)
	}
}

func TestMergeSetsOriginalFragmentCount(t *testing.T) {
	a := textBlock(t, 1, 0.1, 0.1, 0.02, "hello", 0)
	b := textBlock(t, 1, 0.1, 0.111, 0.02, "world", 1)
	c := textBlock(t, 1, 0.1, 0.122, 0.02, "again", 2)
	out := Merge([]element.Element{a, b, c}, DefaultConfig(), lang.English)
	if len(out) != 1 {
		t.Fatalf("expected all three to merge, got %d", len(out))
	}
	if got := out[0].Metadata[element.MetaOriginalFragmentCount]; got != "3" {
		t.Errorf("originalFragmentCount = %q, want %q", got, "3")
	}
}

func TestMergeCrossPageBoundary(t *testing.T) {
	a := textBlock(t, 1, 0.1, 0.95, 0.02, "continued", 0)
	b := textBlock(t, 2, 0.1, 0.05, 0.02, "onward", 1)
	out := Merge([]element.Element{a, b}, DefaultConfig(), lang.English)
	if len(out) != 1 {
		t.Fatalf("expected cross-page merge, got %d elements", len(out))
	}
	if out[0].PageNumber != 1 {
		t.Errorf("PageNumber = %d, want 1 (first page of origin)", out[0].PageNumber)
	}
}

func TestMergeNeverMergesTables(t *testing.T) {
	a, _ := element.New(element.TypeTable, geometry.New(0.1, 0.1, 0.3, 0.02), "cell", 0.9, 1, nil)
	b := textBlock(t, 1, 0.1, 0.111, 0.02, "world", 1)
	out := Merge([]element.Element{a, b}, DefaultConfig(), lang.English)
	if len(out) != 2 {
		t.Fatalf("tables must never merge, got %d elements", len(out))
	}
}
