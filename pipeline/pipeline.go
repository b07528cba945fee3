// Package pipeline wires components C1 through C11 into the top-level
// document-processing entry point (spec.md §5 "Suspension points").
// Grounded on the teacher's top-level Extract orchestration (the
// deleted extractor.go), which likewise built a document-wide element
// set from page-level OCR passes before handing it to layout analysis;
// this package re-expresses that shape over the new package split.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/tsawler/docpipe/dedup"
	"github.com/tsawler/docpipe/docerr"
	"github.com/tsawler/docpipe/element"
	"github.com/tsawler/docpipe/geometry"
	"github.com/tsawler/docpipe/headerfooter"
	"github.com/tsawler/docpipe/lang"
	"github.com/tsawler/docpipe/llm"
	"github.com/tsawler/docpipe/markdown"
	"github.com/tsawler/docpipe/merge"
	"github.com/tsawler/docpipe/ocrsrc"
	"github.com/tsawler/docpipe/order"
	"github.com/tsawler/docpipe/pagerange"
	"github.com/tsawler/docpipe/prompt"
	"github.com/tsawler/docpipe/structure"
)

// DocumentSource supplies rendered page images for a document; page
// rasterization itself is an external collaborator (out of scope, per
// spec.md §1), so this interface only asks for bytes the caller
// already produced.
type DocumentSource interface {
	PageCount(ctx context.Context) (int, error)
	PageImage(ctx context.Context, pageNumber int) ([]byte, error)
}

// Config bundles the per-stage configuration objects, each defaulted
// independently per spec.md §6.
type Config struct {
	HeaderFooter headerfooter.Config
	Dedup        dedup.Config
	Merge        merge.Config
	Structure    structure.Config
	Order        order.Config
	Language     lang.Config
	LLM          llm.Config
}

// DefaultConfig returns spec.md §6's defaults for every stage.
func DefaultConfig() Config {
	return Config{
		HeaderFooter: headerfooter.DefaultConfig(),
		Dedup:        dedup.DefaultConfig(),
		Merge:        merge.DefaultConfig(),
		Structure:    structure.DefaultConfig(),
		Order:        order.DefaultConfig(),
		Language:     lang.DefaultConfig(),
		LLM:          llm.Config{},
	}
}

// Result is the outcome of a successful ProcessDocument call.
type Result struct {
	Elements []element.Element
	Markdown string
	Info     element.DocumentInfo
}

// Pipeline owns the immutable configuration and collaborators shared
// across ProcessDocument calls. Construction is the only place
// collaborators are wired; no pipeline state is shared across
// concurrent ProcessDocument calls, per spec.md §5 "Shared-resource
// policy".
type Pipeline struct {
	config     Config
	source     ocrsrc.Source
	detector   *lang.Detector
	llmClient  llm.Client
	templates  *prompt.Catalogue
}

// New builds a Pipeline. source performs OCR on rendered page images;
// llmClient and templates may be nil when config.LLM.Enabled is false.
func New(config Config, source ocrsrc.Source, llmClient llm.Client, templates *prompt.Catalogue) *Pipeline {
	return &Pipeline{
		config:    config,
		source:    source,
		detector:  lang.New(config.Language),
		llmClient: llmClient,
		templates: templates,
	}
}

// ProcessDocument is the suspension-capable top-level entry point from
// spec.md §5: it renders the selected pages through OCR, builds and
// structures elements, deduplicates boilerplate, and emits Markdown,
// checking ctx between stages and between pages within a stage.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc DocumentSource, pageRangeSpec string) (*Result, []docerr.Warning, error) {
	total, err := doc.PageCount(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", docerr.ErrDocumentLoadFailed, err)
	}

	selection, err := pagerange.Parse(pageRangeSpec, total)
	if err != nil {
		return nil, nil, err
	}

	var warnings []docerr.Warning
	var els []element.Element
	langByPage := make(map[int]lang.Code)

	for _, pageNumber := range selection.Pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", docerr.ErrCancelled, err)
		}

		pageEls, langCode, warn, err := p.processPage(ctx, doc, pageNumber)
		if err != nil {
			return nil, nil, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		els = append(els, pageEls...)
		langByPage[pageNumber] = langCode
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", docerr.ErrCancelled, err)
	}

	// C5 runs before C6/C7 (spec.md §2 data flow): boilerplate removal
	// sees the raw per-page element set, not elements merge has already
	// stitched together.
	dedupResult, err := dedup.Deduplicate(els, len(selection.Pages), p.config.Dedup)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", docerr.ErrDeduplicationFailed, err)
	}
	els = mergeAndStructureByPage(dedupResult.Elements, langByPage, p.config)

	els = order.SortDocument(els, p.config.Order)

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", docerr.ErrCancelled, err)
	}

	md := markdown.Emit(els, markdown.Options{})
	if md == "" {
		return nil, nil, fmt.Errorf("%w: emitter produced no output", docerr.ErrMarkdownGenerationFailed)
	}

	if p.config.LLM.Enabled && p.llmClient != nil && p.templates != nil {
		outcome := llm.Refine(ctx, p.llmClient, p.detector, p.templates, md, prompt.MarkdownOptimizationParams{
			PageCount:    len(selection.Pages),
			ElementCount: len(els),
		}, presenceOf(els), p.config.LLM)
		md = outcome.Markdown
		if outcome.Warning != nil {
			warnings = append(warnings, *outcome.Warning)
		}
	}

	return &Result{
		Elements: els,
		Markdown: md,
		Info:     element.DocumentInfo{PageCount: total},
	}, warnings, nil
}

// processPage runs C1 (element construction), C4 (region
// classification), C8 (intra-page ordering for merge adjacency), and C3
// (per-page language detection) for a single page. Merge (C6) and
// structure detection (C7) run later, document-wide, after C5 has had a
// chance to drop boilerplate (see mergeAndStructureByPage).
func (p *Pipeline) processPage(ctx context.Context, doc DocumentSource, pageNumber int) ([]element.Element, lang.Code, *docerr.Warning, error) {
	image, err := doc.PageImage(ctx, pageNumber)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: %v", docerr.ErrDocumentLoadFailed, err)
	}

	observations, err := p.source.Observe(ctx, image, pageNumber)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: %v", docerr.ErrDocumentLoadFailed, err)
	}

	els, err := buildElements(observations)
	if err != nil {
		return nil, "", nil, err
	}

	els = headerfooter.New(p.config.HeaderFooter).Classify(els)
	order.Sort(els, p.config.Order)

	var warning *docerr.Warning
	texts := contentsOf(els)
	result := p.detector.DetectFromTexts(texts)
	if result.Confidence == 0 && len(texts) > 0 {
		warning = &docerr.Warning{Kind: docerr.WarningLanguageDetectionFailed, Message: "falling back to en"}
	}

	return els, result.Code, warning, nil
}

// mergeAndStructureByPage runs C6 (merge) and C7 (structure detection)
// per page over an already-deduplicated element set, using each page's
// own detected language for merge's join-separator rule.
func mergeAndStructureByPage(els []element.Element, langByPage map[int]lang.Code, config Config) []element.Element {
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
	for _, pageNumber := range pages {
		pageEls := merge.Merge(byPage[pageNumber], config.Merge, langByPage[pageNumber])
		pageEls = structure.AssignHeaderLevels(pageEls, config.Structure)
		pageEls = structure.DetectLists(pageEls, config.Structure)
		out = append(out, pageEls...)
	}
	return out
}

// titleHeightFactor is the relative height an element must exceed
// above the page's median text height to be treated as a header/title
// candidate for C7's leveling pass. Open question OQ-1 in DESIGN.md.
const titleHeightFactor = 1.3

// buildElements converts raw OCR observations into validated elements,
// applying list-marker detection (spec.md §4.7) and a height-outlier
// heuristic to flag header/title candidates before C7 ranks them.
func buildElements(observations []ocrsrc.Observation) ([]element.Element, error) {
	if len(observations) == 0 {
		return nil, nil
	}

	heights := make([]float64, 0, len(observations))
	for _, o := range observations {
		heights = append(heights, o.Height)
	}
	medianHeight := median(heights)

	els := make([]element.Element, 0, len(observations))
	for _, o := range observations {
		t, content, meta := classify(o, medianHeight)
		el, err := element.New(t, geometry.New(o.X, o.Y, o.Width, o.Height), content, o.Confidence, o.PageNumber, meta)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", docerr.ErrInvalidInput, err)
		}
		el.InsertionIndex = o.InsertionIndex
		els = append(els, el)
	}
	return els, nil
}

// classify maps a raw observation to its element type, content (with
// any recognized list marker stripped), and seed metadata.
func classify(o ocrsrc.Observation, medianHeight float64) (element.Type, string, map[string]string) {
	switch o.Hint {
	case ocrsrc.HintImage:
		return element.TypeImage, o.Text, nil
	case ocrsrc.HintBarcode:
		return element.TypeBarcode, o.Text, nil
	case ocrsrc.HintTable:
		return element.TypeTable, o.Text, nil
	}

	if class, prefixLen, ok := structure.DetectMarker(o.Text); ok {
		return element.TypeListItem, o.Text[prefixLen:], map[string]string{element.MetaListMarker: class}
	}

	if medianHeight > 0 && o.Height >= medianHeight*titleHeightFactor {
		return element.TypeTitle, o.Text, nil
	}
	return element.TypeTextBlock, o.Text, nil
}

// median returns the middle value of values, sorting a copy so the
// caller's slice order is preserved.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// contentsOf collects text-bearing element content for language
// detection, per spec.md §4.3's detectLanguageFromElements contract.
func contentsOf(els []element.Element) []string {
	texts := make([]string, 0, len(els))
	for _, el := range els {
		if el.Type.IsTextBearing() && el.Content != "" {
			texts = append(texts, el.Content)
		}
	}
	return texts
}

// presenceOf summarizes which refinable sub-structures a rendered
// element set contains, for llm.Refine's per-element-refinement gate.
func presenceOf(els []element.Element) llm.Presence {
	var p llm.Presence
	for _, el := range els {
		switch el.Type {
		case element.TypeTable:
			p.HasTables = true
		case element.TypeListItem, element.TypeList:
			p.HasLists = true
		case element.TypeHeader, element.TypeTitle:
			p.HasHeaders = true
		}
	}
	return p
}
