// Package prompt is a language-keyed catalogue of LLM prompt templates
// used by the refinement orchestrator (spec.md §4.10). Templates are
// plain multi-line strings with named {placeholder} substitutions,
// grounded on the retrieval-augmented prompt-building style of the
// example corpus's RAG-oriented repos rather than on the teacher, which
// has no LLM surface of its own.
package prompt

import (
	"regexp"
	"strconv"

	"github.com/tsawler/docpipe/lang"
)

// Catalogue holds one Templates set per supported language code, plus
// the resolution configuration from spec.md §6
// llm.promptTemplates.
type Catalogue struct {
	defaultLanguage  lang.Code
	fallbackLanguage lang.Code
	languages        map[lang.Code]Templates
}

// Templates is the full set of prompt bodies for one language.
type Templates struct {
	System              string
	MarkdownOptimization string
	StructureAnalysis    string
	TableOptimization    string
	ListOptimization     string
	HeaderOptimization   string
	TechnicalStandard    string
}

// Config mirrors spec.md §6's llm.promptTemplates section.
type Config struct {
	DefaultLanguage  lang.Code
	FallbackLanguage lang.Code
	Languages        map[lang.Code]Templates
}

// New builds a Catalogue, seeding the built-in English fallback
// templates and layering config.Languages (and config's default/
// fallback codes) on top.
func New(config Config) *Catalogue {
	languages := map[lang.Code]Templates{lang.English: englishTemplates}
	for code, t := range config.Languages {
		languages[code] = t
	}

	defaultLang := config.DefaultLanguage
	if defaultLang == "" {
		defaultLang = lang.English
	}
	fallbackLang := config.FallbackLanguage
	if fallbackLang == "" {
		fallbackLang = lang.English
	}

	return &Catalogue{
		defaultLanguage:  defaultLang,
		fallbackLanguage: fallbackLang,
		languages:        languages,
	}
}

// resolve picks templates following spec.md §4.10's resolution order:
// requested language, configured default, configured fallback,
// built-in English.
func (c *Catalogue) resolve(requested lang.Code) Templates {
	for _, code := range []lang.Code{requested, c.defaultLanguage, c.fallbackLanguage, lang.English} {
		if t, ok := c.languages[code]; ok {
			return t
		}
	}
	return englishTemplates
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// render substitutes {name} placeholders from params, leaving unknown
// placeholders literal, per spec.md §4.10.
func render(template string, params map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		if v, ok := params[name]; ok {
			return v
		}
		return match
	})
}

// GetSystemPrompt returns the system prompt for the resolved language.
func (c *Catalogue) GetSystemPrompt(requested lang.Code) string {
	return c.resolve(requested).System
}

// GetTechnicalStandardPrompt returns the technical-standard prompt for
// the resolved language.
func (c *Catalogue) GetTechnicalStandardPrompt(requested lang.Code) string {
	return c.resolve(requested).TechnicalStandard
}

// MarkdownOptimizationParams feeds GetMarkdownOptimizationPrompt.
type MarkdownOptimizationParams struct {
	DocumentTitle      string
	PageCount          int
	ElementCount       int
	DocumentContext    string
	DetectedLanguage   string
	LanguageConfidence float64
	Markdown           string
}

// GetMarkdownOptimizationPrompt renders the markdown-optimization
// template for the resolved language.
func (c *Catalogue) GetMarkdownOptimizationPrompt(requested lang.Code, p MarkdownOptimizationParams) string {
	return render(c.resolve(requested).MarkdownOptimization, map[string]string{
		"documentTitle":      p.DocumentTitle,
		"pageCount":          strconv.Itoa(p.PageCount),
		"elementCount":       strconv.Itoa(p.ElementCount),
		"documentContext":    p.DocumentContext,
		"detectedLanguage":   p.DetectedLanguage,
		"languageConfidence": strconv.FormatFloat(p.LanguageConfidence, 'f', 2, 64),
		"markdown":           p.Markdown,
	})
}

// StructureAnalysisParams feeds GetStructureAnalysisPrompt.
type StructureAnalysisParams struct {
	DocumentType        string
	ElementCount        int
	DetectedLanguage    string
	ElementDescriptions string
}

// GetStructureAnalysisPrompt renders the structure-analysis template
// for the resolved language.
func (c *Catalogue) GetStructureAnalysisPrompt(requested lang.Code, p StructureAnalysisParams) string {
	return render(c.resolve(requested).StructureAnalysis, map[string]string{
		"documentType":        p.DocumentType,
		"elementCount":        strconv.Itoa(p.ElementCount),
		"detectedLanguage":    p.DetectedLanguage,
		"elementDescriptions": p.ElementDescriptions,
	})
}

// GetTableOptimizationPrompt renders the table-optimization template.
func (c *Catalogue) GetTableOptimizationPrompt(requested lang.Code, tableContent string) string {
	return render(c.resolve(requested).TableOptimization, map[string]string{"tableContent": tableContent})
}

// GetListOptimizationPrompt renders the list-optimization template.
func (c *Catalogue) GetListOptimizationPrompt(requested lang.Code, listContent string) string {
	return render(c.resolve(requested).ListOptimization, map[string]string{"listContent": listContent})
}

// GetHeaderOptimizationPrompt renders the header-optimization template.
func (c *Catalogue) GetHeaderOptimizationPrompt(requested lang.Code, headerContent string) string {
	return render(c.resolve(requested).HeaderOptimization, map[string]string{"headerContent": headerContent})
}

var englishTemplates = Templates{
	System: "You are a meticulous document structuring assistant. " +
		"Preserve all factual content; only improve formatting and structure.",
	MarkdownOptimization: "Document: {documentTitle} ({pageCount} pages, {elementCount} elements)\n" +
		"Detected language: {detectedLanguage} (confidence {languageConfidence})\n" +
		"Context: {documentContext}\n\n" +
		"Improve the structure and readability of the following Markdown without " +
		"altering its factual content or removing any headings:\n\n{markdown}",
	StructureAnalysis: "Document type: {documentType}, {elementCount} elements, " +
		"language {detectedLanguage}.\nElements:\n{elementDescriptions}\n\n" +
		"Identify structural issues (misordered headings, broken lists, split paragraphs).",
	TableOptimization:  "Reformat the following table content into a clean Markdown table:\n\n{tableContent}",
	ListOptimization:   "Reformat the following list content into a clean, consistently indented Markdown list:\n\n{listContent}",
	HeaderOptimization: "Normalize the heading level and wording of the following header text:\n\n{headerContent}",
	TechnicalStandard: "Follow standard technical writing conventions: sentence-case headings, " +
		"Oxford commas, and consistent terminology throughout.",
}
