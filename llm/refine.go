package llm

import (
	"context"
	"regexp"
	"strings"

	"github.com/tsawler/docpipe/docerr"
	"github.com/tsawler/docpipe/lang"
	"github.com/tsawler/docpipe/prompt"
)

// Config mirrors spec.md §6's llm section.
type Config struct {
	Enabled               bool
	PerElementRefinement  bool
}

// Presence reports which refinable sub-structures the emitted document
// contains, so the orchestrator knows which specialized sub-prompts
// apply (spec.md §4.11 step 4).
type Presence struct {
	HasTables  bool
	HasLists   bool
	HasHeaders bool
}

// Outcome is the result of a refinement attempt.
type Outcome struct {
	Markdown string
	Refined  bool
	Warning  *docerr.Warning
}

var headerLine = regexp.MustCompile(`(?m)^#+\s+.+$`)

// Refine orchestrates LLM-assisted markdown refinement, per spec.md
// §4.11. It always returns a usable Markdown string: on a client error
// it returns the original pre-LLM markdown unchanged with Refined=false
// and a warning. When the whole-document output fails the sanity check
// that output is discarded and the original markdown is kept; with
// PerElementRefinement set, sub-structure refinements are still applied
// to it.
func Refine(ctx context.Context, client Client, detector *lang.Detector, templates *prompt.Catalogue, markdown string, params prompt.MarkdownOptimizationParams, presence Presence, config Config) Outcome {
	if !config.Enabled {
		return Outcome{Markdown: markdown}
	}

	detected := detector.Detect(markdown)
	params.DetectedLanguage = string(detected.Code)
	params.LanguageConfidence = detected.Confidence
	params.Markdown = markdown

	basePrompt := templates.GetMarkdownOptimizationPrompt(detected.Code, params)
	refined, err := client.GenerateText(ctx, basePrompt)
	if err != nil {
		return Outcome{
			Markdown: markdown,
			Warning:  &docerr.Warning{Kind: docerr.WarningLLMUnavailable, Message: err.Error()},
		}
	}

	candidate := markdown
	refinedAny := false
	if passesSanityCheck(markdown, refined) {
		candidate = refined
		refinedAny = true
	}

	if config.PerElementRefinement {
		candidate, refinedAny = refineSubStructures(ctx, client, templates, detected.Code, candidate, presence, refinedAny)
	}

	return Outcome{Markdown: candidate, Refined: refinedAny}
}

// passesSanityCheck implements spec.md §4.11's replacement guard: LLM
// output replaces the ground truth only when non-empty and it contains
// at least one of the original headers verbatim.
func passesSanityCheck(original, candidate string) bool {
	if strings.TrimSpace(candidate) == "" {
		return false
	}
	headers := headerLine.FindAllString(original, -1)
	if len(headers) == 0 {
		return true
	}
	for _, h := range headers {
		if strings.Contains(candidate, h) {
			return true
		}
	}
	return false
}

var (
	fencedTableBlock = regexp.MustCompile("(?s)```\\n.*?\\n```")
	pipeTableBlock   = regexp.MustCompile(`(?m)^\|.+\|\n\|[ \-:|]+\|\n(\|.+\|\n?)+`)
	listBlock        = regexp.MustCompile(`(?m)^(?: *(?:[-*]|\d+\.|[A-Za-z]\.|一、) .+\n?)+`)
)

// refineSubStructures invokes the table/list/header specialized prompts when
// the corresponding element types are present, merging each non-empty
// response into markdown by replacing the first matching fragment
// verbatim, per spec.md §4.11 step 4.
func refineSubStructures(ctx context.Context, client Client, templates *prompt.Catalogue, code lang.Code, markdown string, presence Presence, refinedAny bool) (string, bool) {
	if presence.HasTables {
		if fragment := firstMatch(pipeTableBlock, markdown); fragment != "" {
			if applied, ok := refineFragment(ctx, client, templates.GetTableOptimizationPrompt(code, fragment), markdown, fragment); ok {
				markdown = applied
				refinedAny = true
			}
		} else if fragment := firstMatch(fencedTableBlock, markdown); fragment != "" {
			if applied, ok := refineFragment(ctx, client, templates.GetTableOptimizationPrompt(code, fragment), markdown, fragment); ok {
				markdown = applied
				refinedAny = true
			}
		}
	}
	if presence.HasLists {
		if fragment := firstMatch(listBlock, markdown); fragment != "" {
			if applied, ok := refineFragment(ctx, client, templates.GetListOptimizationPrompt(code, fragment), markdown, fragment); ok {
				markdown = applied
				refinedAny = true
			}
		}
	}
	if presence.HasHeaders {
		if fragment := firstMatch(headerLine, markdown); fragment != "" {
			if applied, ok := refineFragment(ctx, client, templates.GetHeaderOptimizationPrompt(code, fragment), markdown, fragment); ok {
				markdown = applied
				refinedAny = true
			}
		}
	}
	return markdown, refinedAny
}

func firstMatch(re *regexp.Regexp, s string) string {
	return re.FindString(s)
}

// refineFragment calls the LLM with promptText and, if the response is
// non-empty, substitutes it for the first occurrence of original in
// markdown.
func refineFragment(ctx context.Context, client Client, promptText, markdown, original string) (string, bool) {
	resp, err := client.GenerateText(ctx, promptText)
	if err != nil || strings.TrimSpace(resp) == "" {
		return markdown, false
	}
	return strings.Replace(markdown, original, resp, 1), true
}
