// Package lang detects the dominant language of extracted text, with a
// closed set of supported codes and a fallback-to-English policy for
// short or low-confidence input, per spec.md §4.3.
package lang

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Code is one of the closed set of supported language codes. Any code
// not in this set must be treated as English by downstream consumers.
type Code string

const (
	English    Code = "en"
	Spanish    Code = "es"
	French     Code = "fr"
	German     Code = "de"
	Italian    Code = "it"
	Portuguese Code = "pt"
	Russian    Code = "ru"
	Chinese    Code = "zh"
	Japanese   Code = "ja"
	Korean     Code = "ko"
)

// supported is the closed set from spec.md §4.3, in the order passed to
// the underlying detector.
var supported = []lingua.Language{
	lingua.English, lingua.Spanish, lingua.French, lingua.German,
	lingua.Italian, lingua.Portuguese, lingua.Russian, lingua.Chinese,
	lingua.Japanese, lingua.Korean,
}

var codeByLanguage = map[lingua.Language]Code{
	lingua.English:    English,
	lingua.Spanish:    Spanish,
	lingua.French:     French,
	lingua.German:     German,
	lingua.Italian:    Italian,
	lingua.Portuguese: Portuguese,
	lingua.Russian:    Russian,
	lingua.Chinese:    Chinese,
	lingua.Japanese:   Japanese,
	lingua.Korean:     Korean,
}

// CJK reports whether code identifies a CJK language, for which the
// element merger (C6) joins fragments without inserting a space.
func (c Code) CJK() bool {
	return c == Chinese || c == Japanese || c == Korean
}

// Config holds the thresholds from spec.md §4.3.
type Config struct {
	// MinimumTextLength is the codepoint count below which detection
	// short-circuits to (en, 0.0). Default 10.
	MinimumTextLength int
	// ConfidenceThreshold is the minimum confidence to accept a
	// detection result instead of falling back to en. Default 0.6.
	ConfidenceThreshold float64
}

// DefaultConfig returns the spec.md §4.3 defaults.
func DefaultConfig() Config {
	return Config{MinimumTextLength: 10, ConfidenceThreshold: 0.6}
}

// Alternate is a ranked alternative detection.
type Alternate struct {
	Code       Code
	Confidence float64
}

// Result is the outcome of a detection call.
type Result struct {
	Code       Code
	Confidence float64
	Alternates []Alternate
}

// Detector wraps a statistical language identifier (lingua-go) behind
// the spec's (code, confidence) contract, so the rest of the pipeline
// never depends on the underlying library's types directly — the same
// isolation the teacher applies to ocr.Client wrapping gosseract.Client.
type Detector struct {
	config  Config
	backend lingua.LanguageDetector
}

// New builds a Detector over the closed supported-language set using
// the given configuration.
func New(config Config) *Detector {
	backend := lingua.NewLanguageDetectorBuilder().
		FromLanguages(supported...).
		WithPreloadedLanguageModels().
		Build()
	return &Detector{config: config, backend: backend}
}

// Detect identifies the dominant language of text. Texts shorter than
// MinimumTextLength return (en, 0.0) without consulting the backend;
// confidence below ConfidenceThreshold forces a fallback to en.
func (d *Detector) Detect(text string) Result {
	if len([]rune(text)) < d.config.MinimumTextLength {
		return Result{Code: English, Confidence: 0.0}
	}

	values := d.backend.ComputeLanguageConfidenceValues(text)
	if len(values) == 0 {
		return Result{Code: English, Confidence: 0.0}
	}

	top := values[0]
	code, ok := codeByLanguage[top.Language()]
	if !ok {
		code = English
	}

	alternates := make([]Alternate, 0, len(values)-1)
	for _, v := range values[1:] {
		ac, ok := codeByLanguage[v.Language()]
		if !ok {
			continue
		}
		alternates = append(alternates, Alternate{Code: ac, Confidence: v.Value()})
	}

	if top.Value() < d.config.ConfidenceThreshold {
		return Result{Code: English, Confidence: 0.0, Alternates: alternates}
	}

	return Result{Code: code, Confidence: top.Value(), Alternates: alternates}
}

// DetectFromTexts concatenates texts with single spaces before
// detection, per spec.md §4.3's detectLanguageFromElements contract.
func (d *Detector) DetectFromTexts(texts []string) Result {
	joined := strings.Join(texts, " ")
	return d.Detect(joined)
}

// DetectWithContext uses the most frequent language among previous
// results as a prior: if the current detection matches that prior and
// meets the confidence threshold, it is returned as-is; otherwise the
// detector falls back to a plain Detect call.
func (d *Detector) DetectWithContext(current string, previous []Code) Result {
	result := d.Detect(current)
	if len(previous) == 0 {
		return result
	}

	prior := mostFrequent(previous)
	if result.Code == prior && result.Confidence >= d.config.ConfidenceThreshold {
		return result
	}
	return d.Detect(current)
}

func mostFrequent(codes []Code) Code {
	counts := make(map[Code]int, len(codes))
	best := codes[0]
	bestCount := 0
	for _, c := range codes {
		counts[c]++
		if counts[c] > bestCount {
			bestCount = counts[c]
			best = c
		}
	}
	return best
}
