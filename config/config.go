// Package config provides configuration management for the document
// pipeline, grounded on the viper-based loading and mapstructure/
// validate-tag struct organization of the example corpus's
// HSn0918-rag config package. The teacher carries no configuration
// layer of its own (its only tunables are hand-constructed Go structs
// passed by the caller), so the ambient shape here follows the RAG
// repo rather than the teacher.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalidConfig reports a structurally invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// ProcessingConfig mirrors spec.md §6 "processing".
type ProcessingConfig struct {
	OverlapThreshold         float64    `mapstructure:"overlap_threshold" validate:"min=0,max=1"`
	MergeDistanceThreshold   float64    `mapstructure:"merge_distance_threshold" validate:"min=0,max=1"`
	HeaderRegion             [2]float64 `mapstructure:"header_region"`
	FooterRegion             [2]float64 `mapstructure:"footer_region"`
	RowBandTolerance         float64    `mapstructure:"row_band_tolerance" validate:"min=0,max=1"`
	ListIndentStep           float64    `mapstructure:"list_indent_step" validate:"min=0,max=1"`
	DuplicateMinPageFraction float64    `mapstructure:"duplicate_min_page_fraction" validate:"min=0,max=1"`
	IndentTolerance          float64    `mapstructure:"indent_tolerance" validate:"min=0,max=1"`
	MaxColumns               int        `mapstructure:"max_columns" validate:"min=1"`
}

// LanguageDetectionConfig mirrors spec.md §6 "languageDetection".
type LanguageDetectionConfig struct {
	MinimumTextLength   int     `mapstructure:"minimum_text_length" validate:"min=0"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" validate:"min=0,max=1"`
}

// PromptTemplatesConfig mirrors spec.md §6 "llm.promptTemplates".
type PromptTemplatesConfig struct {
	DefaultLanguage  string            `mapstructure:"default_language"`
	FallbackLanguage string            `mapstructure:"fallback_language"`
	Languages        map[string]string `mapstructure:"languages"`
}

// LLMConfig mirrors spec.md §6 "llm".
type LLMConfig struct {
	Enabled              bool                  `mapstructure:"enabled"`
	RequestTimeoutSeconds int                  `mapstructure:"request_timeout_seconds" validate:"min=1"`
	PerElementRefinement bool                  `mapstructure:"per_element_refinement"`
	PromptTemplates      PromptTemplatesConfig `mapstructure:"prompt_templates"`
	Model                string                `mapstructure:"model"`
}

// Config is the complete pipeline configuration, per spec.md §6
// "Configuration input".
type Config struct {
	Processing        ProcessingConfig        `mapstructure:"processing"`
	LanguageDetection LanguageDetectionConfig `mapstructure:"language_detection"`
	LLM               LLMConfig               `mapstructure:"llm"`
}

// Default returns the spec.md §6 defaults.
func Default() Config {
	return Config{
		Processing: ProcessingConfig{
			OverlapThreshold:         0.1,
			MergeDistanceThreshold:   0.015,
			HeaderRegion:             [2]float64{0.0, 0.08},
			FooterRegion:             [2]float64{0.92, 1.0},
			RowBandTolerance:         0.01,
			ListIndentStep:           0.03,
			DuplicateMinPageFraction: 0.5,
			IndentTolerance:          0.02,
			MaxColumns:               2,
		},
		LanguageDetection: LanguageDetectionConfig{
			MinimumTextLength:   10,
			ConfidenceThreshold: 0.6,
		},
		LLM: LLMConfig{
			Enabled:               false,
			RequestTimeoutSeconds: 60,
			PerElementRefinement:  false,
			PromptTemplates: PromptTemplatesConfig{
				DefaultLanguage:  "en",
				FallbackLanguage: "en",
			},
		},
	}
}

// Load reads configuration from configPath (a directory containing a
// "config.yaml"/"config.json"/etc.) layered over Default(), and
// environment variables prefixed DOCPIPE_ take precedence over the
// file, following viper's standard resolution order.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("DOCPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(v *viper.Viper, d Config) {
	v.SetDefault("processing.overlap_threshold", d.Processing.OverlapThreshold)
	v.SetDefault("processing.merge_distance_threshold", d.Processing.MergeDistanceThreshold)
	v.SetDefault("processing.header_region", d.Processing.HeaderRegion)
	v.SetDefault("processing.footer_region", d.Processing.FooterRegion)
	v.SetDefault("processing.row_band_tolerance", d.Processing.RowBandTolerance)
	v.SetDefault("processing.list_indent_step", d.Processing.ListIndentStep)
	v.SetDefault("processing.duplicate_min_page_fraction", d.Processing.DuplicateMinPageFraction)
	v.SetDefault("processing.indent_tolerance", d.Processing.IndentTolerance)
	v.SetDefault("processing.max_columns", d.Processing.MaxColumns)

	v.SetDefault("language_detection.minimum_text_length", d.LanguageDetection.MinimumTextLength)
	v.SetDefault("language_detection.confidence_threshold", d.LanguageDetection.ConfidenceThreshold)

	v.SetDefault("llm.enabled", d.LLM.Enabled)
	v.SetDefault("llm.request_timeout_seconds", d.LLM.RequestTimeoutSeconds)
	v.SetDefault("llm.per_element_refinement", d.LLM.PerElementRefinement)
	v.SetDefault("llm.prompt_templates.default_language", d.LLM.PromptTemplates.DefaultLanguage)
	v.SetDefault("llm.prompt_templates.fallback_language", d.LLM.PromptTemplates.FallbackLanguage)
}

// Validate checks cross-field invariants not expressible as simple tag
// bounds.
func (c *Config) Validate() error {
	if c.Processing.HeaderRegion[0] > c.Processing.HeaderRegion[1] {
		return fmt.Errorf("%w: processing.header_region start must be <= end", ErrInvalidConfig)
	}
	if c.Processing.FooterRegion[0] > c.Processing.FooterRegion[1] {
		return fmt.Errorf("%w: processing.footer_region start must be <= end", ErrInvalidConfig)
	}
	if c.Processing.MaxColumns < 1 {
		return fmt.Errorf("%w: processing.max_columns must be >= 1", ErrInvalidConfig)
	}
	if c.LLM.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("%w: llm.request_timeout_seconds must be >= 1", ErrInvalidConfig)
	}
	return nil
}
