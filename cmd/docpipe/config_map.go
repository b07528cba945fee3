package main

import (
	"github.com/tsawler/docpipe/config"
	"github.com/tsawler/docpipe/dedup"
	"github.com/tsawler/docpipe/headerfooter"
	"github.com/tsawler/docpipe/lang"
	"github.com/tsawler/docpipe/llm"
	"github.com/tsawler/docpipe/merge"
	"github.com/tsawler/docpipe/order"
	"github.com/tsawler/docpipe/structure"
)

// The functions below translate the flat, file/env-loadable
// config.Config into the per-stage Config types each pipeline package
// owns. Fields the top-level configuration file doesn't expose keep
// that stage's own default.

func toHeaderFooterConfig(c config.Config) headerfooter.Config {
	return headerfooter.Config{
		HeaderRegion: c.Processing.HeaderRegion,
		FooterRegion: c.Processing.FooterRegion,
	}
}

func toDedupConfig(c config.Config) dedup.Config {
	return dedup.Config{DuplicateMinPageFraction: c.Processing.DuplicateMinPageFraction}
}

func toMergeConfig(c config.Config) merge.Config {
	cfg := merge.DefaultConfig()
	cfg.MergeDistanceThreshold = c.Processing.MergeDistanceThreshold
	cfg.IndentTolerance = c.Processing.IndentTolerance
	return cfg
}

func toStructureConfig(c config.Config) structure.Config {
	cfg := structure.DefaultConfig()
	cfg.ListIndentStep = c.Processing.ListIndentStep
	return cfg
}

func toOrderConfig(c config.Config) order.Config {
	return order.Config{
		RowBandTolerance: c.Processing.RowBandTolerance,
		MaxColumns:       c.Processing.MaxColumns,
	}
}

func toLanguageConfig(c config.Config) lang.Config {
	return lang.Config{
		MinimumTextLength:   c.LanguageDetection.MinimumTextLength,
		ConfidenceThreshold: c.LanguageDetection.ConfidenceThreshold,
	}
}

func toLLMConfig(c config.Config) llm.Config {
	return llm.Config{
		Enabled:              c.LLM.Enabled,
		PerElementRefinement: c.LLM.PerElementRefinement,
	}
}
