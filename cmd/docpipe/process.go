package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/docpipe/config"
	"github.com/tsawler/docpipe/internal/logging"
	"github.com/tsawler/docpipe/lang"
	"github.com/tsawler/docpipe/llm"
	"github.com/tsawler/docpipe/ocrsrc"
	"github.com/tsawler/docpipe/pipeline"
	"github.com/tsawler/docpipe/prompt"
)

func newProcessCmd() *cobra.Command {
	var (
		inputDir   string
		outputPath string
		pageRange  string
		ocrLang    string
		llmModel   string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "OCR a directory of page images and emit Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), inputDir, outputPath, pageRange, ocrLang, llmModel)
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "directory of rendered page images (required)")
	cmd.Flags().StringVar(&outputPath, "output", "-", "output Markdown file path, or - for stdout")
	cmd.Flags().StringVar(&pageRange, "pages", "all", "page selection (e.g. all, 1-5, 3,7,9-12, 4+, -10)")
	cmd.Flags().StringVar(&ocrLang, "ocr-language", "eng", "Tesseract language string passed to the OCR engine")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "Ollama model name; enables LLM refinement when set")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runProcess(ctx context.Context, inputDir, outputPath, pageRange, ocrLang, llmModel string) error {
	logger, err := logging.NewDevelopment()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	source, err := newImageDirSource(inputDir)
	if err != nil {
		return err
	}

	ocr, err := ocrsrc.NewTesseractSource(ocrsrc.TesseractConfig{Language: ocrLang})
	if err != nil {
		return fmt.Errorf("initializing OCR engine: %w", err)
	}
	defer ocr.Close()

	var client llm.Client
	var templates *prompt.Catalogue
	if llmModel != "" {
		cfg.LLM.Enabled = true
		cfg.LLM.Model = llmModel
		oc, err := llm.NewOllamaClient(llm.OllamaConfig{
			Model:          llmModel,
			RequestTimeout: time.Duration(cfg.LLM.RequestTimeoutSeconds) * time.Second,
		})
		if err != nil {
			logging.WithStage(logger, "llm").Warn("LLM client unavailable, continuing without refinement")
		} else {
			client = oc
			templates = prompt.New(prompt.Config{
				DefaultLanguage:  lang.English,
				FallbackLanguage: lang.English,
			})
		}
	}

	pipelineConfig := pipeline.Config{
		HeaderFooter: toHeaderFooterConfig(cfg),
		Dedup:        toDedupConfig(cfg),
		Merge:        toMergeConfig(cfg),
		Structure:    toStructureConfig(cfg),
		Order:        toOrderConfig(cfg),
		Language:     toLanguageConfig(cfg),
		LLM:          toLLMConfig(cfg),
	}

	p := pipeline.New(pipelineConfig, ocr, client, templates)

	result, warnings, err := p.ProcessDocument(ctx, source, pageRange)
	if err != nil {
		return fmt.Errorf("processing document: %w", err)
	}

	for _, w := range warnings {
		logging.WithStage(logger, "process").Warn(w.Error())
	}

	if outputPath == "-" {
		_, err = fmt.Fprint(os.Stdout, result.Markdown)
		return err
	}
	return os.WriteFile(outputPath, []byte(result.Markdown), 0o644)
}
