// Command docpipe drives the OCR-to-Markdown pipeline from the command
// line: a thin cobra CLI that wires config, logging, OCR, and the
// optional LLM refinement client, then delegates to package pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docpipe",
		Short: "Convert a scanned document's page images into structured Markdown",
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	root.AddCommand(newProcessCmd())
	return root
}
