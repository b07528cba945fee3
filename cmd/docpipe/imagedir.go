package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// imageDirSource implements pipeline.DocumentSource over a directory of
// pre-rendered page images, named so lexical sort order matches page
// order (e.g. page-0001.png, page-0002.png). Rasterizing a source PDF
// into that directory is an external concern the pipeline deliberately
// leaves to the caller.
type imageDirSource struct {
	dir   string
	pages []string
}

func newImageDirSource(dir string) (*imageDirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading page image directory: %w", err)
	}

	var pages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
			pages = append(pages, entry.Name())
		}
	}
	sort.Strings(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page images found in %s", dir)
	}
	return &imageDirSource{dir: dir, pages: pages}, nil
}

func (s *imageDirSource) PageCount(ctx context.Context) (int, error) {
	return len(s.pages), nil
}

func (s *imageDirSource) PageImage(ctx context.Context, pageNumber int) ([]byte, error) {
	if pageNumber < 1 || pageNumber > len(s.pages) {
		return nil, fmt.Errorf("page %d out of range [1,%d]", pageNumber, len(s.pages))
	}
	return os.ReadFile(filepath.Join(s.dir, s.pages[pageNumber-1]))
}
