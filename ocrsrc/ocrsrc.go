// Package ocrsrc defines the inbound OCR adapter boundary (spec.md §6
// "OCR adapter") and a Tesseract-backed implementation, adapted from
// the teacher's ocr.Client, which wraps the same gosseract.Client but
// only ever returned a single flat Text() string. This package adds
// the per-word bounding-box extraction the pipeline's element model
// requires, via gosseract's word-level bounding box API.
package ocrsrc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/docpipe/docerr"
)

// TypeHint is the coarse element-type signal an OCR source can provide
// per observation, per spec.md §6.
type TypeHint int

const (
	HintUnknown TypeHint = iota
	HintText
	HintImage
	HintBarcode
	HintTable
)

// Observation is one raw OCR reading: a positioned, typed, confidence-
// scored text fragment, as consumed by the pipeline to build elements.
type Observation struct {
	X, Y, Width, Height float64 // normalized to [0,1]
	Text                string
	Confidence          float64 // [0,1]
	Hint                TypeHint
	PageNumber          int
	InsertionIndex      int
}

// Source is the inbound OCR adapter contract: given a rendered page
// image and its page number, produce the page's observations in
// insertion order.
type Source interface {
	Observe(ctx context.Context, pageImage []byte, pageNumber int) ([]Observation, error)
	Close() error
}

// TesseractSource adapts a Tesseract engine (via gosseract) to Source.
type TesseractSource struct {
	client  *gosseract.Client
	counter int
}

// TesseractConfig configures a TesseractSource.
type TesseractConfig struct {
	// Language is the Tesseract language string (e.g. "eng", "eng+fra").
	// Defaults to "eng".
	Language string
}

// NewTesseractSource creates a Tesseract-backed Source. The caller must
// Close it to release the underlying Tesseract engine.
func NewTesseractSource(config TesseractConfig) (*TesseractSource, error) {
	client := gosseract.NewClient()
	lang := config.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrDocumentLoadFailed, err)
	}
	return &TesseractSource{client: client}, nil
}

// Close releases the underlying Tesseract engine.
func (s *TesseractSource) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Observe runs word-level OCR over pageImage and returns one
// Observation per recognized word, with bounding boxes normalized to
// [0,1] against the image's own pixel dimensions.
func (s *TesseractSource) Observe(ctx context.Context, pageImage []byte, pageNumber int) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrCancelled, err)
	}
	if err := s.client.SetImageFromBytes(pageImage); err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrDocumentLoadFailed, err)
	}

	boxes, err := s.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrDocumentLoadFailed, err)
	}

	pageWidth, pageHeight, err := imageDimensions(pageImage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrDocumentLoadFailed, err)
	}

	observations := make([]Observation, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		observations = append(observations, Observation{
			X:              float64(box.Box.Min.X) / pageWidth,
			Y:              float64(box.Box.Min.Y) / pageHeight,
			Width:          float64(box.Box.Dx()) / pageWidth,
			Height:         float64(box.Box.Dy()) / pageHeight,
			Text:           text,
			Confidence:     box.Confidence / 100.0,
			Hint:           HintText,
			PageNumber:     pageNumber,
			InsertionIndex: s.counter,
		})
		s.counter++
	}
	return observations, nil
}

// imageDimensions sniffs the pixel width/height of an encoded image
// without fully decoding it, used only to normalize Tesseract's
// pixel-space bounding boxes into [0,1].
func imageDimensions(data []byte) (width, height float64, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}
