// Package headerfooter performs purely geometric classification of
// elements into header/footer region candidates (spec.md §4.4). It does
// not decide which candidates are actually repeated boilerplate — that
// decision belongs to package dedup, which consumes the region tags
// this package attaches.
package headerfooter

import (
	"github.com/tsawler/docpipe/element"
	"github.com/tsawler/docpipe/geometry"
)

// Region names written to element.MetaRegion.
const (
	RegionHeader = "header"
	RegionFooter = "footer"
)

// Config holds the normalized y-interval bounds for header/footer
// regions, per spec.md §6 processing config.
type Config struct {
	// HeaderRegion is a closed [top, bottom] interval in [0,1].
	HeaderRegion [2]float64
	// FooterRegion is a closed [top, bottom] interval in [0,1].
	FooterRegion [2]float64
}

// DefaultConfig returns the spec.md §6 defaults: header [0, 0.08],
// footer [0.92, 1.0].
func DefaultConfig() Config {
	return Config{
		HeaderRegion: [2]float64{0.0, 0.08},
		FooterRegion: [2]float64{0.92, 1.0},
	}
}

// Classifier tags elements whose bounding box falls in a header or
// footer region, grounded on the geometric portion of the teacher's
// HeaderFooterDetector (the repetition-based portion moves to dedup).
type Classifier struct {
	config Config
}

// New builds a Classifier with the given config.
func New(config Config) *Classifier {
	return &Classifier{config: config}
}

// Classify returns a copy of els with MetaRegion set on any element
// whose bounding-box center-y falls within the configured header or
// footer interval. Elements outside both regions are returned
// unmodified.
func (c *Classifier) Classify(els []element.Element) []element.Element {
	out := make([]element.Element, len(els))
	for i, el := range els {
		if geometry.InRegion(el.BoundingBox, c.config.HeaderRegion[0], c.config.HeaderRegion[1]) {
			out[i] = el.WithMetadata(element.MetaRegion, RegionHeader)
			continue
		}
		if geometry.InRegion(el.BoundingBox, c.config.FooterRegion[0], c.config.FooterRegion[1]) {
			out[i] = el.WithMetadata(element.MetaRegion, RegionFooter)
			continue
		}
		out[i] = el
	}
	return out
}
