// Package geometry provides normalized bounding-box types and the
// geometric predicates the layout stages build on. All coordinates are
// normalized to [0,1] with the origin at the top-left of the page;
// callers must not assume knowledge of absolute page dimensions.
package geometry

import "math"

// Box is a normalized bounding box: (X, Y) is the top-left corner,
// Width and Height extend right and down. All four fields are expected
// to lie in [0,1] with Y+Height <= 1 and X+Width <= 1.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// New builds a Box from its normalized components.
func New(x, y, width, height float64) Box {
	return Box{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate.
func (b Box) Left() float64 { return b.X }

// Right returns the right edge X coordinate.
func (b Box) Right() float64 { return b.X + b.Width }

// Top returns the top edge Y coordinate.
func (b Box) Top() float64 { return b.Y }

// Bottom returns the bottom edge Y coordinate.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// Valid reports whether the box satisfies the normalized-coordinate
// invariants: 0 <= y <= y+height <= 1 (and analogously for x), with
// positive width and height.
func (b Box) Valid() bool {
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}
	if b.X < 0 || b.Right() > 1+1e-9 {
		return false
	}
	if b.Y < 0 || b.Top()+b.Height > 1+1e-9 {
		return false
	}
	return true
}

func (b Box) area() float64 { return b.Width * b.Height }

func (b Box) intersects(o Box) bool {
	return !(b.Right() < o.Left() || b.Left() > o.Right() ||
		b.Bottom() < o.Top() || b.Top() > o.Bottom())
}

func (b Box) intersection(o Box) Box {
	if !b.intersects(o) {
		return Box{}
	}
	x := math.Max(b.Left(), o.Left())
	y := math.Max(b.Top(), o.Top())
	right := math.Min(b.Right(), o.Right())
	bottom := math.Min(b.Bottom(), o.Bottom())
	return Box{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	x := math.Min(b.Left(), o.Left())
	y := math.Min(b.Top(), o.Top())
	right := math.Max(b.Right(), o.Right())
	bottom := math.Max(b.Bottom(), o.Bottom())
	return Box{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// IntersectionOverUnion returns the IoU of a and b in [0,1].
func IntersectionOverUnion(a, b Box) float64 {
	if !a.intersects(b) {
		return 0
	}
	inter := a.intersection(b).area()
	union := a.area() + b.area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// VerticalGap returns the signed distance between the nearest vertical
// edges of a and b: positive when b starts below a ends, negative when
// the boxes overlap vertically. a is assumed to be the upper element in
// reading order.
func VerticalGap(a, b Box) float64 {
	return b.Top() - a.Bottom()
}

// HorizontalOverlapRatio returns the horizontal overlap between a and b
// as a fraction of the narrower box's width.
func HorizontalOverlapRatio(a, b Box) float64 {
	left := math.Max(a.Left(), b.Left())
	right := math.Min(a.Right(), b.Right())
	overlap := right - left
	if overlap <= 0 {
		return 0
	}
	minWidth := math.Min(a.Width, b.Width)
	if minWidth <= 0 {
		return 0
	}
	return overlap / minWidth
}

// InRegion reports whether box's vertical center falls within the
// closed interval [regionTop, regionBottom] of normalized Y.
func InRegion(box Box, regionTop, regionBottom float64) bool {
	cy := box.CenterY()
	return cy >= regionTop && cy <= regionBottom
}
