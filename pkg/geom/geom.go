// Package geom provides the small set of value types shared by the layout
// passes: points and axis-aligned rectangles in a y-down pixel space.
package geom

import "math"

// Point is a position in canvas pixels. Y grows downward.
type Point struct {
	X float64 `json:"x" msgpack:"x" yaml:"x"`
	Y float64 `json:"y" msgpack:"y" yaml:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an axis-aligned box given by its top-left corner and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// RectFromCenter builds a rectangle of size w×h centered on c.
func RectFromCenter(c Point, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// OverlapsX reports whether the horizontal spans of r and o intersect.
// Touching edges do not count as overlap.
func (r Rect) OverlapsX(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right()
}

// Union returns the smallest rectangle enclosing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.Right(), o.Right())
	maxY := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Bounds accumulates the extent of a set of boxes and points.
// The zero value is empty.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
	set                    bool
}

// AddPoint extends b to include p.
func (b *Bounds) AddPoint(p Point) {
	if !b.set {
		b.MinX, b.MaxX, b.MinY, b.MaxY = p.X, p.X, p.Y, p.Y
		b.set = true
		return
	}
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// AddRect extends b to include r.
func (b *Bounds) AddRect(r Rect) {
	b.AddPoint(Point{X: r.X, Y: r.Y})
	b.AddPoint(Point{X: r.Right(), Y: r.Bottom()})
}

// Empty reports whether nothing has been added.
func (b *Bounds) Empty() bool { return !b.set }
