// Package shape defines the closed set of node outlines understood by the
// layout compiler.
//
// Each variant contributes two behaviors through a dispatch table:
//
//   - a sizing adjustment applied to the padded label box
//   - a boundary clip that moves a point onto the outline
//
// Rectangular variants clip as identity: the layered primitive already
// attaches edges to the bounding box, which is the outline itself.
package shape

import (
	"math"

	"github.com/matzehuels/orthoflow/pkg/geom"
)

// Kind names a node outline.
type Kind string

// Supported outlines.
const (
	Rectangle    Kind = "rectangle"
	Rounded      Kind = "rounded"
	Stadium      Kind = "stadium"
	Subroutine   Kind = "subroutine"
	Diamond      Kind = "diamond"
	Circle       Kind = "circle"
	DoubleCircle Kind = "doublecircle"
	Hexagon      Kind = "hexagon"
	Trapezoid    Kind = "trapezoid"
	TrapezoidAlt Kind = "trapezoid-alt"
	Asymmetric   Kind = "asymmetric"
	Cylinder     Kind = "cylinder"
	StateStart   Kind = "state-start"
	StateEnd     Kind = "state-end"
)

// Size limits shared by all variants.
const (
	MinWidth  = 60.0
	MinHeight = 36.0
	StateSize = 28.0

	circleExtra       = 8.0
	doubleCircleExtra = 12.0
	asymmetricExtra   = 12.0
	cylinderExtra     = 14.0
)

// Metrics carries the padding values some variants scale by.
type Metrics struct {
	PadX         float64
	DiamondExtra float64
}

type variant struct {
	rectangular bool
	fixed       bool
	adjust      func(w, h float64, m Metrics) (float64, float64)
	clip        func(p geom.Point, box geom.Rect) geom.Point
}

func identity(w, h float64, _ Metrics) (float64, float64) { return w, h }

func clipNone(p geom.Point, _ geom.Rect) geom.Point { return p }

func clipDiamond(p geom.Point, box geom.Rect) geom.Point {
	return ClipToDiamond(p, box.Center(), box.Width/2, box.Height/2)
}

func clipCircle(p geom.Point, box geom.Rect) geom.Point {
	return ClipToCircle(p, box.Center(), math.Min(box.Width, box.Height)/2)
}

func circleSize(extra float64) func(w, h float64, _ Metrics) (float64, float64) {
	return func(w, h float64, _ Metrics) (float64, float64) {
		d := math.Ceil(math.Sqrt(w*w+h*h)) + circleExtra + extra
		return d, d
	}
}

var variants = map[Kind]variant{
	Rectangle:  {rectangular: true, adjust: identity, clip: clipNone},
	Rounded:    {rectangular: true, adjust: identity, clip: clipNone},
	Stadium:    {rectangular: true, adjust: identity, clip: clipNone},
	Subroutine: {rectangular: true, adjust: identity, clip: clipNone},
	Diamond: {
		adjust: func(w, h float64, m Metrics) (float64, float64) {
			side := math.Max(w, h) + m.DiamondExtra
			return side, side
		},
		clip: clipDiamond,
	},
	Circle:       {adjust: circleSize(0), clip: clipCircle},
	DoubleCircle: {adjust: circleSize(doubleCircleExtra), clip: clipCircle},
	Hexagon: {
		rectangular: true,
		adjust:      func(w, h float64, m Metrics) (float64, float64) { return w + m.PadX, h },
		clip:        clipNone,
	},
	Trapezoid: {
		rectangular: true,
		adjust:      func(w, h float64, m Metrics) (float64, float64) { return w + m.PadX, h },
		clip:        clipNone,
	},
	TrapezoidAlt: {
		rectangular: true,
		adjust:      func(w, h float64, m Metrics) (float64, float64) { return w + m.PadX, h },
		clip:        clipNone,
	},
	Asymmetric: {
		rectangular: true,
		adjust:      func(w, h float64, _ Metrics) (float64, float64) { return w + asymmetricExtra, h },
		clip:        clipNone,
	},
	Cylinder: {
		rectangular: true,
		adjust:      func(w, h float64, _ Metrics) (float64, float64) { return w, h + cylinderExtra },
		clip:        clipNone,
	},
	StateStart: {fixed: true, adjust: identity, clip: clipCircle},
	StateEnd:   {fixed: true, adjust: identity, clip: clipCircle},
}

var aliases = map[string]Kind{
	"":              Rectangle,
	"rect":          Rectangle,
	"square":        Rectangle,
	"round":         Rounded,
	"pill":          Stadium,
	"rhombus":       Diamond,
	"decision":      Diamond,
	"double-circle": DoubleCircle,
	"hex":           Hexagon,
	"trap":          Trapezoid,
	"inv-trapezoid": TrapezoidAlt,
	"flag":          Asymmetric,
	"database":      Cylinder,
	"start":         StateStart,
	"end":           StateEnd,
}

// Parse resolves a shape name, accepting a few common aliases.
// The empty string maps to Rectangle.
func Parse(s string) (Kind, bool) {
	k := Kind(s)
	if _, ok := variants[k]; ok {
		return k, true
	}
	if k, ok := aliases[s]; ok {
		return k, true
	}
	return Rectangle, false
}

// Valid reports whether k is a known variant.
func (k Kind) Valid() bool {
	_, ok := variants[k]
	return ok
}

// Rectangular reports whether the outline fills its bounding box closely
// enough that edges attach to the box itself. Unknown kinds are treated
// as rectangles.
func (k Kind) Rectangular() bool {
	v, ok := variants[k]
	return !ok || v.rectangular
}

// Size turns a padded label box into the node box for kind k.
// State markers have a fixed size; every other kind is clamped to the
// minimum node size.
func Size(k Kind, w, h float64, m Metrics) (float64, float64) {
	v, ok := variants[k]
	if !ok {
		v = variants[Rectangle]
	}
	if v.fixed {
		return StateSize, StateSize
	}
	w, h = v.adjust(w, h, m)
	return math.Max(w, MinWidth), math.Max(h, MinHeight)
}

// Clip moves p onto the outline of a node of kind k occupying box.
// For rectangular kinds p is returned unchanged.
func Clip(k Kind, p geom.Point, box geom.Rect) geom.Point {
	v, ok := variants[k]
	if !ok {
		return p
	}
	return v.clip(p, box)
}

// ClipToDiamond returns the point where the ray from c toward p crosses
// the diamond with half-width hw and half-height hh. When p equals c the
// top vertex is returned.
func ClipToDiamond(p, c geom.Point, hw, hh float64) geom.Point {
	dx, dy := p.X-c.X, p.Y-c.Y
	if dx == 0 && dy == 0 || hw <= 0 || hh <= 0 {
		return geom.Point{X: c.X, Y: c.Y - hh}
	}
	t := 1 / (math.Abs(dx)/hw + math.Abs(dy)/hh)
	return geom.Point{X: c.X + t*dx, Y: c.Y + t*dy}
}

// ClipToCircle returns the point at distance r from c in the direction of
// p. When p equals c the top of the circle is returned.
func ClipToCircle(p, c geom.Point, r float64) geom.Point {
	dx, dy := p.X-c.X, p.Y-c.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return geom.Point{X: c.X, Y: c.Y - r}
	}
	return geom.Point{X: c.X + r*dx/d, Y: c.Y + r*dy/d}
}

// Project slides along an axis-aligned line through from until it meets
// the outline of a node of kind k on the side facing from. With vertical
// set the line is x = from.X, otherwise y = from.Y. It reports false when
// the line misses the outline.
func Project(k Kind, box geom.Rect, from geom.Point, vertical bool) (geom.Point, bool) {
	c := box.Center()
	hw, hh := box.Width/2, box.Height/2

	// offset is the distance of the line from the center along the
	// perpendicular axis; reach is how far the outline extends from the
	// center along the line at that offset.
	offset, half, otherHalf := from.X-c.X, hw, hh
	if !vertical {
		offset, half, otherHalf = from.Y-c.Y, hh, hw
	}
	a := math.Abs(offset)

	var reach float64
	switch {
	case k == Diamond:
		if a > half {
			return geom.Point{}, false
		}
		reach = otherHalf * (1 - a/half)
	case !k.Rectangular():
		r := math.Min(hw, hh)
		if a > r {
			return geom.Point{}, false
		}
		reach = math.Sqrt(r*r - a*a)
	default:
		if a > half {
			return geom.Point{}, false
		}
		reach = otherHalf
	}

	if vertical {
		if from.Y < c.Y {
			return geom.Point{X: from.X, Y: c.Y - reach}, true
		}
		return geom.Point{X: from.X, Y: c.Y + reach}, true
	}
	if from.X < c.X {
		return geom.Point{X: c.X - reach, Y: from.Y}, true
	}
	return geom.Point{X: c.X + reach, Y: from.Y}, true
}

// OnOutline reports whether p lies on the outline of a node of kind k
// occupying box, within tol.
func OnOutline(k Kind, box geom.Rect, p geom.Point, tol float64) bool {
	c := box.Center()
	hw, hh := box.Width/2, box.Height/2
	dx, dy := math.Abs(p.X-c.X), math.Abs(p.Y-c.Y)
	switch {
	case k == Diamond:
		if hw <= 0 || hh <= 0 {
			return false
		}
		// Scale the residual back to pixels along the steeper axis.
		return math.Abs(dx/hw+dy/hh-1)*math.Min(hw, hh) <= tol
	case !k.Rectangular():
		return math.Abs(math.Hypot(dx, dy)-math.Min(hw, hh)) <= tol
	default:
		inX := dx <= hw+tol
		inY := dy <= hh+tol
		onX := math.Abs(dx-hw) <= tol
		onY := math.Abs(dy-hh) <= tol
		return (onX && inY) || (onY && inX)
	}
}
