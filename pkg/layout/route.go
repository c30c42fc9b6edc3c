package layout

import (
	"math"

	"github.com/matzehuels/orthoflow/pkg/geom"
)

const eps = 1e-6

type axis int

const (
	axisNone axis = iota
	axisHorizontal
	axisVertical
)

func sameX(a, b geom.Point) bool { return math.Abs(a.X-b.X) <= eps }
func sameY(a, b geom.Point) bool { return math.Abs(a.Y-b.Y) <= eps }
func samePoint(a, b geom.Point) bool { return sameX(a, b) && sameY(a, b) }

// legAxis classifies the segment a→b. Diagonal segments report axisNone.
func legAxis(a, b geom.Point) axis {
	switch {
	case samePoint(a, b):
		return axisNone
	case sameX(a, b):
		return axisVertical
	case sameY(a, b):
		return axisHorizontal
	}
	return axisNone
}

// dominantAxis is legAxis that also classifies diagonals by their longer
// component.
func dominantAxis(a, b geom.Point) axis {
	if ax := legAxis(a, b); ax != axisNone {
		return ax
	}
	if math.Abs(b.Y-a.Y) >= math.Abs(b.X-a.X) {
		return axisVertical
	}
	return axisHorizontal
}

// bend returns the corner that turns q→p into two axis-aligned legs, the
// first one along first.
func bend(q, p geom.Point, first axis) geom.Point {
	if first == axisVertical {
		return geom.Point{X: q.X, Y: p.Y}
	}
	return geom.Point{X: p.X, Y: q.Y}
}

func perpendicular(a axis) axis {
	if a == axisVertical {
		return axisHorizontal
	}
	return axisVertical
}

// SnapToOrthogonal turns an arbitrary polyline into an axis-aligned one
// with the same endpoints. Every diagonal segment gets exactly one bend;
// its first leg runs perpendicular to the leg emitted before it, and the
// very first leg is vertical when verticalFirst is set. Duplicate and
// collinear points are dropped.
func SnapToOrthogonal(pts []geom.Point, verticalFirst bool) []geom.Point {
	if len(pts) < 2 {
		return append([]geom.Point(nil), pts...)
	}

	out := make([]geom.Point, 1, len(pts)*2)
	out[0] = pts[0]
	last := axisNone
	for _, p := range pts[1:] {
		q := out[len(out)-1]
		if ax := legAxis(q, p); ax != axisNone || samePoint(q, p) {
			if ax != axisNone {
				last = ax
			}
			out = append(out, p)
			continue
		}

		first := perpendicular(last)
		if last == axisNone {
			first = axisHorizontal
			if verticalFirst {
				first = axisVertical
			}
		}
		out = append(out, bend(q, p, first), p)
		last = perpendicular(first)
	}
	return simplify(out)
}

// simplify removes duplicate points and every interior point that is
// collinear with its neighbors, including reversals, until nothing
// changes. The endpoints are never removed.
func simplify(pts []geom.Point) []geom.Point {
	out := append([]geom.Point(nil), pts...)
	for changed := true; changed && len(out) > 2; {
		changed = false
		for i := 1; i < len(out)-1; i++ {
			a, b, c := out[i-1], out[i], out[i+1]
			dup := samePoint(a, b) || samePoint(b, c)
			straight := (sameX(a, b) && sameX(b, c)) || (sameY(a, b) && sameY(b, c))
			if dup || straight {
				out = append(out[:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}
	return out
}

// tidy makes a polyline orthogonal again after its endpoints or their
// neighbors moved. The first leg of a diagonal at the start runs along
// exit, the last leg of a diagonal at the end runs along entry, and
// diagonals in between turn perpendicular to the preceding leg.
func tidy(pts []geom.Point, exit, entry axis) []geom.Point {
	if len(pts) < 2 {
		return pts
	}
	out := make([]geom.Point, 1, len(pts)*2)
	out[0] = pts[0]
	last := axisNone
	for i := 1; i < len(pts); i++ {
		q, p := out[len(out)-1], pts[i]
		if ax := legAxis(q, p); ax != axisNone || samePoint(q, p) {
			if ax != axisNone {
				last = ax
			}
			out = append(out, p)
			continue
		}

		var first axis
		switch {
		case i == len(pts)-1:
			first = perpendicular(entry)
		case len(out) == 1:
			first = exit
		case last != axisNone:
			first = perpendicular(last)
		default:
			first = exit
		}
		out = append(out, bend(q, p, first), p)
		last = perpendicular(first)
	}
	return simplify(out)
}

// isUTurn reports whether b reverses direction between a and c on the
// same axis.
func isUTurn(a, b, c geom.Point) bool {
	if sameX(a, b) && sameX(b, c) {
		return (b.Y-a.Y)*(c.Y-b.Y) < 0
	}
	if sameY(a, b) && sameY(b, c) {
		return (b.X-a.X)*(c.X-b.X) < 0
	}
	return false
}
