package layout

import (
	"math"

	"github.com/matzehuels/orthoflow/pkg/geom"
)

// resnap makes every route orthogonal again after the shifting passes
// moved some of its points but not others.
func (s *scene) resnap() {
	for _, r := range s.routes {
		if r != nil {
			r.edge.Points = SnapToOrthogonal(r.edge.Points, r.verticalFirst)
		}
	}
}

func (s *scene) fixBends() {
	for _, r := range s.routes {
		if r != nil {
			fixTerminalBends(r.edge.Points, r.verticalFirst)
		}
	}
}

func isHorizontal(a, b geom.Point) bool {
	return math.Abs(a.Y-b.Y) < bendTolerance && math.Abs(a.X-b.X) >= bendTolerance
}

func isVertical(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < bendTolerance && math.Abs(a.Y-b.Y) >= bendTolerance
}

// fixTerminalBends flips an L-bend at either end of pts whose terminal
// leg runs across the flow: in a vertical flow the first and last legs
// should be vertical, in a horizontal flow horizontal. The source end is
// only touched when the route has a leg between the two terminal bends,
// so the two fixes never fight over the same point.
func fixTerminalBends(pts []geom.Point, vertical bool) {
	n := len(pts)
	if n < 3 {
		return
	}

	a, b, c := pts[n-3], pts[n-2], pts[n-1]
	switch {
	case vertical && isHorizontal(b, c) && isVertical(a, b):
		pts[n-2] = geom.Point{X: c.X, Y: a.Y}
	case !vertical && isVertical(b, c) && isHorizontal(a, b):
		pts[n-2] = geom.Point{X: a.X, Y: c.Y}
	}

	if n < 4 {
		return
	}
	a, b, c = pts[0], pts[1], pts[2]
	switch {
	case vertical && isHorizontal(a, b) && isVertical(b, c):
		pts[1] = geom.Point{X: a.X, Y: c.Y}
	case !vertical && isVertical(a, b) && isHorizontal(b, c):
		pts[1] = geom.Point{X: c.X, Y: a.Y}
	}
}
