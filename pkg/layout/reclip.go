package layout

import (
	"math"

	"github.com/matzehuels/orthoflow/pkg/geom"
	"github.com/matzehuels/orthoflow/pkg/shape"
)

// reclip re-attaches every route to the current outline of its real
// endpoints, looked up by identity.
func (s *scene) reclip() {
	for _, r := range s.routes {
		if r == nil {
			continue
		}
		sk, sb := s.box(r.from)
		tk, tb := s.box(r.to)
		if r.from == r.to {
			r.edge.Points = loopRoute(sk, sb)
			continue
		}
		r.edge.Points = reclipRoute(r.edge.Points, sk, sb, tk, tb, r.verticalFirst)
	}
}

func reclipRoute(pts []geom.Point, sk shape.Kind, sb geom.Rect, tk shape.Kind, tb geom.Rect, vertical bool) []geom.Point {
	pts = simplify(pts)
	for len(pts) > 2 && inside(sb, pts[1]) {
		pts = pts[1:]
	}
	for len(pts) > 2 && inside(tb, pts[len(pts)-2]) {
		pts = pts[:len(pts)-1]
	}
	if len(pts) == 2 {
		if p, q, ok := straight(pts[0], pts[1], sk, sb, tk, tb); ok {
			return []geom.Point{p, q}
		}
		pts = zRoute(sb.Center(), tb.Center(), vertical)
	}

	n := len(pts)
	exit := attach(pts, 0, 1, sk, sb)
	entry := attach(pts, n-1, n-2, tk, tb)
	return tidy(pts, exit, entry)
}

// inside reports whether p lies strictly inside box.
func inside(box geom.Rect, p geom.Point) bool {
	return p.X > box.X+eps && p.X < box.Right()-eps && p.Y > box.Y+eps && p.Y < box.Bottom()-eps
}

// project is shape.Project restricted to lines that stay clear of the
// corners of box.
func project(k shape.Kind, box geom.Rect, from geom.Point, vertical bool) (geom.Point, bool) {
	c := box.Center()
	off, half := math.Abs(from.X-c.X), box.Width/2
	if !vertical {
		off, half = math.Abs(from.Y-c.Y), box.Height/2
	}
	if off > half-math.Min(4, half/4) {
		return geom.Point{}, false
	}
	return shape.Project(k, box, from, vertical)
}

// straight re-attaches a single axis-aligned segment p→q to both outlines
// along its own line. It fails when the line misses either outline or
// the result would no longer point from source to target.
func straight(p, q geom.Point, sk shape.Kind, sb geom.Rect, tk shape.Kind, tb geom.Rect) (geom.Point, geom.Point, bool) {
	ax := legAxis(p, q)
	if ax == axisNone {
		return p, q, false
	}
	vertical := ax == axisVertical

	towardTarget, towardSource := geom.Point{X: tb.CenterX(), Y: p.Y}, geom.Point{X: sb.CenterX(), Y: q.Y}
	if vertical {
		towardTarget, towardSource = geom.Point{X: p.X, Y: tb.CenterY()}, geom.Point{X: q.X, Y: sb.CenterY()}
	}
	a, ok := project(sk, sb, towardTarget, vertical)
	if !ok {
		return p, q, false
	}
	b, ok := project(tk, tb, towardSource, vertical)
	if !ok {
		return p, q, false
	}

	before, after := q.X-p.X, b.X-a.X
	if vertical {
		before, after = q.Y-p.Y, b.Y-a.Y
	}
	if after == 0 || (before > 0) != (after > 0) {
		return p, q, false
	}
	return a, b, true
}

// zRoute connects two centers with a vertical-horizontal-vertical path
// (horizontal-vertical-horizontal when not vertical), bending halfway.
func zRoute(a, b geom.Point, vertical bool) []geom.Point {
	if vertical {
		mid := (a.Y + b.Y) / 2
		return []geom.Point{a, {X: a.X, Y: mid}, {X: b.X, Y: mid}, b}
	}
	mid := (a.X + b.X) / 2
	return []geom.Point{a, {X: mid, Y: a.Y}, {X: mid, Y: b.Y}, b}
}

// attach moves pts[end] onto the outline, approaching from pts[adj] along
// the dominant axis of that leg, or across it when that line misses. When
// both miss, pts[adj] slides onto the line through the center first. It
// returns the approach axis.
func attach(pts []geom.Point, end, adj int, k shape.Kind, box geom.Rect) axis {
	p := pts[adj]
	ax := dominantAxis(p, pts[end])
	vertical := ax == axisVertical

	if q, ok := project(k, box, p, vertical); ok {
		pts[end] = q
		return ax
	}
	if q, ok := project(k, box, p, !vertical); ok {
		pts[end] = q
		return perpendicular(ax)
	}

	c := box.Center()
	if vertical {
		p.X = c.X
	} else {
		p.Y = c.Y
	}
	q, _ := shape.Project(k, box, p, vertical)
	pts[adj], pts[end] = p, q
	return ax
}

// loopRoute draws a self-loop out of the right side of box and back.
func loopRoute(k shape.Kind, box geom.Rect) []geom.Point {
	x := box.Right() + loopReach
	c := box.Center()
	a, _ := shape.Project(k, box, geom.Point{X: x, Y: c.Y - box.Height/4}, false)
	b, _ := shape.Project(k, box, geom.Point{X: x, Y: c.Y + box.Height/4}, false)
	return []geom.Point{a, {X: x, Y: a.Y}, {X: x, Y: b.Y}, b}
}
