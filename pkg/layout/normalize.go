package layout

import "github.com/matzehuels/orthoflow/pkg/geom"

// normalize moves all geometry so its top-left extent sits at the padding
// and returns the canvas size, which leaves the same padding on the right
// and bottom.
func (s *scene) normalize() (width, height float64) {
	pad := s.opts.Padding

	var b geom.Bounds
	for _, n := range s.nodes {
		b.AddRect(n.Rect())
	}
	for _, g := range s.groups {
		b.AddRect(g.Rect())
	}
	for _, r := range s.routes {
		if r == nil {
			continue
		}
		for _, p := range r.edge.Points {
			b.AddPoint(p)
		}
		if lr, ok := r.edge.LabelRect(); ok {
			b.AddRect(lr)
		}
	}
	if b.Empty() {
		return 2 * pad, 2 * pad
	}

	dx, dy := pad-b.MinX, pad-b.MinY
	for _, n := range s.nodes {
		n.X += dx
		n.Y += dy
	}
	for _, g := range s.groups {
		g.X += dx
		g.Y += dy
	}
	for _, r := range s.routes {
		if r == nil {
			continue
		}
		for j := range r.edge.Points {
			r.edge.Points[j] = r.edge.Points[j].Add(dx, dy)
		}
		if lp := r.edge.LabelPosition; lp != nil {
			moved := lp.Add(dx, dy)
			r.edge.LabelPosition = &moved
		}
	}
	return b.MaxX + dx + pad, b.MaxY + dy + pad
}
