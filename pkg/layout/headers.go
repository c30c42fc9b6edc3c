package layout

import (
	"math"

	"github.com/matzehuels/orthoflow/pkg/geom"
	"github.com/matzehuels/orthoflow/pkg/graph"
)

// expandHeaders grows every group so it encloses its content with padding
// and, when labeled, a header band above the content. Children are
// processed before their parent so the parent sees their final size.
func (s *scene) expandHeaders() {
	for _, grp := range s.ix.g.Groups {
		s.expandHeader(grp)
	}
}

func (s *scene) expandHeader(grp *graph.Group) {
	for _, c := range grp.Groups {
		s.expandHeader(c)
	}
	s.refit(grp)
}

// refit grows grp's box to cover its member nodes and child groups plus
// ContentPad on the left, right and bottom, and above them either
// ContentPad or, for labeled groups, the header band and HeaderPad.
// The box never shrinks.
func (s *scene) refit(grp *graph.Group) {
	pg := s.groups[grp.ID]
	want := pg.Rect()

	if content, ok := s.contentBox(grp); ok {
		top := ContentPad
		if grp.Label != "" {
			top = HeaderHeight + HeaderPad
		}
		want = geom.Rect{
			X:      content.X - ContentPad,
			Y:      content.Y - top,
			Width:  content.Width + 2*ContentPad,
			Height: content.Height + top + ContentPad,
		}
	}
	want.Width = math.Max(want.Width, s.headerWidth(grp))

	pg.SetRect(pg.Rect().Union(want))
}
