package layout

import (
	"math"

	"github.com/matzehuels/orthoflow/pkg/shape"
	"github.com/matzehuels/orthoflow/pkg/text"
)

// NodeSize returns the box of a node with the given label and shape.
//
// The padded text block is widest line + 2×NodePadX by lines×line height
// + 2×NodePadY, with the vertical padding scaled by 1.5 past two lines.
// The shape then adjusts it (see shape.Size).
func NodeSize(m text.Measurer, label string, k shape.Kind, wrapWidth float64) (w, h float64) {
	lines, widest := text.Block(m, label, NodeFontSize, NodeFontWeight, wrapWidth)
	padY := NodePadY
	if len(lines) > 2 {
		padY *= 1.5
	}
	w = widest + 2*NodePadX
	h = float64(len(lines))*NodeFontSize*LineHeight + 2*padY
	return shape.Size(k, w, h, shape.Metrics{PadX: NodePadX, DiamondExtra: DiamondExtra})
}

// EdgeLabelSize returns the box reserved for an edge label.
func EdgeLabelSize(m text.Measurer, label string, wrapWidth float64) (w, h float64) {
	lines, widest := text.Block(m, label, EdgeFontSize, EdgeFontWeight, wrapWidth)
	return widest + EdgeLabelPadX, float64(len(lines))*EdgeFontSize*LineHeight + EdgeLabelPadY
}

// HeaderWidth returns the width a group needs to show its label.
func HeaderWidth(m text.Measurer, label string) float64 {
	var widest float64
	for _, l := range text.Lines(label) {
		widest = math.Max(widest, m.Width(l, HeaderFontSize, HeaderFontWeight))
	}
	return widest + 2*ContentPad
}
