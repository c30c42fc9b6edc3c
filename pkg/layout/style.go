package layout

import "github.com/matzehuels/orthoflow/pkg/text"

// Typography and spacing shared by sizing and the geometry passes.
const (
	NodeFontSize   = 13.0
	NodeFontWeight = text.WeightMedium

	EdgeFontSize   = 11.0
	EdgeFontWeight = text.WeightRegular

	HeaderFontSize   = 12.0
	HeaderFontWeight = text.WeightBold

	LineHeight = 1.3

	NodePadX     = 20.0
	NodePadY     = 10.0
	DiamondExtra = 24.0

	EdgeLabelPadX = 8.0
	EdgeLabelPadY = 6.0

	// HeaderHeight is the band above a labeled group's content.
	HeaderHeight = HeaderFontSize + 16
	// HeaderPad separates the header band from the content.
	HeaderPad = 8.0
	// ContentPad is the margin between a group's border and its content.
	ContentPad = 12.0
	// MinGap is the smallest vertical distance between siblings.
	MinGap = 8.0

	islandMarginX = 16.0
	islandMarginY = 12.0
	loopReach     = 20.0
	bendTolerance = 2.0
)
