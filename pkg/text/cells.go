package text

import "github.com/mattn/go-runewidth"

// cellEm is the width of one terminal cell as a fraction of the font size.
const cellEm = 0.6

// boldCellEm widens cells slightly for heavy weights.
const boldCellEm = 0.65

// CellMeasurer estimates widths by counting East Asian aware terminal
// cells. Wide runes count twice, combining marks not at all.
type CellMeasurer struct{}

// Width returns the cell count of s scaled to the font size.
func (CellMeasurer) Width(s string, size float64, weight int) float64 {
	em := cellEm
	if weight >= WeightBold {
		em = boldCellEm
	}
	return float64(runewidth.StringWidth(s)) * size * em
}
