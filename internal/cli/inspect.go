package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoflow/pkg/graph"
)

// inspectHeaders are the columns of the element table.
var inspectHeaders = []string{"Kind", "ID", "Label", "Detail", "Box"}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect [layout.json|layout.msgpack]",
		Short: "Summarize a computed layout",
		Long: `Summarize a computed layout.

Prints the canvas size and a table of every node, group and edge with its
box. With --interactive, browse the elements in a terminal UI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := graph.ReadLayoutFile(args[0])
			if err != nil {
				return err
			}
			rows := layoutRows(l)
			if interactive {
				_, err := tea.NewProgram(NewLayoutBrowser(l, rows), tea.WithContext(cmd.Context())).Run()
				return err
			}
			printLayoutSummary(cmd.OutOrStdout(), l, rows)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse elements interactively")
	return cmd
}

// printLayoutSummary writes the canvas line and the element table.
func printLayoutSummary(w io.Writer, l *graph.Layout, rows []elementRow) {
	fmt.Fprintln(w, StyleTitle.Render("Layout"))
	fmt.Fprintln(w, summaryLine(l))
	fmt.Fprintln(w)

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.cells()
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(inspectHeaders...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})
	fmt.Fprintln(w, t.Render())
}

func summaryLine(l *graph.Layout) string {
	groups := 0
	for _, g := range l.Groups {
		g.Walk(func(*graph.PositionedGroup) { groups++ })
	}
	dir := string(l.Direction)
	if dir == "" {
		dir = string(graph.DirectionTD)
	}
	parts := []string{
		fmt.Sprintf("%s × %s", formatNum(l.Width), formatNum(l.Height)),
		dir,
		fmt.Sprintf("%d nodes", len(l.Nodes)),
		fmt.Sprintf("%d groups", groups),
		fmt.Sprintf("%d edges", len(l.Edges)),
	}
	return "  " + StyleDim.Render(strings.Join(parts, " · "))
}

// elementRow is one node, group or edge of a layout.
type elementRow struct {
	Kind   string
	ID     string
	Label  string
	Detail string
	X, Y   float64
	W, H   float64
	Depth  int
}

func (r elementRow) cells() []string {
	return []string{
		r.Kind,
		strings.Repeat("  ", r.Depth) + r.ID,
		r.Label,
		r.Detail,
		fmt.Sprintf("%s,%s %s×%s", formatNum(r.X), formatNum(r.Y), formatNum(r.W), formatNum(r.H)),
	}
}

// layoutRows lists groups (nested, parents first), then nodes, then edges.
func layoutRows(l *graph.Layout) []elementRow {
	var rows []elementRow

	var walk func(g *graph.PositionedGroup, depth int)
	walk = func(g *graph.PositionedGroup, depth int) {
		detail := ""
		if n := len(g.Children); n > 0 {
			detail = fmt.Sprintf("%d subgroups", n)
		}
		rows = append(rows, elementRow{
			Kind: "group", ID: g.ID, Label: g.Label, Detail: detail,
			X: g.X, Y: g.Y, W: g.Width, H: g.Height, Depth: depth,
		})
		for _, c := range g.Children {
			walk(c, depth+1)
		}
	}
	for _, g := range l.Groups {
		walk(g, 0)
	}

	for _, n := range l.Nodes {
		rows = append(rows, elementRow{
			Kind: "node", ID: n.ID, Label: n.Label, Detail: string(n.Shape),
			X: n.X, Y: n.Y, W: n.Width, H: n.Height,
		})
	}

	for _, e := range l.Edges {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range e.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		if len(e.Points) == 0 {
			minX, minY, maxX, maxY = 0, 0, 0, 0
		}
		rows = append(rows, elementRow{
			Kind:   "edge",
			ID:     e.Source + " → " + e.Target,
			Label:  e.Label,
			Detail: bendDetail(len(e.Points)),
			X:      minX, Y: minY, W: maxX - minX, H: maxY - minY,
		})
	}
	return rows
}

func bendDetail(points int) string {
	switch bends := points - 2; {
	case bends <= 0:
		return "straight"
	case bends == 1:
		return "1 bend"
	default:
		return fmt.Sprintf("%d bends", bends)
	}
}

// formatNum prints whole numbers without decimals and others with one.
func formatNum(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
