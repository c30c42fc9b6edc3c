package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orthoflow/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// kindFilters cycles with tab.
var kindFilters = []string{"", "node", "group", "edge"}

// =============================================================================
// LayoutBrowser - Interactive layout inspection
// =============================================================================

// LayoutBrowser is the bubbletea model behind inspect --interactive.
type LayoutBrowser struct {
	Layout  *graph.Layout
	Rows    []elementRow
	Visible []int // indexes into Rows after filtering
	Filter  int   // index into kindFilters
	Cursor  int
	Offset  int
	Height  int
}

// NewLayoutBrowser creates a browser over rows.
func NewLayoutBrowser(l *graph.Layout, rows []elementRow) LayoutBrowser {
	m := LayoutBrowser{Layout: l, Rows: rows, Height: 15}
	m.applyFilter()
	return m
}

func (m *LayoutBrowser) applyFilter() {
	kind := kindFilters[m.Filter]
	m.Visible = nil
	for i, r := range m.Rows {
		if kind == "" || r.Kind == kind {
			m.Visible = append(m.Visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m LayoutBrowser) Init() tea.Cmd {
	return nil
}

func (m LayoutBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Visible); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		case "tab":
			m.Filter = (m.Filter + 1) % len(kindFilters)
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

// Selected returns the row under the cursor.
func (m LayoutBrowser) Selected() (elementRow, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return elementRow{}, false
	}
	return m.Rows[m.Visible[m.Cursor]], true
}

func (m LayoutBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout"))
	b.WriteString(summaryLine(m.Layout))
	b.WriteString("\n")
	filter := kindFilters[m.Filter]
	if filter == "" {
		filter = "all"
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  tab filter (%s)  q quit", filter)))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Visible))
	for i := m.Offset; i < end; i++ {
		r := m.Rows[m.Visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-6s %s", cursor, r.Kind, strings.Repeat("  ", r.Depth)+r.ID)
		if r.Label != "" && r.Label != r.ID {
			line += listDimStyle.Render("  " + r.Label)
		}
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if r, ok := m.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(detailBoxStyle.Render(rowDetail(r)))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Visible)), len(m.Visible))))
	return b.String()
}

func rowDetail(r elementRow) string {
	c := r.cells()
	lines := make([]string, 0, len(inspectHeaders))
	for i, h := range inspectHeaders {
		v := strings.TrimSpace(c[i])
		if v == "" {
			continue
		}
		lines = append(lines, StyleDim.Render(fmt.Sprintf("%-7s", h))+" "+StyleValue.Render(v))
	}
	return strings.Join(lines, "\n")
}
