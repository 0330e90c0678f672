package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DavideDeMarchi/geodash/pkg/hierarchy"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// treeRow is one visible line of the explorer: a node plus its depth.
type treeRow struct {
	node  *hierarchy.Node
	depth int
}

// TreeModel is the bubbletea model for the interactive tree explorer.
// Rows reflect the open/closed state of each node; toggling a branch
// collapses or expands its subtree.
type TreeModel struct {
	Tree   *hierarchy.Tree
	Rows   []treeRow
	Cursor int
	Height int
	Offset int
}

// NewTreeModel creates a tree explorer model.
func NewTreeModel(t *hierarchy.Tree) TreeModel {
	m := TreeModel{
		Tree:   t,
		Height: 15,
	}
	m.Rows = visibleRows(t)
	return m
}

// visibleRows flattens the tree into display rows, descending only into
// open branches.
func visibleRows(t *hierarchy.Tree) []treeRow {
	var rows []treeRow
	var walk func(nodes []*hierarchy.Node, depth int)
	walk = func(nodes []*hierarchy.Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, treeRow{node: n, depth: depth})
			if n.Open {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(t.Roots, 0)
	return rows
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) > 0 {
				m.Tree.ToggleOpen(m.Rows[m.Cursor].node.Name)
				m.Rows = visibleRows(m.Tree)
				if m.Cursor >= len(m.Rows) {
					m.Cursor = len(m.Rows) - 1
				}
			}
		case " ":
			if len(m.Rows) > 0 {
				m.Tree.ToggleSelected(m.Rows[m.Cursor].node.Name)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Hierarchy Explorer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fold  ␣ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	sep := m.Tree.Separator()
	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]
		n := row.node

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		var marker string
		switch {
		case n.Leaf():
			marker = "· "
		case n.Open:
			marker = "▾ "
		default:
			marker = "▸ "
		}

		check := " "
		if n.Selected {
			check = listMarkedStyle.Render("✓")
		}

		label := n.Label(sep)
		line := fmt.Sprintf("%s%s%s%s %s %s",
			cursor,
			strings.Repeat("  ", row.depth),
			marker,
			label,
			listDimStyle.Render(fmt.Sprintf("%g", n.Value)),
			check)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.Selected:
			b.WriteString(listMarkedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}
