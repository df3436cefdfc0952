package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pretree/pkg/basic"
)

// Tree browser styles
var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseKeyStyle      = lipgloss.NewStyle().Foreground(colorWhite)
	browseTagStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	browseRefStyle      = lipgloss.NewStyle().Foreground(colorBlue)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseRow is one visible line of the tree browser: a node together with
// its display label and the pointer that identifies it.
type browseRow struct {
	value   basic.Value
	label   string // key or index within the parent, "" for the root
	pointer string // canonical pointer, used as the expansion key
	depth   int
}

// BrowseModel is the bubbletea model for interactive tree exploration.
// Containers expand and collapse in place; the footer shows the pointer of
// the selected node so positions can be fed back into "resolve" queries.
type BrowseModel struct {
	Root     basic.Value
	Title    string
	Cursor   int
	Height   int
	Offset   int
	expanded map[string]bool
	rows     []browseRow
}

// NewBrowseModel creates a browser over root. The root container starts
// expanded; everything below it starts collapsed.
func NewBrowseModel(root basic.Value, title string) BrowseModel {
	m := BrowseModel{
		Root:     root,
		Title:    title,
		Height:   20,
		expanded: map[string]bool{"#": true},
	}
	m.rebuild()
	return m
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "g":
			m.Cursor = 0
		case "G":
			m.Cursor = len(m.rows) - 1
		case "enter", " ":
			m.toggle()
		case "right", "l":
			m.setExpanded(true)
		case "left", "h":
			m.setExpanded(false)
		}
		m.clampScroll()
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.clampScroll()
	}
	return m, nil
}

// toggle flips the expansion state of the selected container.
func (m *BrowseModel) toggle() {
	row := m.current()
	if row == nil || !expandable(row.value) {
		return
	}
	m.expanded[row.pointer] = !m.expanded[row.pointer]
	m.rebuild()
}

// setExpanded expands or collapses the selected container.
func (m *BrowseModel) setExpanded(open bool) {
	row := m.current()
	if row == nil || !expandable(row.value) {
		return
	}
	if m.expanded[row.pointer] == open {
		return
	}
	m.expanded[row.pointer] = open
	m.rebuild()
}

func (m *BrowseModel) current() *browseRow {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.Cursor]
}

// clampScroll keeps the cursor inside the visible window.
func (m *BrowseModel) clampScroll() {
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// rebuild recomputes the visible rows from the expansion state.
func (m *BrowseModel) rebuild() {
	m.rows = m.rows[:0]
	m.walk(m.Root, "", basic.Path{}, 0)
	m.clampScroll()
}

func (m *BrowseModel) walk(v basic.Value, label string, path basic.Path, depth int) {
	ptr := path.Pointer()
	m.rows = append(m.rows, browseRow{value: v, label: label, pointer: ptr, depth: depth})
	if !m.expanded[ptr] {
		return
	}
	switch node := v.(type) {
	case *basic.Sequence:
		for i, elem := range node.Elems {
			m.walk(elem, fmt.Sprintf("[%d]", i), append(path, basic.Index(i)), depth+1)
		}
	case *basic.Mapping:
		if _, isRef := basic.RefTarget(node); isRef {
			return
		}
		for _, e := range node.Entries() {
			m.walk(e.Value, e.Key, append(path, basic.Key(e.Key)), depth+1)
		}
	}
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ navigate  ⏎ toggle  ←/→ fold  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := cursor + strings.Repeat("  ", row.depth) + renderRow(row, m.expanded[row.pointer])
		if i == m.Cursor {
			b.WriteString(browseSelectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("  [%d/%d]  %s", m.Cursor+1, len(m.rows), m.selectedPointer())
	b.WriteString(browseDimStyle.Render(footer))

	return b.String()
}

// selectedPointer returns the pointer of the selected row for the footer.
func (m BrowseModel) selectedPointer() string {
	if row := m.current(); row != nil {
		return row.pointer
	}
	return "#"
}

// renderRow formats a single row: the key or index, then a summary of the
// node behind it.
func renderRow(row browseRow, open bool) string {
	var prefix string
	if row.label != "" {
		prefix = browseKeyStyle.Render(row.label) + browseDimStyle.Render(": ")
	}

	marker := ""
	if expandable(row.value) {
		if open {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}
	return marker + prefix + summarize(row.value)
}

// expandable reports whether the node has children to unfold. References
// are leaves even though they are mappings.
func expandable(v basic.Value) bool {
	switch node := v.(type) {
	case *basic.Sequence:
		return len(node.Elems) > 0
	case *basic.Mapping:
		if _, isRef := basic.RefTarget(node); isRef {
			return false
		}
		return node.Len() > 0
	}
	return false
}

// summarize renders a one-line description of a node.
func summarize(v basic.Value) string {
	switch node := v.(type) {
	case nil, basic.Null:
		return browseDimStyle.Render("null")
	case basic.Bool:
		return StyleValue.Render(fmt.Sprintf("%v", bool(node)))
	case basic.Int:
		return StyleValue.Render(fmt.Sprintf("%d", int64(node)))
	case basic.Float:
		return StyleValue.Render(fmt.Sprintf("%g", float64(node)))
	case basic.String:
		s := string(node)
		if len(s) > 48 {
			s = s[:45] + "..."
		}
		return StyleValue.Render(fmt.Sprintf("%q", s))
	case *basic.Sequence:
		return browseDimStyle.Render(fmt.Sprintf("list[%d]", len(node.Elems)))
	case *basic.Mapping:
		if target, ok := basic.RefTarget(node); ok {
			return browseRefStyle.Render(iconArrow + " " + target)
		}
		return mappingSummary(node)
	}
	return browseDimStyle.Render("?")
}

// mappingSummary labels a mapping with its type tag when present.
func mappingSummary(m *basic.Mapping) string {
	tag, ok := m.Get(basic.TypeKey)
	if !ok {
		return browseDimStyle.Render(fmt.Sprintf("mapping{%d}", m.Len()))
	}
	name, _ := tag.(basic.String)
	label := string(name)
	if v, ok := m.Get(basic.VersionKey); ok {
		if ver, ok := v.(basic.Int); ok {
			label = fmt.Sprintf("%s v%d", label, int64(ver))
		}
	}
	return browseTagStyle.Render(label)
}
