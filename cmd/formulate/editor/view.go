package editor

import (
	"strings"

	"formulate/internal/catalog"
	"formulate/internal/resolver"

	"github.com/charmbracelet/lipgloss"
)

// layout is the vertical position of each clickable region of the view.
type layout struct {
	editorTop    int
	editorBottom int
	panelTop     int
	panelRows    []int // option index per panel row, -1 for headers and borders
}

// View renders the editor.
func (m Model) View() string {
	if m.showHelp {
		return m.helpView + "\n\n" + m.styles.Muted.Render("press ? or esc to close")
	}

	header, editor, panel, _ := m.sections()
	parts := []string{header, editor}
	if panel != "" {
		parts = append(parts, panel)
	}
	parts = append(parts, m.renderResult(), m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) layout() layout {
	header, editor, _, rows := m.sections()
	l := layout{editorTop: lipgloss.Height(header)}
	l.editorBottom = l.editorTop + lipgloss.Height(editor)
	l.panelTop = l.editorBottom
	l.panelRows = rows
	return l
}

func (m Model) sections() (header, editor, panel string, rows []int) {
	header = m.renderHeader()
	editor = m.renderEditor()
	panel, rows = m.renderPanel()
	return header, editor, panel, rows
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("formulate")
	switch {
	case m.loading:
		return title + "  " + m.spinner.View() + m.styles.Muted.Render(" loading variables")
	case m.loadErr != nil:
		return title + "  " + m.styles.Warning.Render("variables unavailable")
	case m.source == catalog.SourceCache:
		return title + "  " + m.styles.Muted.Render("offline copy")
	}
	return title
}

// renderEditor draws the frozen tokens followed by the live input.
func (m Model) renderEditor() string {
	var b strings.Builder
	tokens := m.session.Tokens
	last := len(tokens) - 1
	chip := 0
	for i, t := range tokens {
		if i == last && t.IsText() {
			break
		}
		if t.IsVariable() {
			b.WriteString(m.styles.RenderChip(t.Value, m.chipMode && chip == m.selected))
			chip++
			continue
		}
		b.WriteString(m.styles.Text.Render(t.Value))
	}
	b.WriteString(m.input.View())

	box := m.styles.Editor
	if !m.chipMode {
		box = m.styles.EditorFocused
	}
	if m.boxWidth > 0 {
		box = box.Width(m.boxWidth)
	}
	return box.Render(b.String())
}

// renderPanel draws the grouped suggestions. Only a window of
// maxSuggestions options around the cursor is drawn.
func (m Model) renderPanel() (string, []int) {
	if !m.session.Suggest.Visible() {
		return "", nil
	}

	total := len(m.session.Suggest.Filtered)
	start, end := window(m.cursor, total, m.maxSuggestions)

	var lines []string
	rows := []int{-1} // top border
	index := 0
	for _, g := range m.session.Suggest.Groups() {
		headed := false
		for _, v := range g.Options {
			if index >= start && index < end {
				if !headed {
					lines = append(lines, m.styles.RenderCategory(g.Category))
					rows = append(rows, -1)
					headed = true
				}
				lines = append(lines, m.styles.RenderOption(v.Name, string(v.Value), index == m.cursor))
				rows = append(rows, index)
			}
			index++
		}
	}
	rows = append(rows, -1) // bottom border

	return m.styles.Panel.Render(strings.Join(lines, "\n")), rows
}

func (m Model) renderResult() string {
	r := m.session.Result
	return m.styles.RenderResult(r.String(), r.Status == resolver.StatusOK)
}

func (m Model) renderFooter() string {
	if m.chipMode {
		return m.help.View(chipHelp{m.keys})
	}
	return m.help.View(inputHelp{m.keys})
}

// window returns the [start, end) range of at most limit items that keeps
// cursor visible.
func window(cursor, total, limit int) (int, int) {
	if limit <= 0 || total <= limit {
		return 0, total
	}
	start := 0
	if cursor >= limit {
		start = cursor - limit + 1
	}
	return start, start + limit
}
