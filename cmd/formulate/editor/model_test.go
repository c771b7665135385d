package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"formulate/cmd/formulate/ui"
	"formulate/internal/catalog"
	"formulate/internal/resolver"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// =============================================================================
// HELPERS
// =============================================================================

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Variable{
		{ID: "1", Name: "Revenue", Category: "Finance", Value: "100"},
		{ID: "2", Name: "Cost", Category: "Finance", Value: "40"},
		{ID: "3", Name: "X", Category: "Test", Value: "3"},
		{ID: "4", Name: "Reserve", Value: ""},
	})
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	return New(Options{
		Catalog: testCatalog(),
		Styles:  ui.NewStyles(ui.LightTheme()),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update should return editor.Model")
	return nm, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: k})
}

func runeKey(t *testing.T, m Model, r rune) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// runCmd feeds the message produced by cmd back into the model.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

func click(t *testing.T, m Model, y int) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.MouseMsg{
		X:      2,
		Y:      y,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
}

type stubLoader struct {
	cat *catalog.Catalog
	err error
}

func (s stubLoader) Load(ctx context.Context) (*catalog.Catalog, error) {
	return s.cat, s.err
}

func (s stubLoader) Source() catalog.Source {
	if s.err != nil {
		return catalog.SourceNone
	}
	return catalog.SourceRemote
}

// =============================================================================
// TYPING AND COMMIT
// =============================================================================

func TestNew_InitialState(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, "= ", m.input.Value())
	assert.True(t, m.input.Focused())
	assert.False(t, m.chipMode)
	assert.False(t, m.session.Suggest.Visible())
	assert.Contains(t, m.View(), "Result:")
	assert.Contains(t, m.View(), resolver.MsgEmpty)
	assert.NotNil(t, m.Init())
}

func TestTyping_OpensGroupedPanel(t *testing.T) {
	m := typeText(t, newTestModel(t), "re")

	require.True(t, m.session.Suggest.Visible())
	view := m.View()
	assert.Contains(t, view, "◉ FINANCE")
	assert.Contains(t, view, "Revenue (100)")
	assert.Contains(t, view, "◉ UNCATEGORIZED")
	assert.Contains(t, view, "Reserve")
	assert.NotContains(t, view, "Reserve (")
	assert.NotContains(t, view, "Cost")
}

func TestEnter_CommitsHighlighted(t *testing.T) {
	m := typeText(t, newTestModel(t), "2 + x")

	m, cmd := press(t, m, tea.KeyEnter)
	m = runCmd(t, m, cmd)

	assert.Equal(t, "= 2 + X ", m.session.Formula())
	assert.Equal(t, " ", m.input.Value())
	assert.True(t, m.input.Focused(), "input refocused after commit")
	assert.False(t, m.session.Suggest.Visible())

	view := m.View()
	assert.Contains(t, view, "[X ×]")
	assert.Equal(t, "5", m.session.Result.String())
}

func TestEnter_WithoutPanelDoesNothing(t *testing.T) {
	m := typeText(t, newTestModel(t), "2 + 3")
	require.False(t, m.session.Suggest.Visible(), "digits match no variable")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, "= 2 + 3", m.session.Formula())
	assert.Equal(t, "5", m.session.Result.String())
}

func TestArrows_MoveCursor(t *testing.T) {
	m := typeText(t, newTestModel(t), "re")

	m, _ = press(t, m, tea.KeyDown)
	assert.Equal(t, 1, m.cursor)
	m, _ = press(t, m, tea.KeyDown)
	assert.Equal(t, 1, m.cursor, "cursor stops at the last option")
	m, _ = press(t, m, tea.KeyUp)
	m, _ = press(t, m, tea.KeyUp)
	assert.Equal(t, 0, m.cursor, "cursor stops at the first option")

	m, _ = press(t, m, tea.KeyDown)
	m, cmd := press(t, m, tea.KeyTab)
	m = runCmd(t, m, cmd)

	chips := m.session.Chips()
	require.Len(t, chips, 1)
	assert.Equal(t, "Reserve", m.session.Tokens[chips[0]].Value)
}

func TestTypingAfterCommit_ContinuesFormula(t *testing.T) {
	m := typeText(t, newTestModel(t), "rev")
	m, cmd := press(t, m, tea.KeyEnter)
	m = runCmd(t, m, cmd)

	m = typeText(t, m, "- co")
	require.True(t, m.session.Suggest.Visible())
	m, cmd = press(t, m, tea.KeyEnter)
	m = runCmd(t, m, cmd)

	assert.Len(t, m.session.Chips(), 2)
	assert.Equal(t, "60", m.session.Result.String())
}

// =============================================================================
// CHIP MODE
// =============================================================================

func TestEsc_EntersChipModeAndDeletes(t *testing.T) {
	m := typeText(t, newTestModel(t), "2 + x")
	m, cmd := press(t, m, tea.KeyEnter)
	m = runCmd(t, m, cmd)

	m, _ = press(t, m, tea.KeyEsc)
	require.True(t, m.chipMode)
	assert.False(t, m.input.Focused())
	assert.Equal(t, 0, m.selected)

	m, _ = runeKey(t, m, 'x')
	assert.Equal(t, "= 2 ", m.session.Formula(), "dangling operator removed with the chip")
	assert.Equal(t, "= 2 ", m.input.Value())
	assert.Equal(t, "2", m.session.Result.String())
	assert.Empty(t, m.session.Chips())

	// Nothing left to delete.
	m, _ = press(t, m, tea.KeyBackspace)
	assert.Equal(t, "= 2 ", m.session.Formula())
}

func TestChipMode_SelectsAndRefocuses(t *testing.T) {
	m := typeText(t, newTestModel(t), "rev")
	m, cmd := press(t, m, tea.KeyEnter)
	m = runCmd(t, m, cmd)
	m = typeText(t, m, "- co")
	m, cmd = press(t, m, tea.KeyEnter)
	m = runCmd(t, m, cmd)

	m, _ = press(t, m, tea.KeyEsc)
	assert.Equal(t, 1, m.selected, "last chip selected on entry")

	m, _ = press(t, m, tea.KeyLeft)
	assert.Equal(t, 0, m.selected)
	m, _ = press(t, m, tea.KeyLeft)
	assert.Equal(t, 0, m.selected)

	m, _ = press(t, m, tea.KeyDelete)
	chips := m.session.Chips()
	require.Len(t, chips, 1)
	assert.Equal(t, "Cost", m.session.Tokens[chips[0]].Value)

	m, _ = press(t, m, tea.KeyEnter)
	assert.False(t, m.chipMode)
	assert.True(t, m.input.Focused())
}

func TestDismissThenFocus_ReopensSearch(t *testing.T) {
	m := typeText(t, newTestModel(t), "re")
	require.True(t, m.session.Suggest.Visible())

	m, _ = press(t, m, tea.KeyEsc)
	assert.False(t, m.session.Suggest.Visible())
	assert.NotContains(t, m.View(), "◉")

	m, _ = runeKey(t, m, 'i')
	assert.True(t, m.session.Suggest.Visible())
	assert.Equal(t, "= re", m.input.Value(), "refocus does not type")
}

// =============================================================================
// MOUSE
// =============================================================================

func TestMouse_OutsideDismisses(t *testing.T) {
	m := typeText(t, newTestModel(t), "re")

	m, _ = click(t, m, 200)
	assert.False(t, m.session.Suggest.Visible())
	assert.True(t, m.chipMode)

	m, _ = click(t, m, m.layout().editorTop)
	assert.False(t, m.chipMode)
	assert.True(t, m.session.Suggest.Visible(), "remembered term re-opens on focus")
}

func TestMouse_ClickOptionCommits(t *testing.T) {
	m := typeText(t, newTestModel(t), "re")

	l := m.layout()
	row := -1
	for i, option := range l.panelRows {
		if option == 1 {
			row = i
		}
	}
	require.GreaterOrEqual(t, row, 0, "Reserve row should be drawn")

	m, cmd := click(t, m, l.panelTop+row)
	m = runCmd(t, m, cmd)

	chips := m.session.Chips()
	require.Len(t, chips, 1)
	assert.Equal(t, "Reserve", m.session.Tokens[chips[0]].Value)
	assert.True(t, m.input.Focused())
}

func TestMouse_HeaderClickKeepsPanel(t *testing.T) {
	m := typeText(t, newTestModel(t), "re")
	l := m.layout()

	m, cmd := click(t, m, l.panelTop+1) // first category header
	assert.Nil(t, cmd)
	assert.True(t, m.session.Suggest.Visible())
}

func TestMouse_IgnoresNonPress(t *testing.T) {
	m := typeText(t, newTestModel(t), "re")

	m, _ = update(t, m, tea.MouseMsg{Y: 200, Action: tea.MouseActionMotion})
	assert.True(t, m.session.Suggest.Visible())
}

// =============================================================================
// CATALOG LOADING
// =============================================================================

func TestCatalogLoad_Success(t *testing.T) {
	m := New(Options{
		Loader: stubLoader{cat: testCatalog()},
		Styles: ui.NewStyles(ui.LightTheme()),
	})
	require.True(t, m.loading)
	assert.Contains(t, m.View(), "loading variables")

	m = typeText(t, m, "Revenue * 2")
	assert.Equal(t, resolver.MsgUnknown, m.session.Result.String())

	msg := m.loadCatalog()()
	m, _ = update(t, m, msg)

	assert.False(t, m.loading)
	assert.Equal(t, catalog.SourceRemote, m.source)
	assert.Equal(t, "200", m.session.Result.String(), "result recomputed once variables arrive")
	assert.NotContains(t, m.View(), "loading variables")
}

func TestCatalogLoad_Failure(t *testing.T) {
	m := New(Options{
		Loader: stubLoader{err: errors.New("offline")},
		Styles: ui.NewStyles(ui.LightTheme()),
	})

	m, _ = update(t, m, m.loadCatalog()())
	assert.False(t, m.loading)
	assert.Error(t, m.loadErr)
	assert.Contains(t, m.View(), "variables unavailable")

	// Editing still works without variables.
	m = typeText(t, m, "1 + 1")
	assert.Equal(t, "2", m.session.Result.String())
}

func TestCatalogLoad_CacheSource(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, catalogLoadedMsg{catalog: testCatalog(), source: catalog.SourceCache})
	assert.Contains(t, m.View(), "offline copy")
}

func TestSpinnerStopsAfterLoad(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, m.spinner.Tick())
	assert.Nil(t, cmd, "no ticks once loading is over")
}

// =============================================================================
// GLOBAL KEYS
// =============================================================================

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m, _ = runeKey(t, m, '?')
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Formula editor")

	m, _ = runeKey(t, m, 'z')
	assert.True(t, m.showHelp, "other keys are swallowed")
	assert.Equal(t, "= ", m.input.Value())

	m, _ = press(t, m, tea.KeyEsc)
	assert.False(t, m.showHelp)
	assert.False(t, m.chipMode, "closing help does not dismiss")
}

func TestCtrlC_Quits(t *testing.T) {
	m := newTestModel(t)
	_, cmd := press(t, m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestMaxSuggestions_WindowFollowsCursor(t *testing.T) {
	var vars []catalog.Variable
	for i := 0; i < 5; i++ {
		vars = append(vars, catalog.Variable{Name: fmt.Sprintf("Item%d", i), Category: "Stock", Value: "1"})
	}
	m := New(Options{
		Catalog:        catalog.New(vars),
		Styles:         ui.NewStyles(ui.LightTheme()),
		MaxSuggestions: 2,
	})
	m = typeText(t, m, "item")
	for i := 0; i < 3; i++ {
		m, _ = press(t, m, tea.KeyDown)
	}

	_, rows := m.renderPanel()
	var drawn []int
	for _, r := range rows {
		if r >= 0 {
			drawn = append(drawn, r)
		}
	}
	assert.Equal(t, []int{2, 3}, drawn)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, total, limit int
		start, end           int
	}{
		{0, 3, 0, 0, 3},
		{0, 3, 5, 0, 3},
		{0, 10, 4, 0, 4},
		{3, 10, 4, 0, 4},
		{4, 10, 4, 1, 5},
		{9, 10, 4, 6, 10},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.total, tt.limit)
		assert.Equal(t, tt.start, start, "start for %+v", tt)
		assert.Equal(t, tt.end, end, "end for %+v", tt)
	}
}

func TestSessionEventsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := New(Options{
		Catalog: testCatalog(),
		Styles:  ui.NewStyles(ui.LightTheme()),
		Logger:  zap.New(core),
	})

	m = typeText(t, m, "x")
	m, cmd := press(t, m, tea.KeyEnter)
	_ = runCmd(t, m, cmd)

	inserted := logs.FilterMessage("variable inserted").All()
	require.Len(t, inserted, 1)
	assert.Equal(t, "session", inserted[0].LoggerName)
	assert.Equal(t, "X", inserted[0].ContextMap()["name"])
	assert.Equal(t, m.session.ID, inserted[0].ContextMap()["session"])
}
