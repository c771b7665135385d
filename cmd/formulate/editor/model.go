// Package editor is the interactive formula editor: a single-line input
// that turns typed words into variable chips picked from a grouped
// suggestion panel, with the live result underneath.
package editor

import (
	"context"
	"time"

	"formulate/cmd/formulate/ui"
	"formulate/internal/catalog"
	"formulate/internal/logging"
	"formulate/internal/resolver"
	"formulate/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// CatalogLoader provides the variable catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
	Source() catalog.Source
}

// Options configures a Model.
type Options struct {
	Context        context.Context
	Loader         CatalogLoader    // fetched once from Init; nil skips loading
	Catalog        *catalog.Catalog // preloaded catalog, used when Loader is nil
	Resolver       *resolver.Resolver
	Styles         ui.Styles
	MaxSuggestions int // 0 = no cap
	Width          int // editor box width, 0 = natural width
	Logger         *zap.Logger
}

// =============================================================================
// MESSAGES
// =============================================================================

// catalogLoadedMsg carries the result of the one-time catalog load.
type catalogLoadedMsg struct {
	catalog *catalog.Catalog
	source  catalog.Source
	err     error
}

// focusMsg refocuses the input after the current update has been applied.
type focusMsg struct{}

func focusCmd() tea.Msg { return focusMsg{} }

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model of the editor.
type Model struct {
	ctx    context.Context
	loader CatalogLoader

	session session.Session
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	styles  ui.Styles

	cursor   int  // highlighted suggestion, index into the flattened panel
	chipMode bool // input blurred, arrows select chips
	selected int  // selected chip, index into session.Chips()

	showHelp bool
	helpView string

	loading bool
	loadErr error
	source  catalog.Source

	maxSuggestions int
	boxWidth       int
	width          int
	height         int

	logger     *zap.Logger
	sessionLog *zap.Logger
}

// New creates the editor model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Styles.Theme == (ui.Theme{}) {
		opts.Styles = ui.DefaultStyles()
	}
	if opts.Resolver == nil {
		opts.Resolver = resolver.New(resolver.WithLogger(logging.For(opts.Logger, logging.CategoryResolver)))
	}

	s := session.New(opts.Catalog, opts.Resolver)

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = ""
	ti.SetValue(s.InputValue())
	ti.CursorEnd()
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	m := Model{
		ctx:            opts.Context,
		loader:         opts.Loader,
		session:        s,
		input:          ti,
		spinner:        sp,
		help:           help.New(),
		keys:           defaultKeyMap(),
		styles:         opts.Styles,
		loading:        opts.Loader != nil,
		maxSuggestions: opts.MaxSuggestions,
		boxWidth:       opts.Width,
		logger:         logging.For(opts.Logger, logging.CategoryUI),
		sessionLog:     logging.For(opts.Logger, logging.CategorySession).With(zap.String("session", s.ID)),
	}
	m.sessionLog.Debug("session started")
	return m
}

// Session returns the current editor state.
func (m Model) Session() session.Session {
	return m.session
}

// Init starts the cursor blink and the catalog load.
func (m Model) Init() tea.Cmd {
	if !m.loading {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadCatalog())
}

func (m Model) loadCatalog() tea.Cmd {
	loader, ctx, log := m.loader, m.ctx, logging.For(m.logger, logging.CategoryCatalog)
	return func() tea.Msg {
		timer := logging.StartTimer(log, "catalog load")
		cat, err := loader.Load(ctx)
		timer.StopWithThreshold(5 * time.Second)
		if err != nil {
			return catalogLoadedMsg{err: err}
		}
		return catalogLoadedMsg{catalog: cat, source: loader.Source()}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.showHelp {
			m.helpView = renderHelp(m.styles.Theme.GlamourStyle(), m.width)
		}
		return m, nil

	case catalogLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			m.logger.Warn("catalog unavailable", zap.Error(msg.err))
			return m, nil
		}
		m.source = msg.source
		m.session = m.session.WithCatalog(msg.catalog)
		m.clampCursor()
		m.sessionLog.Info("catalog installed",
			zap.Int("variables", msg.catalog.Len()),
			zap.Stringer("source", msg.source),
			zap.Stringer("result", m.session.Result.Status))
		return m, nil

	case focusMsg:
		return m.focusInput()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.sessionLog.Debug("session closed", zap.String("formula", m.session.Formula()))
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Dismiss) {
			m.showHelp = false
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		m.helpView = renderHelp(m.styles.Theme.GlamourStyle(), m.width)
		return m, nil
	}

	if m.chipMode {
		return m.handleChipKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.session.Suggest.Visible() {
			m.cursor--
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.session.Suggest.Visible() {
			m.cursor++
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, m.keys.Commit):
		if m.session.Suggest.Visible() {
			return m.commit(m.cursor)
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		return m.blur(), nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.session = m.session.EditText(value)
		m.cursor = 0
		m.logger.Debug("input changed",
			zap.String("term", m.session.Suggest.Term),
			zap.Int("suggestions", len(m.session.Suggest.Filtered)))
	}
	return m, cmd
}

func (m Model) handleChipKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chips := m.session.Chips()

	switch {
	case key.Matches(msg, m.keys.ChipLeft):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keys.ChipRight):
		if m.selected < len(chips)-1 {
			m.selected++
		}

	case key.Matches(msg, m.keys.ChipDelete):
		if len(chips) == 0 {
			return m, nil
		}
		name := m.session.Tokens[chips[m.selected]].Value
		next, err := m.session.Delete(chips[m.selected])
		if err != nil {
			m.logger.Debug("chip delete rejected", zap.Error(err))
			return m, nil
		}
		m.session = next
		m.input.SetValue(next.InputValue())
		m.input.CursorEnd()
		m.clampSelected()
		m.sessionLog.Info("variable removed",
			zap.String("name", name),
			zap.String("formula", next.Formula()),
			zap.Stringer("result", next.Result.Status))

	case key.Matches(msg, m.keys.Refocus):
		return m.focusInput()
	}

	return m, nil
}

// =============================================================================
// MOUSE
// =============================================================================

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.showHelp {
		return m, nil
	}

	l := m.layout()
	switch {
	case msg.Y >= l.editorTop && msg.Y < l.editorBottom:
		return m.focusInput()

	case msg.Y >= l.panelTop && msg.Y < l.panelTop+len(l.panelRows):
		if option := l.panelRows[msg.Y-l.panelTop]; option >= 0 {
			return m.commit(option)
		}
		return m, nil
	}

	return m.blur(), nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// commit inserts the option at index of the flattened panel.
func (m Model) commit(index int) (tea.Model, tea.Cmd) {
	options := m.session.Suggest.Flatten()
	if index < 0 || index >= len(options) {
		return m, nil
	}
	v := options[index]

	next, err := m.session.Commit(v)
	if err != nil {
		m.logger.Debug("commit rejected", zap.String("name", v.Name), zap.Error(err))
		return m, nil
	}
	m.session = next
	m.input.SetValue(next.InputValue())
	m.input.CursorEnd()
	m.cursor = 0
	m.sessionLog.Info("variable inserted",
		zap.String("name", v.Name),
		zap.String("formula", next.Formula()),
		zap.Stringer("result", next.Result.Status))

	return m, focusCmd
}

func (m Model) focusInput() (tea.Model, tea.Cmd) {
	m.chipMode = false
	m.session = m.session.Focus()
	m.clampCursor()
	return m, m.input.Focus()
}

// blur closes the panel and hands the arrows to the chips.
func (m Model) blur() Model {
	m.session = m.session.Dismiss()
	m.input.Blur()
	m.chipMode = true
	m.selected = len(m.session.Chips()) - 1
	m.clampSelected()
	return m
}

func (m *Model) clampCursor() {
	n := len(m.session.Suggest.Filtered)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) clampSelected() {
	n := len(m.session.Chips())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}
