package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
)

var errUnavailable = errors.New("هذه العملية غير متاحة")

// TickMsg drives the periodic staleness check.
type TickMsg time.Time

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.deps.StaleInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the register screen.
type Model struct {
	ctx    context.Context
	deps   Deps
	state  State
	page   models.Page
	stats  models.Stats
	rows   []RowView
	table  table.Model
	form   problemForm
	prompt textinput.Model
	keys   *HandlerRegistry
	theme  Theme

	compact bool
	width   int
	height  int
}

func NewModel(ctx context.Context, deps Deps) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.PageSize <= 0 {
		deps.PageSize = config.ItemsPerPage
	}
	if deps.StaleInterval <= 0 {
		deps.StaleInterval = config.StaleCheckInterval
	}
	if deps.LinkBase == "" {
		deps.LinkBase = config.DefaultLinkBase
	}

	prompt := textinput.New()
	prompt.CharLimit = config.MaxPathLength
	prompt.Width = 50

	m := Model{
		ctx:    ctx,
		deps:   deps,
		state:  newState(),
		form:   newProblemForm(),
		prompt: prompt,
		keys:   defaultRegistry(),
		theme:  CurrentTheme,
	}
	cols, compact := tableColumns(0)
	m.compact = compact
	m.table = table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(deps.PageSize+1),
		table.WithStyles(m.theme.TableStyles()),
	)
	m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	now := m.deps.Clock()
	return func() tea.Msg { return TickMsg(now) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil
	case TickMsg:
		return m.handleTick(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// reload re-reads the current page and the counters. The page number follows
// the clamp applied by the store.
func (m *Model) reload() {
	page, err := m.deps.Store.ListPage(m.ctx, m.state.Page, m.deps.PageSize)
	if err != nil {
		m.state.setError(err)
		return
	}
	stats, err := m.deps.Store.CountByStatus(m.ctx)
	if err != nil {
		m.state.setError(err)
		return
	}
	m.page = page
	m.stats = stats
	if page.Page > 0 {
		m.state.Page = page.Page
	} else {
		m.state.Page = 1
	}
	m.rows = buildRows(page.Items, m.deps.LinkBase)
	m.applyRows()
}

func (m *Model) applyRows() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, r.cells(m.compact))
	}
	// Columns change shape in compact mode; clear rows first so the table
	// never renders a row against the wrong column set.
	m.table.SetRows(nil)
	cols, _ := tableColumns(m.width)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) resize(width, height int) Model {
	m.width, m.height = width, height
	_, m.compact = tableColumns(width)
	if width > 0 {
		m.table.SetWidth(width - 2)
	}
	if height > 0 {
		m.table.SetHeight(max(height-config.ChromeHeight, 3))
	}
	m.applyRows()
	return m
}

// handleTick runs the staleness check and schedules the next one. The panel
// opens by itself when the stale count grows.
func (m Model) handleTick(msg TickMsg) (Model, tea.Cmd) {
	if m.deps.Checker == nil {
		return m, nil
	}
	report, err := m.deps.Checker.Check(m.ctx, time.Time(msg))
	if err != nil {
		m.state.setError(err)
		return m, m.tickCmd()
	}
	if report.Count > m.state.Stale.Count {
		m.state.ShowStale = true
	}
	m.state.Stale = report
	return m, m.tickCmd()
}

func (m Model) selected() (RowView, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return RowView{}, false
	}
	return m.rows[idx], true
}

// State exposes the session state for the command layer and tests.
func (m Model) State() State { return m.state }

func (m Model) Page() models.Page { return m.page }
