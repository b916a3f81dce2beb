// Package tui is the interactive pager: a scrollable line pane backed by
// the viewer, a search prompt, and a results pane with a histogram toggle.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/crimson-sun/spyglass/internal/bus"
	"github.com/crimson-sun/spyglass/internal/config"
	"github.com/crimson-sun/spyglass/internal/debounce"
	"github.com/crimson-sun/spyglass/internal/histogram"
	"github.com/crimson-sun/spyglass/internal/model"
	"github.com/crimson-sun/spyglass/internal/output"
	"github.com/crimson-sun/spyglass/internal/search"
	"github.com/crimson-sun/spyglass/internal/source"
	"github.com/crimson-sun/spyglass/internal/viewer"
)

type pane int

const (
	paneLines pane = iota
	paneResults
	paneHistogram
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	stylePrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

type linesMsg struct{ lines []model.LogLine }

type searchDoneMsg struct {
	col *search.Collection
	err error
}

type suggestMsg struct{ fields []source.FieldSuggestion }

type busMsg bus.Event

// Model is the bubbletea model for the pager. It is used as a pointer so
// the virtualizer's async render callback can reach the running program.
type Model struct {
	ctx      context.Context
	src      source.Source
	cfg      config.Config
	b        *bus.Bus
	events   <-chan bus.Event
	view     *viewer.View
	searcher *search.Searcher
	suggest  *search.Suggester

	send        func(tea.Msg)
	suggestWait *debounce.Debouncer

	file   string
	pane   pane
	width  int
	height int

	offset int
	lines  []model.LogLine

	input       textinput.Model
	searching   bool
	suggestions []source.FieldSuggestion

	results   viewport.Model
	col       *search.Collection
	lastQuery string

	status   string
	advisory string
}

// New builds a pager over an already-opened view.
func New(ctx context.Context, src source.Source, cfg config.Config, b *bus.Bus, file string, v *viewer.View) *Model {
	ti := textinput.New()
	ti.Placeholder = "search query"
	ti.Prompt = "/ "

	return &Model{
		ctx:         ctx,
		src:         src,
		cfg:         cfg,
		b:           b,
		events:      b.Subscribe(),
		view:        v,
		searcher:    search.NewSearcher(src, cfg.Search, b),
		suggest:     search.NewSuggester(src, 8),
		suggestWait: debounce.New(cfg.Search.SuggestDebounce),
		file:        file,
		width:       120,
		height:      40,
		input:       ti,
		results:     viewport.New(120, 38),
	}
}

// Run drives the program to completion on the caller's terminal.
func Run(ctx context.Context, src source.Source, cfg config.Config, b *bus.Bus, file string, v *viewer.View) error {
	m := New(ctx, src, cfg, b, file, v)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.send = p.Send
	_, err := p.Run()
	m.Close()
	return err
}

// Close releases the debouncer and the view.
func (m *Model) Close() {
	m.suggestWait.Stop()
	m.view.Close()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchLinesCmd(), m.waitEventCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.Width = msg.Width
		m.results.Height = m.paneHeight()
		return m, m.fetchLinesCmd()

	case linesMsg:
		m.lines = msg.lines
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.status = "search failed: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.col = msg.col
		m.pane = paneResults
		m.results.SetContent(m.renderResults())
		m.results.GotoTop()
		return m, nil

	case suggestMsg:
		m.suggestions = msg.fields
		return m, nil

	case busMsg:
		if msg.Advisory != "" {
			m.advisory = msg.Advisory
		}
		return m, m.waitEventCmd()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearchInput(msg)
		}
		return m.handleKey(msg)
	}

	if m.pane == paneResults {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searching = true
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "esc":
		m.pane = paneLines
		return m, m.fetchLinesCmd()

	case "t":
		if m.col != nil {
			m.pane = paneHistogram
			m.results.SetContent(m.renderHistogram())
			m.results.GotoTop()
			return m, nil
		}
		return m, nil

	case "r":
		if m.col != nil && m.pane == paneLines {
			m.pane = paneResults
			m.results.SetContent(m.renderResults())
			return m, nil
		}
		return m, nil
	}

	if m.pane != paneLines {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		m.scrollTo(m.offset - 1)
	case "down", "j":
		m.scrollTo(m.offset + 1)
	case "pgup", "ctrl+b":
		m.scrollTo(m.offset - m.paneHeight())
	case "pgdown", "ctrl+f":
		m.scrollTo(m.offset + m.paneHeight())
	case "home", "g":
		m.scrollTo(0)
	case "end", "G":
		m.scrollTo(m.view.TotalLines() - m.paneHeight())
	}
	return m, nil
}

func (m *Model) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.input.Blur()
		m.suggestions = nil
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		m.searching = false
		m.input.Blur()
		m.suggestions = nil
		if query == "" {
			return m, nil
		}
		m.lastQuery = query
		m.status = "searching…"
		return m, m.runSearchCmd(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.queueSuggestions(m.input.Value())
	return m, cmd
}

// queueSuggestions debounces field lookups while the user types.
func (m *Model) queueSuggestions(partial string) {
	if m.send == nil {
		return
	}
	m.suggestWait.Trigger(func() {
		fields, err := m.suggest.Fields(m.ctx, partial)
		if err != nil {
			return
		}
		m.send(suggestMsg{fields: fields})
	})
}

// scrollTo moves the viewport and lets the virtualizer debounce the fetch.
// The rendered lines arrive later as a linesMsg.
func (m *Model) scrollTo(offset int) {
	if last := m.view.TotalLines() - 1; offset > last {
		offset = last
	}
	if offset < 0 {
		offset = 0
	}
	m.offset = offset
	if m.send == nil {
		return
	}
	m.view.OnScroll(m.ctx, m.viewport(), func(lines []model.LogLine) {
		m.send(linesMsg{lines: lines})
	})
}

func (m *Model) fetchLinesCmd() tea.Cmd {
	vp := m.viewport()
	return func() tea.Msg {
		return linesMsg{lines: m.view.Lines(m.ctx, vp)}
	}
}

func (m *Model) runSearchCmd(query string) tea.Cmd {
	req := source.SearchRequest{Query: query}
	return func() tea.Msg {
		col, err := m.searcher.Search(m.ctx, req)
		return searchDoneMsg{col: col, err: err}
	}
}

func (m *Model) waitEventCmd() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return busMsg(ev)
	}
}

func (m *Model) viewport() viewer.Viewport {
	return viewer.Viewport{ScrollOffset: m.offset, Height: m.paneHeight(), RowHeight: 1}
}

func (m *Model) paneHeight() int {
	h := m.height - 3 // title, prompt, status
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.renderTitle())
	sb.WriteString("\n")

	switch m.pane {
	case paneLines:
		sb.WriteString(m.renderLines())
	default:
		sb.WriteString(m.results.View())
		sb.WriteString("\n")
	}

	if m.searching {
		sb.WriteString(stylePrompt.Render(m.input.View()))
		if len(m.suggestions) > 0 {
			names := make([]string, 0, len(m.suggestions))
			for _, s := range m.suggestions {
				names = append(names, s.Field)
			}
			sb.WriteString(styleStatus.Render("  fields: " + strings.Join(names, " ")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.renderStatus())
	return sb.String()
}

func (m *Model) renderTitle() string {
	title := styleTitle.Render(m.file)
	total := humanize.Comma(int64(m.view.TotalLines()))
	return fmt.Sprintf("%s  %s lines", title, total)
}

func (m *Model) renderLines() string {
	var sb strings.Builder
	r := output.NewRenderer(&sb, true)
	r.Lines(m.lines)
	for i := len(m.lines); i < m.paneHeight(); i++ {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderResults() string {
	var sb strings.Builder
	r := output.NewRenderer(&sb, true)
	r.Results(m.col.Results(), m.col.Total(), m.col.Truncated())
	return sb.String()
}

func (m *Model) renderHistogram() string {
	var sb strings.Builder
	b := histogram.New("")
	r := output.NewRenderer(&sb, true)
	r.Histogram(b.Build(m.col.Results()))
	return sb.String()
}

func (m *Model) renderStatus() string {
	parts := []string{fmt.Sprintf("line %d", m.offset+1)}
	if m.lastQuery != "" && m.col != nil {
		parts = append(parts, fmt.Sprintf("%q: %s results", m.lastQuery, humanize.Comma(int64(m.col.Total()))))
	}
	if m.advisory != "" {
		parts = append(parts, m.advisory)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "/ search · r results · t histogram · q quit")
	return styleStatus.Render(strings.Join(parts, "  |  "))
}
