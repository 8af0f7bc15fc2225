// Package tui is a terminal browser over dataset records.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"medrag/internal/domain"
)

// Searcher ranks dataset records against a free-text query and lists the
// records it holds.
type Searcher interface {
	Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
	Records() []domain.DatasetRecord
}

const (
	topK = 10
	// candidates is how many hits are fetched before filters apply.
	candidates  = 50
	browseLimit = 50
)

// pane selects what the detail view shows for the current record.
type pane int

const (
	paneContent pane = iota
	paneMicroChunks
	paneTables
	paneCount
)

func (p pane) String() string {
	switch p {
	case paneMicroChunks:
		return "micro-chunks"
	case paneTables:
		return "tables"
	default:
		return "content"
	}
}

type keyMap struct {
	Quit    key.Binding
	Search  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Chapter key.Binding
	Pane    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d", "esc"), key.WithHelp("esc", "quit")),
	Search:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	Next:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
	Prev:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous")),
	Chapter: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next chapter")),
	Pane:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "content/micro-chunks/tables")),
}

// Model is the Bubble Tea model of the dataset browser.
type Model struct {
	ctx      context.Context
	service  Searcher
	input    textinput.Model
	viewport viewport.Model
	results  []domain.SearchResult
	summary  string
	status   string
	cursor   int
	pane     pane
	ready    bool
	last     query
}

// New creates a browser over service. summary is shown under the title.
func New(ctx context.Context, service Searcher, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "query, ch:12, cat:cardio"
	ti.Focus()
	return Model{
		ctx:      ctx,
		service:  service,
		input:    ti,
		viewport: viewport.New(0, 0),
		summary:  summary,
		status:   "Type a query, or a filter alone to list records.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		// title, summary, status and help lines
		reserved := 4 + qh + rh
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Search):
			m.search(parseQuery(m.input.Value()))
			return m, nil
		case key.Matches(msg, keys.Next) && len(m.results) > 0:
			m.move(1)
			return m, nil
		case key.Matches(msg, keys.Prev) && len(m.results) > 0:
			m.move(-1)
			return m, nil
		case key.Matches(msg, keys.Chapter) && len(m.results) > 0:
			m.nextChapter()
			return m, nil
		case key.Matches(msg, keys.Pane):
			m.pane = (m.pane + 1) % paneCount
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) search(q query) {
	if q.empty() {
		return
	}
	var (
		res []domain.SearchResult
		err error
	)
	if q.text == "" {
		res = browse(m.service.Records(), q)
	} else {
		res, err = m.service.Query(m.ctx, q.text, candidates)
		res = filter(res, q)
		if len(res) > topK {
			res = res[:topK]
		}
	}
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
	} else {
		m.status = fmt.Sprintf("%d results for %s", len(res), q)
		m.results = res
		m.cursor = 0
		m.last = q
	}
	m.refresh()
}

func (m *Model) move(step int) {
	m.cursor = (m.cursor + step + len(m.results)) % len(m.results)
	m.refresh()
}

// nextChapter moves to the first result of the next chapter in the list,
// wrapping around.
func (m *Model) nextChapter() {
	current := m.results[m.cursor].Record.ChapterID
	for i := 1; i < len(m.results); i++ {
		j := (m.cursor + i) % len(m.results)
		if m.results[j].Record.ChapterID != current {
			m.cursor = j
			break
		}
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderCurrentResult())
	m.viewport.GotoTop()
}
