package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunelink/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchListView ViewState = iota
	DetailView
)

// SearchSource reads the search counter and history.
type SearchSource interface {
	Count(ctx context.Context) (int64, error)
	CountByPlatform(ctx context.Context) (map[string]int64, error)
	Recent(ctx context.Context, limit int) ([]models.SearchEntry, error)
}

// Model represents the monitor state.
type Model struct {
	ctx      context.Context
	source   SearchSource
	interval time.Duration
	limit    int
	view     ViewState
	width    int
	height   int
	searches list.Model
	snapshot Snapshot
	selected *models.SearchEntry
	loaded   bool
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a monitor that reads limit recent searches every interval.
func NewModel(ctx context.Context, source SearchSource, interval time.Duration, limit int) *Model {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if limit <= 0 {
		limit = 50
	}

	searches := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	searches.Title = "Recent searches"
	searches.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		source:   source,
		interval: interval,
		limit:    limit,
		view:     SearchListView,
		searches: searches,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads the first snapshot and starts the refresh timer.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSnapshot(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searches.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgSnapshotFetched:
			res := msg.data.(snapshotResult)
			m.err = res.err
			if res.err == nil {
				m.loaded = true
				m.snapshot = res.snapshot
				cmd := m.searches.SetItems(searchItems(res.snapshot.Recent))
				return m, cmd
			}
			return m, nil
		case MsgTick:
			return m, tea.Batch(m.fetchSnapshot(), m.tick())
		}
	}

	var cmd tea.Cmd
	if m.view == SearchListView {
		m.searches, cmd = m.searches.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searches.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.searches, cmd = m.searches.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchSnapshot()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.searches.SelectedItem().(searchItem); ok {
			entry := item.entry
			m.selected = &entry
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searches, cmd = m.searches.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SearchListView
		m.selected = nil
	}
	return m, nil
}

func (m *Model) fetchSnapshot() tea.Cmd {
	ctx, source, limit := m.ctx, m.source, m.limit
	return func() tea.Msg {
		s, err := ReadSnapshot(ctx, source, limit)
		return snapshotFetchedMsg(s, err)
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ReadSnapshot reads the counter, platform totals and recent searches from source.
func ReadSnapshot(ctx context.Context, source SearchSource, limit int) (Snapshot, error) {
	total, err := source.Count(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read search count: %w", err)
	}
	platforms, err := source.CountByPlatform(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read platform totals: %w", err)
	}
	recent, err := source.Recent(ctx, limit)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read recent searches: %w", err)
	}
	return Snapshot{Total: total, Platforms: platforms, Recent: recent, FetchedAt: time.Now()}, nil
}

func (m *Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("tunelink monitor"))
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString(styles.help.Render("loading..."))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render("Links served"), styles.count.Render(fmt.Sprintf("%d", m.snapshot.Total)))

		names := make([]string, 0, len(m.snapshot.Platforms))
		for name := range m.snapshot.Platforms {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%s %d\n", styles.label.Render(name), m.snapshot.Platforms[name])
		}
		b.WriteString(styles.help.Render("updated " + m.snapshot.FetchedAt.Format("15:04:05")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderList() string {
	body := m.searches.View()
	if m.loaded && len(m.snapshot.Recent) == 0 {
		body = styles.warn.Render("No searches recorded yet.")
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.renderHeader(), body, m.help.View(m.keys))
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return m.renderList()
	}
	e := m.selected

	var b strings.Builder
	b.WriteString(styles.title.Render(searchItem{entry: *e}.Title()))
	b.WriteString("\n")
	rows := [][2]string{
		{"ID", e.ID},
		{"Guild", e.GuildID},
		{"Platform", e.Platform},
		{"Link", e.Link},
		{"Time", e.CreatedAt.Local().Format(time.RFC1123)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(row[0]), row[1])
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
