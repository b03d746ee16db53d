package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunelink/internal/models"
)

type fakeSource struct {
	total     int64
	platforms map[string]int64
	recent    []models.SearchEntry
	err       error
	limit     int
}

func (f *fakeSource) Count(context.Context) (int64, error) { return f.total, f.err }

func (f *fakeSource) CountByPlatform(context.Context) (map[string]int64, error) {
	return f.platforms, f.err
}

func (f *fakeSource) Recent(_ context.Context, limit int) ([]models.SearchEntry, error) {
	f.limit = limit
	return f.recent, f.err
}

func newSource() *fakeSource {
	return &fakeSource{
		total:     7,
		platforms: map[string]int64{"spotify-track": 5, "soundcloud": 2},
		recent: []models.SearchEntry{
			{ID: "s1", GuildID: "g1", Platform: "spotify-track", Link: "https://open.spotify.com/track/1", Title: "Song", Artist: "Band", CreatedAt: time.Now()},
		},
	}
}

func loadedModel(t *testing.T, source *fakeSource) *Model {
	t.Helper()
	m := NewModel(context.Background(), source, time.Minute, 10)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.fetchSnapshot()())
	return m
}

func TestReadSnapshot(t *testing.T) {
	t.Run("collects all reads", func(t *testing.T) {
		source := newSource()
		s, err := ReadSnapshot(context.Background(), source, 25)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Total != 7 || len(s.Recent) != 1 || s.Platforms["soundcloud"] != 2 {
			t.Errorf("unexpected snapshot: %+v", s)
		}
		if source.limit != 25 {
			t.Errorf("limit = %d, want 25", source.limit)
		}
	})

	t.Run("returns the read error", func(t *testing.T) {
		source := &fakeSource{err: errors.New("database is locked")}
		if _, err := ReadSnapshot(context.Background(), source, 10); err == nil {
			t.Error("expected error")
		}
	})
}

func TestModel(t *testing.T) {
	t.Run("renders counter and platforms", func(t *testing.T) {
		m := loadedModel(t, newSource())
		view := m.View()

		for _, want := range []string{"Links served", "7", "spotify-track", "soundcloud", "Band - Song"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("shows loading before the first snapshot", func(t *testing.T) {
		m := NewModel(context.Background(), newSource(), time.Minute, 10)
		if !strings.Contains(m.View(), "loading") {
			t.Error("expected loading indicator")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		source := newSource()
		source.recent = nil
		m := loadedModel(t, source)
		if !strings.Contains(m.View(), "No searches recorded yet.") {
			t.Error("expected empty state")
		}
	})

	t.Run("enter opens details and esc goes back", func(t *testing.T) {
		m := loadedModel(t, newSource())

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != DetailView {
			t.Fatalf("view = %v, want DetailView", m.view)
		}
		if !strings.Contains(m.View(), "https://open.spotify.com/track/1") {
			t.Error("detail should show the link")
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != SearchListView || m.selected != nil {
			t.Error("esc should return to the list")
		}
	})

	t.Run("fetch error keeps last snapshot", func(t *testing.T) {
		source := newSource()
		m := loadedModel(t, source)

		m.Update(snapshotFetchedMsg(Snapshot{}, errors.New("database is locked")))
		if m.snapshot.Total != 7 {
			t.Errorf("snapshot was replaced: %+v", m.snapshot)
		}
		if !strings.Contains(m.View(), "database is locked") {
			t.Error("expected error in view")
		}
	})

	t.Run("tick schedules a refresh", func(t *testing.T) {
		m := loadedModel(t, newSource())
		_, cmd := m.Update(tickMsg(time.Now()))
		if cmd == nil {
			t.Error("tick should return a command")
		}
	})

	t.Run("q quits", func(t *testing.T) {
		m := loadedModel(t, newSource())
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
