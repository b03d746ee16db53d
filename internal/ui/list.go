package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/tunelink/internal/models"
)

var _ list.Item = searchItem{}

// searchItem wraps [models.SearchEntry] to implement [list.Item].
type searchItem struct {
	entry models.SearchEntry
}

func (i searchItem) FilterValue() string { return i.entry.Title + " " + i.entry.Artist }

func (i searchItem) Title() string {
	if i.entry.Artist == "" {
		return i.entry.Title
	}
	return fmt.Sprintf("%s - %s", i.entry.Artist, i.entry.Title)
}

func (i searchItem) Description() string {
	return fmt.Sprintf("%s • %s", i.entry.Platform, i.entry.CreatedAt.Local().Format("Jan 2 15:04:05"))
}

func searchItems(entries []models.SearchEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = searchItem{entry: e}
	}
	return items
}
