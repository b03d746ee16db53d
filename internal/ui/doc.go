// Package ui implements the terminal monitor for a running bot using bubbletea's Elm architecture.
//
// The monitor reads the shared database and shows:
//  1. [SearchListView] : the search counter, per-platform totals and recent searches
//  2. [DetailView] : one search with its guild, platform and link
//
// The [Model] refreshes on a [tea.Tick] interval. Snapshots arrive as [Msg] values so a slow
// database never blocks rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with help from charmbracelet/bubbles/help.
package ui
