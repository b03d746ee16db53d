package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunelink/internal/models"
)

// MsgKind enumerates all message types in the monitor.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgSnapshotFetched MsgKind = iota
	MsgTick
)

// Snapshot is one read of the search tables.
type Snapshot struct {
	Total     int64
	Platforms map[string]int64
	Recent    []models.SearchEntry
	FetchedAt time.Time
}

type snapshotResult struct {
	snapshot Snapshot
	err      error
}

// snapshotFetchedMsg is the constructor for [MsgSnapshotFetched]
func snapshotFetchedMsg(s Snapshot, err error) Msg {
	return Msg{kind: MsgSnapshotFetched, data: snapshotResult{s, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}
