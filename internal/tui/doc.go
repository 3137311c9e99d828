// Package tui implements the terminal client for kbase.
//
// # Overview
//
// The client is a bubbletea program with three topic tabs and two panes,
// one for Q&A entries and one for the reading list. All data access goes
// through a session.Session, so the TUI never talks to the server directly
// and inherits the session's caching, staleness, and offline behavior.
//
// # Structure
//
//   - app.go: the tea.Model, key handling, and async commands
//   - views.go: pure rendering helpers
//   - styles.go: the lipgloss palette
//   - messages.go: message types produced by commands
package tui
