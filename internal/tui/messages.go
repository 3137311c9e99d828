// ABOUTME: Message types passed between TUI commands and the update loop
// ABOUTME: Each async session operation completes as one of these

package tui

import (
	"github.com/wenli/kbase/internal/session"
	"github.com/wenli/kbase/internal/store"
)

type tabLoadedMsg struct {
	category store.Category
	entry    *session.Entry
	err      error
}

type mutationDoneMsg struct {
	status string
	err    error
}

type startedMsg struct {
	err error
}
