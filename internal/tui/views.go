// ABOUTME: Pure rendering helpers for the TUI lists, tabs, and items
// ABOUTME: Kept free of model state so they can be tested directly

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wenli/kbase/internal/store"
)

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// firstLine collapses an entry's content to its first non-empty line.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func renderTabs(active store.Category, loading map[store.Category]bool) string {
	var tabs []string
	for _, cat := range store.Categories {
		label := cat.RemoteName()
		if loading[cat] {
			label += " …"
		}
		if cat == active {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderQAItem(e *store.QAEntry, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(e.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(e.Title, width-4))
	}

	body := "  " + itemBodyStyle.Render(truncateStr(firstLine(e.Content), width-4))
	meta := "  " + itemTimeStyle.Render(relativeTime(e.CreatedAt))
	if len(e.Tags) > 0 {
		meta += " " + itemKindStyle.Render("#"+strings.Join(e.Tags, " #"))
	}

	return title + "\n" + body + "\n" + meta
}

func renderQAList(entries []*store.QAEntry, cursor, height, width int) string {
	if len(entries) == 0 {
		return centered("No entries yet. Press a to add one.", width, height)
	}

	// Each item is 3 lines + 1 blank line
	itemHeight := 4
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(entries) {
		end = len(entries)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderQAItem(entries[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func renderReadingItem(e *store.ReadingEntry, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	text := e.Title
	if text == "" {
		text = firstLine(e.Text)
	}

	var line string
	if selected {
		line = itemSelectedStyle.Render("> " + truncateStr(text, width-4))
	} else {
		line = "  " + truncateStr(text, width-4)
	}

	meta := "  " + itemKindStyle.Render(string(e.Kind)) + " " + itemTimeStyle.Render("· "+relativeTime(e.CreatedAt))
	if e.Link != "" {
		meta += " " + itemTimeStyle.Render("· link")
	}

	return line + "\n" + meta
}

func renderReadingList(entries []*store.ReadingEntry, cursor, height, width int) string {
	if len(entries) == 0 {
		return centered("Reading list is empty. Press a to add.", width, height)
	}

	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(entries) {
		end = len(entries)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderReadingItem(entries[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func centered(s string, width, height int) string {
	if width <= len(s) {
		return s
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", (width-len(s))/2) + s
}
