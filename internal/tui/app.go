// ABOUTME: Bubbletea application model for the kbase terminal client
// ABOUTME: Handles tabs, panes, forms, search, and session-backed mutations

package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wenli/kbase/internal/session"
	"github.com/wenli/kbase/internal/store"
)

type focusPane int

const (
	focusQA focusPane = iota
	focusReading
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeSearchResults
	modeNewQA
	modeNewReading
	modeEditQA
	modeEditReading
	modeConfirmDelete
	modeHelp
)

const requestTimeout = 15 * time.Second

type App struct {
	sess  *session.Session
	entry *session.Entry

	active store.Category
	focus  focusPane
	mode   mode

	qaCursor      int
	readingCursor int

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	titleInput  textinput.Model
	bodyInput   textinput.Model
	formFocus   int
	readingKind store.Kind

	editingQA      *store.QAEntry
	editingReading *store.ReadingEntry

	// State
	loading       bool
	status        string
	err           error
	searchResults []*store.QAEntry
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Session *session.Session
}

func NewApp(opts RunOpts) *App {
	si := textinput.New()
	si.Placeholder = "Search all cached entries..."
	si.Prompt = searchPromptStyle.Render("/ ")
	si.CharLimit = 100

	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 200

	bi := textinput.New()
	bi.Placeholder = "Content (or paste a URL for reading items)"
	bi.CharLimit = 500

	return &App{
		sess:        opts.Session,
		active:      store.CategoryStrategy,
		searchInput: si,
		titleInput:  ti,
		bodyInput:   bi,
		readingKind: store.KindOptional,
		loading:     true,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.startCmd(), a.newSpinnerTick())
}

func (a *App) newSpinnerTick() tea.Cmd {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle
	return sp.Tick
}

func (a *App) startCmd() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return startedMsg{err: sess.Start(ctx)}
	}
}

// loadTabCmd switches the session to a category and reports its entries.
func (a *App) loadTabCmd(category store.Category) tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		entry, err := sess.SwitchTab(ctx, category)
		return tabLoadedMsg{category: category, entry: entry, err: err}
	}
}

func (a *App) refreshCmd() tea.Cmd {
	sess := a.sess
	category := a.active
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := sess.Refresh(ctx, category); err != nil {
			return tabLoadedMsg{category: category, err: err}
		}
		entry, _ := sess.Entries(category)
		return tabLoadedMsg{category: category, entry: entry}
	}
}

func (a *App) addQACmd(title, content string) tea.Cmd {
	sess := a.sess
	category := a.active
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := sess.AddQA(ctx, &store.QAEntry{
			Title:    title,
			Content:  content,
			Category: category,
		})
		return mutationDoneMsg{status: "entry added", err: err}
	}
}

func (a *App) addReadingCmd(text string, kind store.Kind) tea.Cmd {
	sess := a.sess
	category := a.active
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := sess.AddReading(ctx, &store.ReadingEntry{
			Text:     text,
			Kind:     kind,
			Category: category,
		})
		status := "reading item added"
		if err == nil && res.Summarized {
			status = "link summarized and added"
		}
		return mutationDoneMsg{status: status, err: err}
	}
}

func (a *App) updateQACmd(entry *store.QAEntry) tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := sess.UpdateQA(ctx, entry)
		return mutationDoneMsg{status: "entry updated", err: err}
	}
}

func (a *App) updateReadingCmd(entry *store.ReadingEntry) tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := sess.UpdateReading(ctx, entry)
		return mutationDoneMsg{status: "reading item updated", err: err}
	}
}

func (a *App) deleteSelectedCmd() tea.Cmd {
	sess := a.sess
	focus := a.focus
	var id string
	if focus == focusQA {
		if e := a.selectedQA(); e != nil {
			id = e.ID
		}
	} else {
		if e := a.selectedReading(); e != nil {
			id = e.ID
		}
	}
	if id == "" {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		if focus == focusQA {
			err = sess.DeleteQA(ctx, id)
		} else {
			err = sess.DeleteReading(ctx, id)
		}
		return mutationDoneMsg{status: "entry deleted", err: err}
	}
}

func (a *App) selectedQA() *store.QAEntry {
	if a.entry == nil || a.qaCursor >= len(a.entry.QA) {
		return nil
	}
	return a.entry.QA[a.qaCursor]
}

func (a *App) selectedReading() *store.ReadingEntry {
	if a.entry == nil || a.readingCursor >= len(a.entry.Reading) {
		return nil
	}
	return a.entry.Reading[a.readingCursor]
}

func (a *App) syncEntry() {
	if entry, ok := a.sess.Entries(a.active); ok {
		a.entry = entry
	}
	if a.entry != nil {
		if a.qaCursor >= len(a.entry.QA) {
			a.qaCursor = max(0, len(a.entry.QA)-1)
		}
		if a.readingCursor >= len(a.entry.Reading) {
			a.readingCursor = max(0, len(a.entry.Reading)-1)
		}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.err = nil
		return a.handleKey(msg)

	case startedMsg:
		if msg.err != nil {
			a.err = msg.err
			a.loading = false
			return a, nil
		}
		if !a.sess.RemoteAvailable() {
			a.status = "offline: changes stay local"
		}
		return a, a.loadTabCmd(a.active)

	case tabLoadedMsg:
		if msg.category != a.active {
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.entry = msg.entry
		a.syncEntry()
		return a, nil

	case mutationDoneMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.status = msg.status
		}
		a.syncEntry()
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			return a, a.newSpinnerTick()
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeSearchResults:
		return a.handleSearchResultsKey(msg)
	case modeNewQA, modeEditQA:
		return a.handleNewQAKey(msg)
	case modeNewReading, modeEditReading:
		return a.handleNewReadingKey(msg)
	case modeConfirmDelete:
		return a.handleConfirmDeleteKey(msg)
	case modeHelp:
		if s := msg.String(); s == "?" || s == "esc" || s == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "1", "2", "3":
		idx := int(msg.String()[0] - '1')
		return a.switchTab(store.Categories[idx])
	case "tab":
		if a.focus == focusQA {
			a.focus = focusReading
		} else {
			a.focus = focusQA
		}
		return a, nil
	case "j", "down":
		if a.focus == focusQA {
			if a.entry != nil && a.qaCursor < len(a.entry.QA)-1 {
				a.qaCursor++
			}
		} else {
			if a.entry != nil && a.readingCursor < len(a.entry.Reading)-1 {
				a.readingCursor++
			}
		}
		return a, nil
	case "k", "up":
		if a.focus == focusQA && a.qaCursor > 0 {
			a.qaCursor--
		} else if a.focus == focusReading && a.readingCursor > 0 {
			a.readingCursor--
		}
		return a, nil
	case "J":
		// Move the selected QA entry down (session-local ordering)
		if a.focus == focusQA && a.entry != nil && a.qaCursor < len(a.entry.QA)-1 {
			if err := a.sess.ReorderQA(a.active, a.qaCursor, a.qaCursor+1); err == nil {
				a.qaCursor++
				a.syncEntry()
			}
		}
		return a, nil
	case "K":
		if a.focus == focusQA && a.qaCursor > 0 {
			if err := a.sess.ReorderQA(a.active, a.qaCursor, a.qaCursor-1); err == nil {
				a.qaCursor--
				a.syncEntry()
			}
		}
		return a, nil
	case "a":
		if a.focus == focusQA {
			a.mode = modeNewQA
			a.formFocus = 0
			a.titleInput.SetValue("")
			a.bodyInput.SetValue("")
			a.titleInput.Focus()
			return a, textinput.Blink
		}
		a.mode = modeNewReading
		a.bodyInput.SetValue("")
		a.bodyInput.Focus()
		return a, textinput.Blink
	case "e":
		if a.focus == focusQA {
			e := a.selectedQA()
			if e == nil {
				return a, nil
			}
			a.mode = modeEditQA
			a.editingQA = e
			a.formFocus = 0
			a.titleInput.SetValue(e.Title)
			a.bodyInput.SetValue(e.Content)
			a.titleInput.Focus()
			return a, textinput.Blink
		}
		e := a.selectedReading()
		if e == nil {
			return a, nil
		}
		a.mode = modeEditReading
		a.editingReading = e
		a.readingKind = e.Kind
		a.bodyInput.SetValue(e.Text)
		a.bodyInput.Focus()
		return a, textinput.Blink
	case "d":
		if (a.focus == focusQA && a.selectedQA() != nil) ||
			(a.focus == focusReading && a.selectedReading() != nil) {
			a.mode = modeConfirmDelete
		}
		return a, nil
	case "r":
		if !a.loading {
			a.loading = true
			return a, tea.Batch(a.refreshCmd(), a.newSpinnerTick())
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.SetValue("")
		a.searchInput.Focus()
		return a, textinput.Blink
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) switchTab(category store.Category) (tea.Model, tea.Cmd) {
	if category == a.active {
		return a, nil
	}
	a.active = category
	a.qaCursor = 0
	a.readingCursor = 0

	// A fresh cache hit renders immediately with no network traffic
	if entry, ok := a.sess.Entries(category); ok && !a.sess.IsLoading(category) {
		a.entry = entry
	}
	a.loading = true
	return a, tea.Batch(a.loadTabCmd(category), a.newSpinnerTick())
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	case "enter":
		a.searchResults = a.sess.SearchQA(a.searchInput.Value())
		a.mode = modeSearchResults
		a.searchInput.Blur()
		a.qaCursor = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleSearchResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.mode = modeNormal
		a.searchResults = nil
		a.qaCursor = 0
		return a, nil
	case "j", "down":
		if a.qaCursor < len(a.searchResults)-1 {
			a.qaCursor++
		}
		return a, nil
	case "k", "up":
		if a.qaCursor > 0 {
			a.qaCursor--
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleNewQAKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.editingQA = nil
		a.titleInput.Blur()
		a.bodyInput.Blur()
		return a, nil
	case "tab":
		if a.formFocus == 0 {
			a.formFocus = 1
			a.titleInput.Blur()
			a.bodyInput.Focus()
		} else {
			a.formFocus = 0
			a.bodyInput.Blur()
			a.titleInput.Focus()
		}
		return a, textinput.Blink
	case "enter":
		if a.formFocus == 0 {
			a.formFocus = 1
			a.titleInput.Blur()
			a.bodyInput.Focus()
			return a, textinput.Blink
		}
		title, content := a.titleInput.Value(), a.bodyInput.Value()
		if title == "" || content == "" {
			a.err = fmt.Errorf("title and content are required")
			return a, nil
		}
		a.mode = modeNormal
		a.bodyInput.Blur()
		if a.editingQA != nil {
			updated := *a.editingQA
			updated.Title = title
			updated.Content = content
			a.editingQA = nil
			return a, a.updateQACmd(&updated)
		}
		return a, a.addQACmd(title, content)
	}

	var cmd tea.Cmd
	if a.formFocus == 0 {
		a.titleInput, cmd = a.titleInput.Update(msg)
	} else {
		a.bodyInput, cmd = a.bodyInput.Update(msg)
	}
	return a, cmd
}

func (a *App) handleNewReadingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.editingReading = nil
		a.bodyInput.Blur()
		return a, nil
	case "ctrl+t":
		if a.readingKind == store.KindOptional {
			a.readingKind = store.KindRequired
		} else {
			a.readingKind = store.KindOptional
		}
		return a, nil
	case "enter":
		text := a.bodyInput.Value()
		if text == "" {
			a.err = fmt.Errorf("text is required")
			return a, nil
		}
		a.mode = modeNormal
		a.bodyInput.Blur()
		if a.editingReading != nil {
			updated := *a.editingReading
			updated.Text = text
			updated.Kind = a.readingKind
			a.editingReading = nil
			return a, a.updateReadingCmd(&updated)
		}
		return a, a.addReadingCmd(text, a.readingKind)
	}

	var cmd tea.Cmd
	a.bodyInput, cmd = a.bodyInput.Update(msg)
	return a, cmd
}

func (a *App) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		a.mode = modeNormal
		return a, a.deleteSelectedCmd()
	case "n", "esc":
		a.mode = modeNormal
		return a, nil
	}
	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  kbase")
	}

	if a.mode == modeHelp {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.renderHelp())
	}

	header := headerStyle.Render("kbase")
	loadingMap := map[store.Category]bool{}
	for _, cat := range store.Categories {
		loadingMap[cat] = a.sess.IsLoading(cat)
	}
	tabs := renderTabs(a.active, loadingMap)

	contentHeight := a.height - 6
	if contentHeight < 3 {
		contentHeight = 3
	}
	qaWidth := int(float64(a.width) * 0.55)
	readingWidth := a.width - qaWidth - 1

	var qaContent string
	if a.mode == modeSearchResults {
		qaContent = renderQAList(a.searchResults, a.qaCursor, contentHeight, qaWidth-4)
	} else if a.entry != nil {
		qaContent = renderQAList(a.entry.QA, a.qaCursor, contentHeight, qaWidth-4)
	}

	var readingContent string
	if a.entry != nil {
		readingContent = renderReadingList(a.entry.Reading, a.readingCursor, contentHeight, readingWidth-4)
	}

	var qaPane, readingPane string
	if a.focus == focusQA {
		qaPane = paneActiveStyle.Width(qaWidth - 2).Height(contentHeight).Render(qaContent)
		readingPane = paneStyle.Width(readingWidth - 2).Height(contentHeight).Render(readingContent)
	} else {
		qaPane = paneStyle.Width(qaWidth - 2).Height(contentHeight).Render(qaContent)
		readingPane = paneActiveStyle.Width(readingWidth - 2).Height(contentHeight).Render(readingContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, qaPane, readingPane)

	var inputLine string
	switch a.mode {
	case modeSearch:
		inputLine = a.searchInput.View()
	case modeNewQA:
		inputLine = formLabelStyle.Render("new entry  ") + a.titleInput.View() + "  " + a.bodyInput.View()
	case modeEditQA:
		inputLine = formLabelStyle.Render("edit entry  ") + a.titleInput.View() + "  " + a.bodyInput.View()
	case modeNewReading:
		inputLine = formLabelStyle.Render(fmt.Sprintf("new %s reading  ", a.readingKind)) + a.bodyInput.View() +
			formLabelStyle.Render("  ctrl+t toggles type")
	case modeEditReading:
		inputLine = formLabelStyle.Render(fmt.Sprintf("edit %s reading  ", a.readingKind)) + a.bodyInput.View() +
			formLabelStyle.Render("  ctrl+t toggles type")
	case modeConfirmDelete:
		inputLine = itemSelectedStyle.Render("delete selected entry? y/n")
	case modeSearchResults:
		inputLine = formLabelStyle.Render(fmt.Sprintf("%d results across cached tabs  esc to clear", len(a.searchResults)))
	}

	status := a.renderStatus()
	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, inputLine, status)
}

func (a *App) renderStatus() string {
	if a.err != nil {
		return lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	hints := "1/2/3 tabs  tab pane  a add  e edit  d delete  / search  r refresh  ? help  q quit"
	line := hints
	if a.status != "" {
		line = a.status + "  ·  " + hints
	}
	if a.loading {
		line = "loading…  " + line
	}
	return statusBarStyle.Width(a.width).Render(truncateStr(line, a.width-2))
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("kbase")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Tabs") + "\n" +
		"  1 / 2 / 3     Strategy, Product, Technology\n" +
		"  r             Refresh the active tab\n\n" +
		dim.Render("Navigation") + "\n" +
		"  tab           Switch between Q&A and reading panes\n" +
		"  j/k, ↑/↓     Move the cursor\n" +
		"  J/K           Reorder Q&A entries (local only)\n\n" +
		dim.Render("Entries") + "\n" +
		"  a             Add to the focused pane\n" +
		"  e             Edit the selected entry\n" +
		"  d             Delete the selected entry\n" +
		"  /             Search cached entries\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	return helpCardStyle.Render(help)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
