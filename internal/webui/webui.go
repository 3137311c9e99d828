// ABOUTME: Server-rendered web UI for browsing the knowledge base by topic tab.
// ABOUTME: Renders entry content through the richtext pipeline and help docs through goldmark.

package webui

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/wenli/kbase/internal/richtext"
	"github.com/wenli/kbase/internal/store"
)

// Entries longer than this many runes start collapsed with an expand control.
const collapseThreshold = 150

// WebUI serves the HTML pages. It reads the store directly; the REST API is
// for programmatic clients.
type WebUI struct {
	store  store.Store
	logger *slog.Logger
	mux    *http.ServeMux

	indexTmpl *template.Template
	helpTmpl  *template.Template
}

// New creates the web UI over the given store. Templates are parsed once
// here; a broken embedded template fails at startup, not per request.
func New(s store.Store, logger *slog.Logger) *WebUI {
	if logger == nil {
		logger = slog.Default()
	}
	ui := &WebUI{
		store:     s,
		logger:    logger.With("component", "webui"),
		indexTmpl: template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/index.html")),
		helpTmpl:  template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/help.html")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", ui.handleIndex)
	mux.HandleFunc("/help", ui.handleHelp)
	ui.mux = mux
	return ui
}

// ServeHTTP implements http.Handler.
func (ui *WebUI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ui.mux.ServeHTTP(w, r)
}

// qaView is a QA entry prepared for the template.
type qaView struct {
	ID        string
	Title     string
	Content   template.HTML
	Preview   template.HTML
	Collapsed bool
	Tags      []string
	Timestamp string
}

// readingView is a reading entry prepared for the template.
type readingView struct {
	ID        string
	Text      template.HTML
	Link      string
	Title     string
	Timestamp string
}

// tabView is one topic tab header.
type tabView struct {
	Category store.Category
	Label    string
	Active   bool
}

type indexData struct {
	Tabs     []tabView
	Active   store.Category
	QA       []qaView
	Required []readingView
	Optional []readingView
}

// handleIndex handles GET /?category=X, defaulting to the strategy tab.
func (ui *WebUI) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	active := store.CategoryStrategy
	if raw := r.URL.Query().Get("category"); raw != "" {
		parsed, err := store.ParseCategory(raw)
		if err != nil {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		active = parsed
	}

	qaEntries, err := ui.store.ListQA(r.Context(), active)
	if err != nil {
		ui.logger.Error("listing qa entries", "category", active, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	readingEntries, err := ui.store.ListReading(r.Context(), active)
	if err != nil {
		ui.logger.Error("listing reading entries", "category", active, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := indexData{Active: active}
	for _, cat := range store.Categories {
		data.Tabs = append(data.Tabs, tabView{
			Category: cat,
			Label:    cat.RemoteName(),
			Active:   cat == active,
		})
	}
	for _, e := range qaEntries {
		data.QA = append(data.QA, qaToView(e))
	}
	for _, e := range readingEntries {
		view := readingToView(e)
		if e.Kind == store.KindRequired {
			data.Required = append(data.Required, view)
		} else {
			data.Optional = append(data.Optional, view)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.indexTmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		ui.logger.Error("rendering index", "error", err)
	}
}

// handleHelp handles GET /help, rendering the embedded usage doc.
func (ui *WebUI) handleHelp(w http.ResponseWriter, r *http.Request) {
	mdContent, err := helpDocsFS.ReadFile("docs/usage.md")
	if err != nil {
		ui.logger.Error("reading help doc", "error", err)
		mdContent = []byte("# Not Found\n\nThe help document could not be found.")
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert(mdContent, &htmlBuf); err != nil {
		ui.logger.Error("converting help markdown", "error", err)
		htmlBuf.WriteString("<p>Failed to render help content.</p>")
	}

	data := struct {
		Content template.HTML
	}{
		Content: template.HTML(htmlBuf.String()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.helpTmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		ui.logger.Error("rendering help", "error", err)
	}
}

func qaToView(e *store.QAEntry) qaView {
	collapsed := len([]rune(e.Content)) > collapseThreshold

	view := qaView{
		ID:        e.ID,
		Title:     e.Title,
		Content:   template.HTML(richtext.Render(e.Content, true)),
		Collapsed: collapsed,
		Tags:      e.Tags,
		Timestamp: e.CreatedAt.Format("2006-01-02"),
	}
	if collapsed {
		runes := []rune(e.Content)
		view.Preview = template.HTML(richtext.Render(string(runes[:collapseThreshold])+"...", false))
	}
	return view
}

func readingToView(e *store.ReadingEntry) readingView {
	return readingView{
		ID:        e.ID,
		Text:      template.HTML(richtext.Render(e.Text, false)),
		Link:      e.Link,
		Title:     e.Title,
		Timestamp: e.CreatedAt.Format("2006-01-02"),
	}
}
