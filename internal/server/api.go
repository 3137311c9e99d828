// ABOUTME: HTTP API handlers for QA entries, reading entries, and link summarization.
// ABOUTME: All endpoints speak the {success, data | error, message} envelope.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/wenli/kbase/internal/store"
	"github.com/wenli/kbase/internal/summarize"
)

// apiResponse is the envelope wrapping every API payload.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// QAEntryResponse is the wire form of a QA entry.
type QAEntryResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// CreateQARequest is the JSON request body for POST /api/qa.
type CreateQARequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdateQARequest is the JSON request body for PUT /api/qa.
type UpdateQARequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}

// ReadingEntryResponse is the wire form of a reading entry.
type ReadingEntryResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Link      string `json:"link,omitempty"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Title     string `json:"title,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// CreateReadingRequest is the JSON request body for POST /api/reading.
type CreateReadingRequest struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Link     string `json:"link,omitempty"`
	Title    string `json:"title,omitempty"`
}

// UpdateReadingRequest is the JSON request body for PUT /api/reading.
type UpdateReadingRequest struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Link     string `json:"link,omitempty"`
	Title    string `json:"title,omitempty"`
}

// SummarizeRequest is the JSON request body for POST /api/summarize.
type SummarizeRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// SummarizeResponse is the JSON response for POST /api/summarize.
type SummarizeResponse struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	OriginalURL string `json:"original_url"`
}

func qaToResponse(e *store.QAEntry) QAEntryResponse {
	resp := QAEntryResponse{
		ID:       e.ID,
		Title:    e.Title,
		Content:  e.Content,
		Category: string(e.Category),
		Tags:     e.Tags,
	}
	if !e.CreatedAt.IsZero() {
		resp.Timestamp = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func readingToResponse(e *store.ReadingEntry) ReadingEntryResponse {
	resp := ReadingEntryResponse{
		ID:       e.ID,
		Text:     e.Text,
		Link:     e.Link,
		Type:     string(e.Kind),
		Category: string(e.Category),
		Title:    e.Title,
	}
	if !e.CreatedAt.IsZero() {
		resp.Timestamp = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// writeJSON writes the envelope with the given status code.
func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Debug("encoding response failed", "error", err)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, apiResponse{Success: false, Error: errCode, Message: message})
}

// writeStoreError maps store failures onto the envelope. The surface uses
// only 400 and 500; a missing entry is a 500 with the not_found code so
// clients can still tell the cases apart.
func (s *Server) writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "not_found", "entry not found")
		return
	}
	s.logger.Error("store operation failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal", "unexpected error")
}

// handleQA routes /api/qa by method.
func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListQA(w, r)
	case http.MethodPost:
		s.handleCreateQA(w, r)
	case http.MethodPut:
		s.handleUpdateQA(w, r)
	case http.MethodDelete:
		s.handleDeleteQA(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListQA handles GET /api/qa?category=X.
// Without a category it returns entries across all categories.
func (s *Server) handleListQA(w http.ResponseWriter, r *http.Request) {
	category, ok := s.optionalCategory(w, r.URL.Query().Get("category"))
	if !ok {
		return
	}

	entries, err := s.store.ListQA(r.Context(), category)
	if err != nil {
		s.writeStoreError(w, "list qa", err)
		return
	}

	resp := make([]QAEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, qaToResponse(e))
	}
	writeData(w, resp)
}

func (s *Server) handleCreateQA(w http.ResponseWriter, r *http.Request) {
	var req CreateQARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Title == "" || req.Content == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "title, content, and category are required")
		return
	}
	category, err := store.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
		return
	}

	created, err := s.store.CreateQA(r.Context(), &store.QAEntry{
		Title:    store.TruncateField(req.Title),
		Content:  store.TruncateField(req.Content),
		Category: category,
		Tags:     req.Tags,
	})
	if err != nil {
		s.writeStoreError(w, "create qa", err)
		return
	}
	writeData(w, qaToResponse(created))
}

func (s *Server) handleUpdateQA(w http.ResponseWriter, r *http.Request) {
	var req UpdateQARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.ID == "" || req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "id, title, and content are required")
		return
	}
	var category store.Category
	if req.Category != "" {
		var err error
		category, err = store.ParseCategory(req.Category)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
			return
		}
	}

	entry := &store.QAEntry{
		ID:       req.ID,
		Title:    store.TruncateField(req.Title),
		Content:  store.TruncateField(req.Content),
		Category: category,
		Tags:     req.Tags,
	}
	if err := s.store.UpdateQA(r.Context(), entry); err != nil {
		s.writeStoreError(w, "update qa", err)
		return
	}
	writeData(w, qaToResponse(entry))
}

func (s *Server) handleDeleteQA(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "id query parameter is required")
		return
	}
	if err := s.store.ArchiveQA(r.Context(), id); err != nil {
		s.writeStoreError(w, "archive qa", err)
		return
	}
	writeData(w, map[string]string{"id": id})
}

// handleReading routes /api/reading by method.
func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListReading(w, r)
	case http.MethodPost:
		s.handleCreateReading(w, r)
	case http.MethodPut:
		s.handleUpdateReading(w, r)
	case http.MethodDelete:
		s.handleDeleteReading(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListReading(w http.ResponseWriter, r *http.Request) {
	category, ok := s.optionalCategory(w, r.URL.Query().Get("category"))
	if !ok {
		return
	}

	entries, err := s.store.ListReading(r.Context(), category)
	if err != nil {
		s.writeStoreError(w, "list reading", err)
		return
	}

	resp := make([]ReadingEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, readingToResponse(e))
	}
	writeData(w, resp)
}

func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req CreateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Text == "" || req.Type == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "text, type, and category are required")
		return
	}
	category, err := store.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
		return
	}
	kind, err := store.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_type", err.Error())
		return
	}

	created, err := s.store.CreateReading(r.Context(), &store.ReadingEntry{
		Text:     store.TruncateField(req.Text),
		Link:     req.Link,
		Kind:     kind,
		Category: category,
		Title:    store.TruncateField(req.Title),
	})
	if err != nil {
		s.writeStoreError(w, "create reading", err)
		return
	}
	writeData(w, readingToResponse(created))
}

func (s *Server) handleUpdateReading(w http.ResponseWriter, r *http.Request) {
	var req UpdateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.ID == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "id and text are required")
		return
	}
	var category store.Category
	if req.Category != "" {
		var err error
		category, err = store.ParseCategory(req.Category)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
			return
		}
	}
	var kind store.Kind
	if req.Type != "" {
		var err error
		kind, err = store.ParseKind(req.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_type", err.Error())
			return
		}
	}

	entry := &store.ReadingEntry{
		ID:       req.ID,
		Text:     store.TruncateField(req.Text),
		Link:     req.Link,
		Kind:     kind,
		Category: category,
		Title:    store.TruncateField(req.Title),
	}
	if err := s.store.UpdateReading(r.Context(), entry); err != nil {
		s.writeStoreError(w, "update reading", err)
		return
	}
	writeData(w, readingToResponse(entry))
}

func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "id query parameter is required")
		return
	}
	if err := s.store.ArchiveReading(r.Context(), id); err != nil {
		s.writeStoreError(w, "archive reading", err)
		return
	}
	writeData(w, map[string]string{"id": id})
}

// handleSummarize handles POST /api/summarize.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.URL == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "url and category are required")
		return
	}
	category, err := store.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
		return
	}

	res, err := s.summarizer.Summarize(r.Context(), req.URL, category)
	if err != nil {
		if errors.Is(err, summarize.ErrInvalidURL) {
			writeError(w, http.StatusBadRequest, "invalid_url", "url is not a valid http(s) URL")
			return
		}
		s.logger.Error("summarize failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "unexpected error")
		return
	}

	writeData(w, SummarizeResponse{
		Title:       res.Title,
		Summary:     res.Summary,
		OriginalURL: res.OriginalURL,
	})
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// optionalCategory parses the category query parameter, writing a 400 and
// returning false when the value is present but invalid. An empty value
// means "all categories".
func (s *Server) optionalCategory(w http.ResponseWriter, raw string) (store.Category, bool) {
	if raw == "" {
		return "", true
	}
	category, err := store.ParseCategory(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
		return "", false
	}
	return category, true
}

// Summarizer produces link summaries for the /api/summarize endpoint.
type Summarizer interface {
	Summarize(ctx context.Context, rawURL string, category store.Category) (*summarize.Result, error)
}
