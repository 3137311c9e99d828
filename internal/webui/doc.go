// Package webui renders the server-side HTML pages for browsing the
// knowledge base: the three topic tabs with their Q&A and reading lists,
// and a help page generated from embedded markdown. Entry content goes
// through the richtext pipeline; entries over 150 runes start collapsed.
package webui
