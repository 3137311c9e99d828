// Package summarize produces short descriptions of web links for the
// reading list. It fetches the target page, pulls the <title> and meta
// description, and frames the description with the entry's topic
// category. Scrape failures never propagate as errors; the caller gets
// a generic fallback summary so a dead link can still be saved.
package summarize
