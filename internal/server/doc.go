// Package server exposes the knowledge base over HTTP.
//
// # Overview
//
// The server fronts a store.Store with a small REST API and optionally
// mounts the web UI at the root. Every API response is wrapped in a
// uniform envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": "missing_fields", "message": "..."}
//
// # Endpoints
//
//	GET    /api/qa?category=X        list QA entries (newest first)
//	POST   /api/qa                   create a QA entry
//	PUT    /api/qa                   update a QA entry
//	DELETE /api/qa?id=X              archive a QA entry
//
//	GET    /api/reading?category=X   list reading entries
//	POST   /api/reading              create a reading entry
//	PUT    /api/reading              update a reading entry
//	DELETE /api/reading?id=X         archive a reading entry
//
//	POST   /api/summarize            summarize a link for the reading list
//	GET    /health                   liveness probe
//
// # Error Mapping
//
// Missing or malformed request fields produce 400 with an error code.
// Store failures produce 500; a store.ErrNotFound keeps the not_found
// error code so clients can distinguish it. Other failure details go
// to the log, never to the client.
package server
