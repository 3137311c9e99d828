// Package config handles configuration loading for kbase.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults; every section may be
// omitted, in which case kbase runs an in-memory store on :8080.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from KBASE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/kbase/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	store:
//	  notion:
//	    api_key: "${NOTION_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	cache:
//	  staleness_window: "5m"
//	summarize:
//	  timeout: "10s"
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Storage backend, one of notion, sqlite, or memory:
//
//	store:
//	  backend: "notion"
//	  notion:
//	    api_key: "${NOTION_API_KEY}"
//	    database_id: "..."
//	    reading_database_id: "..."
//	  sqlite:
//	    path: "/var/lib/kbase/kbase.db"
//
// Client settings for the TUI:
//
//	client:
//	  base_url: "http://localhost:8080"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
