// ABOUTME: Embeds HTML templates and help docs into the binary using go:embed
// ABOUTME: Provides templateFS and helpDocsFS for rendering at runtime

package webui

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed docs/*.md
var helpDocsFS embed.FS
