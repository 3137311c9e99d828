// ABOUTME: Markdown-lite renderer for entry content (bold, italic, links, images, newlines)
// ABOUTME: Runs an ordered pipeline of substitution stages; failures degrade to plain line breaks

package richtext

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Display text for auto-linked bare URLs is capped at this many runes.
const maxLinkDisplayLen = 50

// A stage is one substitution pass over the working markup. Stages run in a
// fixed order so markup inserted by an earlier stage is never re-matched by
// a later pattern.
type stage func(string) (string, error)

var (
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	// Italic runs after bold, so any remaining single asterisks are italic markers.
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	// The optional ! is matched so image syntax can be skipped without
	// consuming the preceding character (RE2 has no lookbehind); matches
	// starting with ! are left for the image stage.
	linkPattern = regexp.MustCompile(`!?\[([^\]]*)\]\(([^)]+)\)`)
	// Whitespace/start-of-text prefix keeps URLs already inside anchor
	// attributes or display text from being wrapped twice.
	bareURLPattern = regexp.MustCompile(`(^|\s)(https?://[^\s<"]+)`)
	imagePattern   = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	newlinePattern = regexp.MustCompile(`\n`)
)

// Render converts markdown-lite text to HTML markup. The input is
// HTML-escaped first, so markup in stored content never reaches the page
// raw; only the tags inserted by the stages survive. When expanded is
// false, images render as small inline thumbnails; when true, full width
// capped at 250px height. Render never fails: any stage error falls back
// to escaped, newline-only conversion of the original text.
func Render(text string, expanded bool) (markup string) {
	if text == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			markup = fallback(text)
		}
	}()

	stages := []stage{
		escapeStage,
		boldStage,
		italicStage,
		linkStage,
		autolinkStage,
		imageStage(expanded),
		newlineStage,
	}

	markup = text
	for _, st := range stages {
		next, err := st(markup)
		if err != nil {
			return fallback(text)
		}
		markup = next
	}
	return markup
}

// fallback is the degraded rendering: escape, convert newlines, nothing else.
func fallback(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br />")
}

// escapeStage neutralizes any HTML already present in the input. Every
// later stage operates on escaped text and only inserts its own markup.
func escapeStage(s string) (string, error) {
	return html.EscapeString(s), nil
}

func boldStage(s string) (string, error) {
	return boldPattern.ReplaceAllString(s, "<strong>$1</strong>"), nil
}

func italicStage(s string) (string, error) {
	return italicPattern.ReplaceAllString(s, "<em>$1</em>"), nil
}

// linkStage converts [text](url) to an anchor, leaving ![alt](src) alone.
func linkStage(s string) (string, error) {
	return linkPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "!") {
			return match
		}
		groups := linkPattern.FindStringSubmatch(match)
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
			groups[2], groups[1])
	}), nil
}

// autolinkStage wraps bare http(s) URLs that are not already inside inserted
// markup, truncating long display text.
func autolinkStage(s string) (string, error) {
	return bareURLPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := bareURLPattern.FindStringSubmatch(match)
		prefix, url := groups[1], groups[2]
		return fmt.Sprintf(`%s<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
			prefix, url, truncateDisplay(url))
	}), nil
}

// truncateDisplay caps anchor display text at maxLinkDisplayLen runes.
func truncateDisplay(url string) string {
	runes := []rune(url)
	if len(runes) <= maxLinkDisplayLen {
		return url
	}
	return string(runes[:maxLinkDisplayLen]) + "..."
}

// imageStage converts ![alt](src) to an img tag sized by the expanded flag.
func imageStage(expanded bool) stage {
	return func(s string) (string, error) {
		return imagePattern.ReplaceAllStringFunc(s, func(match string) string {
			groups := imagePattern.FindStringSubmatch(match)
			alt, src := groups[1], groups[2]
			if expanded {
				return fmt.Sprintf(
					`<img src="%s" alt="%s" class="rich-image" style="max-height: 250px; object-fit: contain;" />`,
					src, alt)
			}
			return fmt.Sprintf(
				`<img src="%s" alt="%s" class="rich-thumb" style="width: 48px; height: 48px; object-fit: cover;" />`,
				src, alt)
		}), nil
	}
}

func newlineStage(s string) (string, error) {
	return newlinePattern.ReplaceAllString(s, "<br />"), nil
}
