package assistant

import (
	"regexp"
	"strings"
)

var (
	imagePattern   = regexp.MustCompile(`!\[(.*?)\]\(.*?\)`)
	linkPattern    = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	tagPattern     = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	bulletPattern  = regexp.MustCompile(`(?m)^[ \t]*[-+=]+[ \t]+`)
	markerPattern  = regexp.MustCompile("[*_~`#>]")
	spacingPattern = regexp.MustCompile(`\s+`)
)

// StripMarkup turns chat markdown into plain text suitable for speech.
// Link and image text is kept, their targets are dropped.
func StripMarkup(text string) string {
	text = imagePattern.ReplaceAllString(text, "$1")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = tagPattern.ReplaceAllString(text, "")
	text = bulletPattern.ReplaceAllString(text, "")
	text = markerPattern.ReplaceAllString(text, "")
	text = spacingPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
