package fps

import (
	"html"
	"regexp"
	"strings"
)

var cdataPattern = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

// SanitizeText strips exchange-format markup artifacts from raw field text:
// CDATA wrappers are removed leaving the inner text, HTML/XML character
// entities are decoded, and surrounding whitespace is trimmed. An empty or
// absent field yields "".
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	text = cdataPattern.ReplaceAllString(text, "$1")
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}
