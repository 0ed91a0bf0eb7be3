package placement

import (
	"regexp"
	"strings"
)

var (
	// Words inside links do not count, embedded images hide their URL.
	linkPattern = regexp.MustCompile(`https?://[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,10}[^\n ]+`)
	// The language tag of a fenced code block is not rendered.
	codeLangPattern = regexp.MustCompile("(```)(.+)(\n(?s:.*)```)")
	// Custom emoji names are not visible either.
	emojiPattern = regexp.MustCompile(`<a?:\w+:\d{18,20}>`)
)

// Sanitize lowercases a chat message and strips the parts readers cannot
// see, so a word hidden there does not count as placed.
func Sanitize(content string) string {
	msg := strings.ToLower(content)
	msg = linkPattern.ReplaceAllString(msg, "")
	msg = codeLangPattern.ReplaceAllString(msg, "${1}${3}")
	msg = emojiPattern.ReplaceAllString(msg, "")
	return msg
}

// Contains reports whether the visible part of content contains word.
func Contains(content, word string) bool {
	if word == "" {
		return false
	}
	return strings.Contains(Sanitize(content), strings.ToLower(word))
}
