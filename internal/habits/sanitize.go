package habits

import (
	"strings"
	"unicode/utf8"
)

// MaxTitleLen is the longest habit title kept, in runes.
const MaxTitleLen = 120

// CleanTitle turns user input into a one-line title: line breaks and tabs become
// spaces, surrounding whitespace is trimmed and the result is cut to MaxTitleLen
// runes. It returns the cleaned title and whether it was truncated. An empty
// result means the input should be ignored.
func CleanTitle(s string) (string, bool) {
    s = strings.Map(func(r rune) rune {
        switch r {
        case '\r', '\n', '\t', '\v', '\f':
            return ' '
        }
        return r
    }, s)
    s = strings.TrimSpace(s)
    if !utf8.ValidString(s) {
        s = strings.ToValidUTF8(s, "")
    }
    if utf8.RuneCountInString(s) > MaxTitleLen {
        r := []rune(s)
        return strings.TrimSpace(string(r[:MaxTitleLen])) + "…", true
    }
    return s, false
}
