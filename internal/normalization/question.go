package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// QuestionKey is the duplicate-detection key for question text: NFKC,
// lowercased, whitespace collapsed, trailing punctuation and zero-width
// spaces removed.
func QuestionKey(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(norm.NFKC.String(text))
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
	s = strings.TrimRightFunc(s, isTrailingNoise)
	return s
}

func isTrailingNoise(r rune) bool {
	switch r {
	case '.', '!', '?', ':', ';', ',', '\u200b':
		return true
	}
	return false
}
