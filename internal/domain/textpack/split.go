package textpack

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type token struct {
	text string
	// spaced is true when whitespace preceded the token in the source text.
	spaced bool
}

// tokenize splits on whitespace and after commas. A comma stays attached to
// the word before it.
func tokenize(text string) []token {
	var tokens []token
	var current strings.Builder
	spaced := false

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tokens = append(tokens, token{text: current.String(), spaced: spaced})
		current.Reset()
		spaced = false
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
			if len(tokens) > 0 {
				spaced = true
			}
		case r == ',':
			current.WriteRune(r)
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func join(tokens []token) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 && tok.spaced {
			b.WriteByte(' ')
		}
		b.WriteString(tok.text)
	}
	return b.String()
}

// SplitAtWordBoundary fills the first part with whole tokens, each costing
// its length plus one separator, until the next token would exceed
// maxLength. Everything from that token on is returned as the remainder.
func SplitAtWordBoundary(text string, maxLength int) (string, string) {
	if text == "" {
		return "", ""
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text, ""
	}

	tokens := tokenize(text)
	used := 0
	for i, tok := range tokens {
		used += utf8.RuneCountInString(tok.text) + 1
		if used > maxLength {
			return join(tokens[:i]), join(tokens[i:])
		}
	}
	return join(tokens), ""
}

// CombineFields merges two display values as "a - b", or returns whichever
// one is present.
func CombineFields(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "" && b == "":
		return ""
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " - " + b
}

// InitialsForm abbreviates every name but the last: "John Michael Silva"
// becomes "J. M. Silva".
func InitialsForm(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	surname := parts[len(parts)-1]
	if len(parts) == 1 {
		return surname
	}

	initials := make([]string, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		r, _ := utf8.DecodeRuneInString(part)
		initials = append(initials, string(unicode.ToUpper(r)))
	}
	return strings.Join(initials, ". ") + ". " + surname
}
