package markup

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/pagefill/layout"
)

// Plain tokenizes unmarked text under a single format key. Words are split
// on whitespace, a single newline becomes new-line, a blank line becomes
// new-paragraph and a form feed becomes new-page. Leading and trailing
// breaks are dropped.
func Plain(text, key string) []layout.Token {
	style := layout.Style(key)
	var (
		out      []layout.Token
		word     strings.Builder
		newlines int
	)
	flushWord := func() {
		if word.Len() == 0 {
			return
		}
		out = append(out, layout.Word(norm.NFC.String(word.String()), style))
		word.Reset()
	}
	for _, r := range text {
		switch {
		case r == '\r':
		case r == '\n':
			flushWord()
			newlines++
		case r == '\f':
			flushWord()
			newlines = 0
			if len(out) > 0 {
				out = append(out, layout.NewPage(style))
			}
		case unicode.IsSpace(r) && r != '\u00a0':
			flushWord()
		default:
			if newlines > 0 && word.Len() == 0 && len(out) > 0 && out[len(out)-1].Kind != layout.TokenNewPage {
				if newlines == 1 {
					out = append(out, layout.NewLine(style))
				} else {
					out = append(out, layout.NewParagraph(style))
				}
			}
			newlines = 0
			word.WriteRune(r)
		}
	}
	flushWord()
	for len(out) > 0 && out[len(out)-1].Kind == layout.TokenNewPage {
		out = out[:len(out)-1]
	}
	return out
}
