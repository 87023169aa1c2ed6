package helper

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FoldText: lower-case, buang diakritik (é → e), rapatkan whitespace.
// Dipakai untuk kunci dedup nama, bukan untuk tampilan.
func FoldText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) { // mark nonspacing
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(norm.NFC.String(b.String())), " ")
}

// NormalizePhone: trim + lower + buang spasi dan pemisah umum ( - . ( ) ).
// Prefix negara TIDAK diseragamkan: "+62812" dan "0812" dianggap berbeda.
func NormalizePhone(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '-' || r == '.' || r == '(' || r == ')':
			return -1
		}
		return r
	}, s)
}
