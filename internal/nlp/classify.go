// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nlp supplies the tokenizer and sentence segmenter used to build
// views, and the word/punc/other token classifier.
package nlp

import (
	"strings"
	"unicode"

	"github.com/pdiddy/minmax/internal/annotation"
)

// wordExceptions classify as words regardless of their runes.
var wordExceptions = map[string]bool{
	"'s": true,
	"’s": true,
}

// Classify returns the token kind of tok: KindWord when every rune is a
// letter, digit, mark or underscore; KindPunc when every rune is
// punctuation or a symbol; KindOther otherwise.
func Classify(tok string) string {
	if tok == "" {
		return annotation.KindOther
	}
	if wordExceptions[tok] {
		return annotation.KindWord
	}
	if all(tok, isWordRune) {
		return annotation.KindWord
	}
	if all(tok, isPuncRune) {
		return annotation.KindPunc
	}
	return annotation.KindOther
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isPuncRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func all(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

// IsAllPunc reports whether s is non-empty and made only of punctuation and
// symbol runes.
func IsAllPunc(s string) bool {
	return s != "" && all(s, isPuncRune)
}

// IsAllWordChars reports whether s is non-empty and made only of word runes.
func IsAllWordChars(s string) bool {
	return s != "" && all(s, isWordRune)
}

// CollapseSpaces replaces every run of whitespace in s with one space.
func CollapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
