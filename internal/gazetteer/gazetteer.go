// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gazetteer annotates occurrences of fixed marker phrases such as
// "between" or "at most". Lookup ignores case and respects word edges.
//
// Two backends, a regular expression and an Aho-Corasick automaton, return
// the same non-overlapping annotations. At each position the longest phrase
// wins and scanning resumes after it.
package gazetteer

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/minmax/internal/annotation"
)

// Backend names a matching implementation.
type Backend string

// Available backends.
const (
	BackendRegex     Backend = "regex"
	BackendAutomaton Backend = "automaton"
)

// Gazetteer errors.
var (
	ErrNoTerms        = errors.New("gazetteer has no terms")
	ErrUnknownBackend = errors.New("unknown gazetteer backend")
)

// Gazetteer is an annotation type and the phrases that produce it.
type Gazetteer struct {
	Type  string
	Terms []string
}

// Matcher annotates the phrases of one gazetteer in a text.
type Matcher interface {
	// Annotate returns annotations in document order with rune offsets.
	Annotate(text string) []annotation.Annotation
}

// New compiles g for the given backend. The empty backend is the regex
// backend.
func New(g Gazetteer, backend Backend) (Matcher, error) {
	if g.Type == "" {
		return nil, fmt.Errorf("gazetteer without a type: %w", ErrNoTerms)
	}
	terms := g.terms()
	if len(terms) == 0 {
		return nil, fmt.Errorf("%s: %w", g.Type, ErrNoTerms)
	}
	switch backend {
	case BackendRegex, "":
		return newRegexMatcher(g.Type, terms)
	case BackendAutomaton:
		return newAutomatonMatcher(g.Type, terms)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// MustNew is New for package-level tables. It panics on error.
func MustNew(g Gazetteer, backend Backend) Matcher {
	m, err := New(g, backend)
	if err != nil {
		panic(err)
	}
	return m
}

// terms returns the folded, NFC-normalized, de-duplicated terms, longest
// first. Equal lengths keep their listed order.
func (g Gazetteer) terms() []string {
	seen := make(map[string]bool, len(g.Terms))
	var out []string
	for _, t := range g.Terms {
		t = fold(norm.NFC.String(strings.TrimSpace(t)))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return len(b) - len(a)
	})
	return out
}

// fold lower-cases s rune by rune, leaving a rune alone when its lower
// case encodes to a different number of bytes. Byte offsets into the
// folded text are therefore byte offsets into s.
func fold(s string) string {
	return strings.Map(func(r rune) rune {
		l := unicode.ToLower(r)
		if utf8.RuneLen(l) != utf8.RuneLen(r) {
			return r
		}
		return l
	}, s)
}

// isWordByte matches the ASCII word class used by regexp's \b.
func isWordByte(b byte) bool {
	return b == '_' || '0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// atBoundary reports whether a word boundary lies at byte i of s.
func atBoundary(s string, i int) bool {
	before := i > 0 && isWordByte(s[i-1])
	after := i < len(s) && isWordByte(s[i])
	return before != after
}

// boundedStart and boundedEnd report whether a term needs a word boundary
// at that edge: only edges made of word characters do.
func boundedStart(term string) bool { return isWordByte(term[0]) }

func boundedEnd(term string) bool { return isWordByte(term[len(term)-1]) }

type byteSpan struct {
	start, end int
}

// annotations converts byte spans of text to annotations.
func annotations(typ, text string, spans []byteSpan) []annotation.Annotation {
	if len(spans) == 0 {
		return nil
	}
	offsets := annotation.NewOffsets(text)
	out := make([]annotation.Annotation, 0, len(spans))
	for _, s := range spans {
		out = append(out, annotation.Annotation{
			Type:               typ,
			NormalizedContents: text[s.start:s.end],
			Start:              offsets.Rune(s.start),
			End:                offsets.Rune(s.end),
		})
	}
	return out
}
