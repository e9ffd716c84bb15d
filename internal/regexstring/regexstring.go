// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package regexstring builds regular expressions from lists of alternative
// phrases and chains them with bounded word distances.
//
// Alternatives are regex fragments, not literals: callers escape what they
// need escaped. Within one alternation the alternatives are emitted longest
// first, and equal lengths keep caller order. Go's regexp prefers the
// leftmost alternative, so at any position the longest listed phrase wins.
package regexstring

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/pdiddy/minmax/internal/annotation"
)

// ErrInvalidPattern is returned for malformed builder input.
var ErrInvalidPattern = errors.New("invalid regex string")

const (
	wordBoundary = `\b`
	backspace    = "\b"
)

// Option configures a RegexString built by New.
type Option func(*element)

// Optional makes the whole alternation optional.
func Optional() Option {
	return func(e *element) { e.optional = true }
}

// WholeWord surrounds the alternation with word boundaries.
func WholeWord() Option {
	return func(e *element) { e.wholeWord = true }
}

// Capturing emits a capturing group instead of a non-capturing one.
func Capturing() Option {
	return func(e *element) { e.capturing = true }
}

// IgnoreCase matches the alternatives case-insensitively.
func IgnoreCase() Option {
	return func(e *element) { e.ignoreCase = true }
}

// Prepend places a regex fragment immediately before the alternation.
func Prepend(fragment string) Option {
	return func(e *element) { e.prepend = fragment }
}

// Append places a regex fragment immediately after the alternation.
func Append(fragment string) Option {
	return func(e *element) { e.append = fragment }
}

// element is one alternation with its decorations.
type element struct {
	alts       []string
	raw        bool
	optional   bool
	wholeWord  bool
	capturing  bool
	ignoreCase bool
	prepend    string
	append     string
}

func (e element) group() string {
	joined := strings.Join(e.alts, "|")
	if e.capturing {
		return "(" + joined + ")"
	}
	return "(?:" + joined + ")"
}

// body renders the alternation, grouped only when needed. A single source
// with a top-level | is always grouped so that it cannot bind across
// decorations or concatenation.
func (e element) body(forceGroup bool) string {
	if e.raw {
		if forceGroup || hasTopLevelAlt(e.alts[0]) {
			return "(?:" + e.alts[0] + ")"
		}
		return e.alts[0]
	}
	if len(e.alts) == 1 && !e.capturing && !forceGroup && !hasTopLevelAlt(e.alts[0]) {
		return e.alts[0]
	}
	return e.group()
}

// hasTopLevelAlt reports whether src contains a | outside every group and
// character class.
func hasTopLevelAlt(src string) bool {
	depth := 0
	inClass := false
	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			// A ] right after [ or [^ is a literal member.
			if i+1 < len(src) && src[i+1] == '^' {
				i++
			}
			if i+1 < len(src) && src[i+1] == ']' {
				i++
			}
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '|' && depth == 0:
			return true
		}
	}
	return false
}

func (e element) decorate(body string) string {
	if e.ignoreCase {
		body = "(?i:" + body + ")"
	}
	if e.wholeWord {
		body = wordBoundary + body + wordBoundary
	}
	return e.prepend + body + e.append
}

// render returns the element as it appears on its own.
func (e element) render() string {
	if e.optional {
		return e.decorate(e.body(true) + "?")
	}
	return e.decorate(e.body(false))
}

// core returns the element without its optional marker. It is used when an
// optional element is folded together with the gap that follows it.
func (e element) core() string {
	return e.decorate(e.body(true))
}

// RegexString is an immutable composable pattern. The trailing element is
// kept apart from the rendered prefix so that a later distance concatenation
// can fold an optional tail together with the gap that follows it.
type RegexString struct {
	prefix string
	last   element
	re     *regexp.Regexp
}

// New builds a pattern matching any of alts.
func New(alts []string, opts ...Option) (*RegexString, error) {
	if len(alts) == 0 {
		return nil, fmt.Errorf("%w: no alternatives", ErrInvalidPattern)
	}
	e := element{alts: slices.Clone(alts)}
	for _, opt := range opts {
		opt(&e)
	}
	e.prepend = strings.ReplaceAll(e.prepend, backspace, wordBoundary)
	e.append = strings.ReplaceAll(e.append, backspace, wordBoundary)
	if e.wholeWord && (strings.Contains(e.prepend, wordBoundary) || strings.Contains(e.append, wordBoundary)) {
		return nil, fmt.Errorf("%w: whole word combined with a word boundary prepend or append", ErrInvalidPattern)
	}

	slices.SortStableFunc(e.alts, func(a, b string) int {
		return len(b) - len(a)
	})
	return compile("", e)
}

// MustNew is New for package-level pattern tables. It panics on error.
func MustNew(alts []string, opts ...Option) *RegexString {
	rs, err := New(alts, opts...)
	if err != nil {
		panic(err)
	}
	return rs
}

// FromRegex wraps a raw regular expression source.
func FromRegex(src string) (*RegexString, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: empty regex", ErrInvalidPattern)
	}
	return compile("", element{alts: []string{src}, raw: true})
}

func compile(prefix string, last element) (*RegexString, error) {
	rs := &RegexString{prefix: prefix, last: last}
	re, err := regexp.Compile(rs.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	rs.re = re
	return rs, nil
}

// String returns the regex source.
func (rs *RegexString) String() string {
	return rs.prefix + rs.last.render()
}

// Regexp returns the compiled expression.
func (rs *RegexString) Regexp() *regexp.Regexp {
	return rs.re
}

// Concat returns a followed immediately by b. With insertOptWS an optional
// whitespace rune may separate them.
func Concat(a, b *RegexString, insertOptWS bool) (*RegexString, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: concat needs two patterns", ErrInvalidPattern)
	}
	joint := ""
	if insertOptWS {
		joint = `(?:\s)?`
	}
	return compile(a.String()+joint+b.prefix, b.last)
}

// ConcatWithWordDistances returns a, then any non-space run glued to a's
// last word, then between minWords and maxWords further words, then b.
// Words are whitespace-separated runs of non-space runes.
func ConcatWithWordDistances(a, b *RegexString, minWords, maxWords int) (*RegexString, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: concat needs two patterns", ErrInvalidPattern)
	}
	if minWords < 0 || minWords > maxWords {
		return nil, fmt.Errorf("%w: word distance {%d,%d}", ErrInvalidPattern, minWords, maxWords)
	}

	const glued = `(?:\b\S+)?`
	words := ""
	if maxWords > 0 {
		words = fmt.Sprintf(`(?:\s\S+){%d,%d}`, minWords, maxWords)
	}

	var head string
	switch {
	case !a.last.optional:
		head = a.String() + glued + words + `\s`
	case maxWords == 0:
		head = a.prefix + "(?:" + a.last.core() + glued + `\s)?`
	default:
		head = a.prefix + "(?:" + a.last.core() + glued + ")?" + words + `\s`
	}
	return compile(head+b.prefix, b.last)
}

// Segment is one element of a Build list: either alternatives or a word
// distance.
type Segment struct {
	alts     []string
	distance int
	isGap    bool
}

// Alts is a Build segment matching any of the phrases.
func Alts(alts ...string) Segment {
	return Segment{alts: alts}
}

// Distance is a Build segment allowing up to n words between its
// neighbours.
func Distance(n int) Segment {
	return Segment{distance: n, isGap: true}
}

// Build chains alternating Alts and Distance segments. The list must start
// and end with Alts and hold at least three segments.
func Build(segments ...Segment) (*RegexString, error) {
	if len(segments) < 3 || len(segments)%2 == 0 {
		return nil, fmt.Errorf("%w: %d segments, need an odd count of at least 3", ErrInvalidPattern, len(segments))
	}
	for i, seg := range segments {
		if (i%2 == 1) != seg.isGap {
			return nil, fmt.Errorf("%w: segment %d has the wrong kind", ErrInvalidPattern, i)
		}
	}

	acc, err := New(segments[0].alts)
	if err != nil {
		return nil, fmt.Errorf("segment 0: %w", err)
	}
	for i := 1; i < len(segments); i += 2 {
		next, err := New(segments[i+1].alts)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		acc, err = ConcatWithWordDistances(acc, next, 0, segments[i].distance)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return acc, nil
}

// Match is one match of a pattern against raw text. Offsets are rune
// offsets.
type Match struct {
	Text  string
	Start int
	End   int
}

// MatchTriples returns all non-overlapping matches in text, left to right.
// Empty matches are skipped.
func (rs *RegexString) MatchTriples(text string) []Match {
	locs := rs.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	offsets := annotation.NewOffsets(text)
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}
		out = append(out, Match{
			Text:  text[loc[0]:loc[1]],
			Start: offsets.Rune(loc[0]),
			End:   offsets.Rune(loc[1]),
		})
	}
	return out
}

// FindAll returns the matched strings, empty matches included.
func (rs *RegexString) FindAll(text string) []string {
	return rs.re.FindAllString(text, -1)
}
