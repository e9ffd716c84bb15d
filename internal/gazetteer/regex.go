// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gazetteer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/minmax/internal/annotation"
	"github.com/pdiddy/minmax/internal/regexstring"
)

type regexMatcher struct {
	typ string
	rs  *regexstring.RegexString
}

// newRegexMatcher builds one alternation over the terms, longest first, so
// leftmost-first matching picks the longest phrase at each position.
func newRegexMatcher(typ string, terms []string) (*regexMatcher, error) {
	alts := make([]string, len(terms))
	for i, t := range terms {
		alt := regexp.QuoteMeta(t)
		if boundedStart(t) {
			alt = `\b` + alt
		}
		if boundedEnd(t) {
			alt += `\b`
		}
		alts[i] = alt
	}
	rs, err := regexstring.FromRegex("(?:" + strings.Join(alts, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("compiling %s gazetteer: %w", typ, err)
	}
	return &regexMatcher{typ: typ, rs: rs}, nil
}

func (m *regexMatcher) Annotate(text string) []annotation.Annotation {
	locs := m.rs.Regexp().FindAllStringIndex(fold(text), -1)
	spans := make([]byteSpan, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, byteSpan{start: loc[0], end: loc[1]})
	}
	return annotations(m.typ, text, spans)
}

// String returns the compiled pattern.
func (m *regexMatcher) String() string {
	return m.rs.String()
}
