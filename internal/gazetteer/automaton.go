// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gazetteer

import (
	"fmt"
	"slices"

	"github.com/coregx/ahocorasick"

	"github.com/pdiddy/minmax/internal/annotation"
)

type automatonMatcher struct {
	typ   string
	terms []string
	ac    *ahocorasick.Automaton
}

func newAutomatonMatcher(typ string, terms []string) (*automatonMatcher, error) {
	ac, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building %s automaton: %w", typ, err)
	}
	return &automatonMatcher{typ: typ, terms: terms, ac: ac}, nil
}

// Annotate scans every occurrence, drops those not on word boundaries, and
// keeps the leftmost, then longest, non-overlapping ones.
func (m *automatonMatcher) Annotate(text string) []annotation.Annotation {
	folded := fold(text)
	var candidates []byteSpan
	for _, hit := range m.ac.FindAllOverlapping([]byte(folded)) {
		term := m.terms[hit.PatternID]
		if boundedStart(term) && !atBoundary(folded, hit.Start) {
			continue
		}
		if boundedEnd(term) && !atBoundary(folded, hit.End) {
			continue
		}
		candidates = append(candidates, byteSpan{start: hit.Start, end: hit.End})
	}
	slices.SortFunc(candidates, func(a, b byteSpan) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return b.end - a.end
	})

	var spans []byteSpan
	next := 0
	for _, c := range candidates {
		if c.start < next {
			continue
		}
		spans = append(spans, c)
		next = c.end
	}
	return annotations(m.typ, text, spans)
}
