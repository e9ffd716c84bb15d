// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package loop chains view patterns into composite annotations.
//
// A Loop is an ordered list of steps. Each Hop matches a pattern over the
// view and hands the rest of the view, starting at the hop's terminal
// record, to the next step. The Final step turns the accumulated chain of
// matches into one composite annotation. Chains that cannot be completed
// are abandoned and the next candidate is tried.
package loop

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/minmax/internal/annotation"
)

// ErrConfig is returned for an unusable step list.
var ErrConfig = errors.New("invalid loop configuration")

// DefaultRelationType is the composite type used when a Final step names
// none.
const DefaultRelationType = "MinMax"

// Match is one step's match over the view and the records it covers.
type Match struct {
	Text        string
	Annotations []annotation.Annotation
}

// First returns the first record of the match.
func (m Match) First() annotation.Annotation {
	return m.Annotations[0]
}

// Last returns the last record of the match.
func (m Match) Last() annotation.Annotation {
	return m.Annotations[len(m.Annotations)-1]
}

// Chain holds the matches of the steps taken so far, one per step.
type Chain []Match

// SynthesizeFunc computes the properties of a composite from its chain and
// the document text.
type SynthesizeFunc func(chain Chain, doc string) (annotation.Props, error)

// Step is a Hop or a Final.
type Step interface {
	pattern() *regexp.Regexp
}

// Hop is an intermediate step. Terminal is the annotation type the hop's
// pattern ends on; the next step resumes from that record.
type Hop struct {
	Pattern  *regexp.Regexp
	Terminal string
}

func (h Hop) pattern() *regexp.Regexp { return h.Pattern }

// Final is the last step. Its first match completes the chain.
type Final struct {
	Pattern      *regexp.Regexp
	RelationType string
	Synthesize   SynthesizeFunc
}

func (f Final) pattern() *regexp.Regexp { return f.Pattern }

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for per-step debug output.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// Loop is a validated step list. It is safe for concurrent use.
type Loop struct {
	steps []Step
	log   *zap.Logger
}

// New validates steps and returns a Loop. Exactly the last step must be a
// Final with a Synthesize function.
func New(steps []Step, opts ...Option) (*Loop, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrConfig)
	}
	last := len(steps) - 1
	for i, s := range steps {
		switch st := s.(type) {
		case Hop:
			if i == last {
				return nil, fmt.Errorf("%w: step %d is the last step but is not final", ErrConfig, i)
			}
			if st.Terminal == "" {
				return nil, fmt.Errorf("%w: step %d has no terminal type", ErrConfig, i)
			}
		case Final:
			if i != last {
				return nil, fmt.Errorf("%w: step %d is final but %d steps follow it", ErrConfig, i, last-i)
			}
			if st.Synthesize == nil {
				return nil, fmt.Errorf("%w: final step %d has no synthesize function", ErrConfig, i)
			}
		default:
			return nil, fmt.Errorf("%w: step %d has unknown type %T", ErrConfig, i, s)
		}
		if s.pattern() == nil {
			return nil, fmt.Errorf("%w: step %d has no pattern", ErrConfig, i)
		}
	}

	l := &Loop{steps: steps, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run finds every composite in view, left to right. doc is the document
// text the view was projected from. Composites never overlap: a first-step
// candidate starting inside the previous composite is skipped.
func (l *Loop) Run(view, doc string) ([]annotation.Annotation, error) {
	offsets := annotation.NewOffsets(doc)
	var out []annotation.Annotation
	committed := -1
	for _, loc := range l.steps[0].pattern().FindAllStringIndex(view, -1) {
		m, err := newMatch(view[loc[0]:loc[1]])
		if err != nil {
			return nil, err
		}
		if len(m.Annotations) == 0 {
			continue
		}
		if m.First().Start < committed {
			l.log.Debug("skipping candidate inside previous composite",
				zap.Int("start", m.First().Start), zap.Int("committed_end", committed))
			continue
		}
		comp, ok, err := l.extend(view, loc, m, nil, 0, offsets)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, comp)
			committed = comp.End
		}
	}
	return out, nil
}

// step tries each match of step i in view until one completes the chain.
func (l *Loop) step(view string, chain Chain, i int, offsets *annotation.Offsets) (annotation.Annotation, bool, error) {
	for _, loc := range l.steps[i].pattern().FindAllStringIndex(view, -1) {
		m, err := newMatch(view[loc[0]:loc[1]])
		if err != nil {
			return annotation.Annotation{}, false, err
		}
		if len(m.Annotations) == 0 {
			continue
		}
		comp, ok, err := l.extend(view, loc, m, chain, i, offsets)
		if err != nil || ok {
			return comp, ok, err
		}
	}
	l.log.Debug("step exhausted", zap.Int("step", i))
	return annotation.Annotation{}, false, nil
}

// extend adds m, the match of step i at loc, to chain and continues.
func (l *Loop) extend(view string, loc []int, m Match, chain Chain, i int, offsets *annotation.Offsets) (annotation.Annotation, bool, error) {
	chain = append(chain[:len(chain):len(chain)], m)
	l.log.Debug("step matched", zap.Int("step", i), zap.String("first", m.First().Type),
		zap.Int("start", m.First().Start), zap.String("last", m.Last().Type), zap.Int("end", m.Last().End))

	switch st := l.steps[i].(type) {
	case Final:
		comp, err := composite(st, chain, offsets)
		if err != nil {
			return annotation.Annotation{}, false, err
		}
		return comp, true, nil
	case Hop:
		cut := strings.LastIndex(view[:loc[1]], "<'"+annotation.Escape(st.Terminal)+"'")
		if cut < loc[0] {
			return annotation.Annotation{}, false, fmt.Errorf("%w: step %d matched %q without a %s record",
				ErrConfig, i, m.Text, st.Terminal)
		}
		return l.step(view[cut:], chain, i+1, offsets)
	}
	return annotation.Annotation{}, false, fmt.Errorf("%w: step %d has unknown type %T", ErrConfig, i, l.steps[i])
}

func composite(f Final, chain Chain, offsets *annotation.Offsets) (annotation.Annotation, error) {
	start := chain[0].First().Start
	end := chain[len(chain)-1].Last().End
	contents, err := offsets.Slice(start, end)
	if err != nil {
		return annotation.Annotation{}, fmt.Errorf("composite span: %w", err)
	}
	props, err := f.Synthesize(chain, offsets.Text())
	if err != nil {
		return annotation.Annotation{}, fmt.Errorf("synthesizing properties for %q: %w", contents, err)
	}
	typ := f.RelationType
	if typ == "" {
		typ = DefaultRelationType
	}
	return annotation.New(typ, contents, start, end, props...)
}

func newMatch(text string) (Match, error) {
	anns, err := annotation.ParseAll(text)
	if err != nil {
		return Match{}, fmt.Errorf("matched view text: %w", err)
	}
	return Match{Text: text, Annotations: anns}, nil
}
