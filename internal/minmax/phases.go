// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package minmax

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/pdiddy/minmax/internal/annotation"
	"github.com/pdiddy/minmax/internal/gazetteer"
	"github.com/pdiddy/minmax/internal/loop"
	"github.com/pdiddy/minmax/internal/view"
	"github.com/pdiddy/minmax/pkg/types"
)

// Marker annotation types produced by the phase gazetteers.
const (
	TypeRangeStart = "RangeStart"
	TypeRangeSep   = "RangeSep"
	TypeAtLeast    = "AtLeast"
	TypeAtMost     = "AtMost"
)

const (
	number = types.EntityNumber
	unit   = types.EntityUnitOfMeasure
)

// inputTypes are the pool annotations every phase works from.
var inputTypes = []string{number, unit}

// Phase is one extraction pass: marker gazetteers plus the step sequence
// that chains markers and entities into a relation.
type Phase struct {
	Name       string
	Gazetteers []gazetteer.Gazetteer

	// Steps builds the step sequence for the given relation type.
	Steps func(relationType string) []loop.Step
}

// pick selects one record of a chain: the first or last record of the
// match made by a given step.
type pick struct {
	step int
	last bool
}

func (p pick) from(chain loop.Chain) (annotation.Annotation, error) {
	if p.step >= len(chain) {
		return annotation.Annotation{}, fmt.Errorf("chain of %d matches has no step %d", len(chain), p.step)
	}
	if p.last {
		return chain[p.step].Last(), nil
	}
	return chain[p.step].First(), nil
}

// rangeProperties reads min and max from the picked records and the unit
// from the last record of the chain.
func rangeProperties(minAt, maxAt pick) loop.SynthesizeFunc {
	return func(chain loop.Chain, _ string) (annotation.Props, error) {
		lo, err := minAt.from(chain)
		if err != nil {
			return nil, fmt.Errorf("min: %w", err)
		}
		hi, err := maxAt.from(chain)
		if err != nil {
			return nil, fmt.Errorf("max: %w", err)
		}
		uom := chain[len(chain)-1].Last()
		return annotation.Props{
			{Key: types.PropMin, Value: lo.NormalizedContents},
			{Key: types.PropMax, Value: hi.NormalizedContents},
			{Key: types.PropUnitOfMeasure, Value: uom.NormalizedContents},
		}, nil
	}
}

// anchor says where a step's pattern may match in the view it is given.
type anchor bool

const (
	// anywhere lets the step match later in the view, skipping records.
	anywhere anchor = false
	// adjacent requires the match to start at the previous terminal record.
	adjacent anchor = true
)

func distance(at anchor, first string, minTokens, maxTokens int, second string) *regexp.Regexp {
	if at == adjacent {
		return view.MustAnchoredDistanceRegex(first, minTokens, maxTokens, "", second)
	}
	return view.MustDistanceRegex(first, minTokens, maxTokens, "", second)
}

func hop(at anchor, first string, minTokens, maxTokens int, second string) loop.Hop {
	return loop.Hop{Pattern: distance(at, first, minTokens, maxTokens, second), Terminal: second}
}

func final(at anchor, first string, minTokens, maxTokens int, second, relationType string, synth loop.SynthesizeFunc) loop.Final {
	return loop.Final{
		Pattern:      distance(at, first, minTokens, maxTokens, second),
		RelationType: relationType,
		Synthesize:   synth,
	}
}

// RangeMarkers matches "between 170 and 220 pounds" and
// "within the range of 60 to 90 points".
var RangeMarkers = Phase{
	Name: "range markers",
	Gazetteers: []gazetteer.Gazetteer{
		{Type: TypeRangeStart, Terms: []string{"between", "from", "within the range of", "in the range of", "ranging from", "within"}},
		{Type: TypeRangeSep, Terms: []string{"and", "to", "through", "-"}},
	},
	Steps: func(relationType string) []loop.Step {
		return []loop.Step{
			hop(anywhere, TypeRangeStart, 0, 1, number),
			hop(adjacent, number, 0, 0, TypeRangeSep),
			hop(adjacent, TypeRangeSep, 0, 0, number),
			final(adjacent, number, 0, 1, unit, relationType, rangeProperties(pick{0, true}, pick{2, true})),
		}
	},
}

// BareRange matches "30 to 40 drinks".
var BareRange = Phase{
	Name: "bare range",
	Gazetteers: []gazetteer.Gazetteer{
		{Type: TypeRangeSep, Terms: []string{"and", "to", "through", "-"}},
	},
	Steps: func(relationType string) []loop.Step {
		return []loop.Step{
			hop(anywhere, number, 0, 0, TypeRangeSep),
			hop(adjacent, TypeRangeSep, 0, 0, number),
			final(adjacent, number, 0, 1, unit, relationType, rangeProperties(pick{0, false}, pick{1, true})),
		}
	},
}

// BoundPhrases matches "a minimum of 15 minutes and a maximum of 20
// minutes".
var BoundPhrases = Phase{
	Name: "bound phrases",
	Gazetteers: []gazetteer.Gazetteer{
		{Type: TypeAtLeast, Terms: []string{"at least", "lower limit", "minimum of", "no less than"}},
		{Type: TypeAtMost, Terms: []string{"at most", "upper limit", "maximum of", "no more than"}},
	},
	Steps: func(relationType string) []loop.Step {
		return []loop.Step{
			hop(anywhere, TypeAtLeast, 0, 3, number),
			hop(anywhere, number, 0, 2, unit),
			hop(anywhere, unit, 0, 5, TypeAtMost),
			hop(anywhere, TypeAtMost, 0, 3, number),
			final(anywhere, number, 0, 2, unit, relationType, rangeProperties(pick{0, true}, pick{3, true})),
		}
	},
}

// DefaultPhases are run in this order.
var DefaultPhases = []Phase{RangeMarkers, BareRange, BoundPhrases}

// compiledPhase is a Phase ready to run.
type compiledPhase struct {
	name     string
	matchers []gazetteer.Matcher
	loop     *loop.Loop
	log      *zap.Logger
}

func compilePhase(p Phase, backend gazetteer.Backend, relationType string, log *zap.Logger) (*compiledPhase, error) {
	log = log.With(zap.String("phase", p.Name))
	cp := &compiledPhase{name: p.Name, log: log}
	for _, g := range p.Gazetteers {
		m, err := gazetteer.New(g, backend)
		if err != nil {
			return nil, fmt.Errorf("phase %s: %w", p.Name, err)
		}
		cp.matchers = append(cp.matchers, m)
	}
	l, err := loop.New(p.Steps(relationType), loop.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("phase %s: %w", p.Name, err)
	}
	cp.loop = l
	return cp, nil
}

// annotations returns the pool entities this phase works from plus the
// marker annotations that do not overlap them, without overlaps. Entities
// overlapping an earlier or longer entity are dropped.
func (p *compiledPhase) annotations(text string, pool []annotation.Annotation) []annotation.Annotation {
	all := annotation.Types(pool, inputTypes...)
	inputs := annotation.RemoveOverlaps(all)
	if len(inputs) < len(all) {
		p.logDropped(all, inputs)
	}
	anns := append([]annotation.Annotation(nil), inputs...)
	for _, m := range p.matchers {
		for _, marker := range m.Annotate(text) {
			if !overlapsAny(marker, inputs) {
				anns = append(anns, marker)
			}
		}
	}
	return annotation.RemoveOverlaps(anns)
}

type spanKey struct {
	typ        string
	start, end int
}

func (p *compiledPhase) logDropped(all, kept []annotation.Annotation) {
	seen := make(map[spanKey]int, len(kept))
	for _, a := range kept {
		seen[spanKey{a.Type, a.Start, a.End}]++
	}
	for _, a := range all {
		k := spanKey{a.Type, a.Start, a.End}
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		p.log.Debug("dropping overlapping entity",
			zap.String("type", a.Type), zap.String("text", a.NormalizedContents),
			zap.Int("start", a.Start), zap.Int("end", a.End))
	}
}

// run returns the relations this phase finds in text.
func (p *compiledPhase) run(text string, pool []annotation.Annotation, proj *view.Projector) ([]annotation.Annotation, error) {
	v, err := proj.Build(text, p.annotations(text, pool))
	if err != nil {
		return nil, fmt.Errorf("phase %s: building view: %w", p.name, err)
	}
	found, err := p.loop.Run(v, text)
	if err != nil {
		return nil, fmt.Errorf("phase %s: %w", p.name, err)
	}
	return found, nil
}

func overlapsAny(a annotation.Annotation, anns []annotation.Annotation) bool {
	for _, b := range anns {
		if annotation.Overlaps(a, b) {
			return true
		}
	}
	return false
}
