// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotation defines typed spans over a document and the record
// format used to serialize them into a matchable view.
//
// Offsets are rune offsets into the document, half-open: [Start, End).
package annotation

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidSpan is returned when an annotation is constructed with
// negative, empty, or inverted offsets.
var ErrInvalidSpan = errors.New("invalid annotation span")

// Prop is one named attribute of an annotation.
type Prop struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Props is an ordered list of attributes. Order is preserved through
// serialization.
type Props []Prop

// Get returns the value stored under key.
func (p Props) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// With returns a copy of p with key set to value. An existing key keeps its
// position; a new key is appended.
func (p Props) With(key, value string) Props {
	out := make(Props, len(p), len(p)+1)
	copy(out, p)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Prop{Key: key, Value: value})
}

// Map returns the properties as a map. Order is lost.
func (p Props) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, prop := range p {
		m[prop.Key] = prop.Value
	}
	return m
}

// Annotation is a typed span over a document.
type Annotation struct {
	// Type names the kind of span, e.g. "Token", "Number", "MinMax".
	Type string

	// NormalizedContents is the canonical text of the span. It may differ
	// from the raw document substring.
	NormalizedContents string

	Start int
	End   int

	Props Props
}

// New creates an annotation. It fails unless 0 <= start < end.
func New(typ, contents string, start, end int, props ...Prop) (Annotation, error) {
	if start < 0 || end <= start {
		return Annotation{}, fmt.Errorf("%w: %s [%d, %d)", ErrInvalidSpan, typ, start, end)
	}
	if typ == "" {
		return Annotation{}, fmt.Errorf("%w: empty type at [%d, %d)", ErrInvalidSpan, start, end)
	}
	var p Props
	if len(props) > 0 {
		p = append(Props(nil), props...)
	}
	return Annotation{
		Type:               typ,
		NormalizedContents: contents,
		Start:              start,
		End:                end,
		Props:              p,
	}, nil
}

// WithProp returns a copy of a carrying key=value.
func (a Annotation) WithProp(key, value string) Annotation {
	a.Props = a.Props.With(key, value)
	return a
}

// Len returns the span length in runes.
func (a Annotation) Len() int {
	return a.End - a.Start
}

// Equal reports structural equality: type, contents, offsets, and
// properties in order.
func (a Annotation) Equal(b Annotation) bool {
	return a.Type == b.Type &&
		a.NormalizedContents == b.NormalizedContents &&
		a.Start == b.Start &&
		a.End == b.End &&
		slices.Equal(a.Props, b.Props)
}

// Encloses reports whether b lies wholly inside a. Identical spans do not
// enclose each other.
func Encloses(a, b Annotation) bool {
	if a.Start == b.Start && a.End == b.End {
		return false
	}
	return a.Start <= b.Start && b.End <= a.End
}

// Overlaps reports whether the spans of a and b share at least one rune.
func Overlaps(a, b Annotation) bool {
	return a.Start < b.End && b.Start < a.End
}

// Compare orders annotations by start, then end.
func Compare(a, b Annotation) int {
	if a.Start != b.Start {
		return a.Start - b.Start
	}
	return a.End - b.End
}

// Sort returns a copy of anns in document order. Ties keep input order.
func Sort(anns []Annotation) []Annotation {
	out := slices.Clone(anns)
	slices.SortStableFunc(out, Compare)
	return out
}

// GetEnclosed returns the candidates enclosed by container, in candidate
// order.
func GetEnclosed(container Annotation, candidates []Annotation) []Annotation {
	var out []Annotation
	for _, c := range candidates {
		if Encloses(container, c) {
			out = append(out, c)
		}
	}
	return out
}

// RemoveEnclosed drops from prev every annotation enclosed by one of the
// composites, then appends the composites.
func RemoveEnclosed(prev, composites []Annotation) []Annotation {
	out := make([]Annotation, 0, len(prev)+len(composites))
	for _, p := range prev {
		consumed := false
		for _, c := range composites {
			if Encloses(c, p) {
				consumed = true
				break
			}
		}
		if !consumed {
			out = append(out, p)
		}
	}
	return append(out, composites...)
}

// RemoveOverlaps returns a non-overlapping subset of anns in document order.
// Among overlapping annotations the earlier start wins, then the longer
// span, then the one given first.
func RemoveOverlaps(anns []Annotation) []Annotation {
	ordered := slices.Clone(anns)
	slices.SortStableFunc(ordered, func(a, b Annotation) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return b.End - a.End
	})

	var out []Annotation
	for _, a := range ordered {
		if len(out) > 0 && Overlaps(out[len(out)-1], a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Types returns the annotations whose type is one of types.
func Types(anns []Annotation, types ...string) []Annotation {
	var out []Annotation
	for _, a := range anns {
		if slices.Contains(types, a.Type) {
			out = append(out, a)
		}
	}
	return out
}
