// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package view projects a document and its annotations into one string of
// annotation records, so that regular expressions can match sequences of
// typed spans.
//
// Text not covered by an annotation is tokenized and each token becomes a
// Token record. Records are concatenated without separators.
package view

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/minmax/internal/annotation"
	"github.com/pdiddy/minmax/internal/nlp"
)

// Projection errors.
var (
	ErrOutOfRange = errors.New("annotation outside document")
	ErrOverlap    = errors.New("overlapping annotations")
	ErrUnconsumed = errors.New("text not covered by any token or annotation")
)

// Tokenizer splits a piece of text into token spans with rune offsets
// relative to that piece.
type Tokenizer interface {
	Tokenize(text string) ([]nlp.Span, error)
}

// Option configures a Projector.
type Option func(*Projector)

// WithStopwords marks word tokens for which isStop returns true with the
// property stop='true'.
func WithStopwords(isStop func(string) bool) Option {
	return func(p *Projector) { p.isStop = isStop }
}

// Projector builds views. It holds no per-document state.
type Projector struct {
	tok    Tokenizer
	isStop func(string) bool
}

// NewProjector creates a Projector using tok for uncovered text.
func NewProjector(tok Tokenizer, opts ...Option) *Projector {
	p := &Projector{tok: tok}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build returns the view of text with anns in place of the text they cover.
// anns must not overlap; they are sorted here. A partial view is never
// returned.
func (p *Projector) Build(text string, anns []annotation.Annotation) (string, error) {
	records, err := p.Records(text, anns)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.String())
	}
	return b.String(), nil
}

// Records returns the annotations and Token annotations that make up the
// view of text, in document order.
func (p *Projector) Records(text string, anns []annotation.Annotation) ([]annotation.Annotation, error) {
	offsets := annotation.NewOffsets(text)
	n := offsets.RuneCount()

	sorted := annotation.Sort(anns)
	for i, a := range sorted {
		if a.Start < 0 || a.End > n || a.Start >= a.End {
			return nil, fmt.Errorf("%w: %s [%d, %d) in a document of %d runes", ErrOutOfRange, a.Type, a.Start, a.End, n)
		}
		if i > 0 && a.Start < sorted[i-1].End {
			return nil, fmt.Errorf("%w: %s [%d, %d) and %s [%d, %d)", ErrOverlap,
				sorted[i-1].Type, sorted[i-1].Start, sorted[i-1].End, a.Type, a.Start, a.End)
		}
	}

	out := make([]annotation.Annotation, 0, len(sorted)*2)
	pos := 0
	for _, a := range sorted {
		if a.Start > pos {
			toks, err := p.tokens(offsets, pos, a.Start)
			if err != nil {
				return nil, err
			}
			out = append(out, toks...)
		}
		out = append(out, a)
		pos = a.End
	}
	if pos < n {
		toks, err := p.tokens(offsets, pos, n)
		if err != nil {
			return nil, err
		}
		out = append(out, toks...)
	}
	return out, nil
}

// tokens tokenizes the runes [from, to) and checks that every non-space
// rune lands in a token.
func (p *Projector) tokens(offsets *annotation.Offsets, from, to int) ([]annotation.Annotation, error) {
	segment, err := offsets.Slice(from, to)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(segment) == "" {
		return nil, nil
	}
	spans, err := p.tok.Tokenize(segment)
	if err != nil {
		return nil, err
	}

	runes := []rune(segment)
	covered := 0
	var out []annotation.Annotation
	for _, s := range spans {
		if s.Start < covered || s.End > len(runes) || s.Start >= s.End {
			return nil, fmt.Errorf("%w: token %q at [%d, %d) misaligned", ErrUnconsumed, s.Text, from+s.Start, from+s.End)
		}
		if gap := runes[covered:s.Start]; !allSpace(gap) {
			return nil, fmt.Errorf("%w: %q at %d", ErrUnconsumed, string(gap), from+covered)
		}
		text := string(runes[s.Start:s.End])
		kind := nlp.Classify(text)
		tok, err := annotation.NewToken(text, from+s.Start, from+s.End, kind)
		if err != nil {
			return nil, err
		}
		if p.isStop != nil && kind == annotation.KindWord && p.isStop(text) {
			tok = tok.WithProp(annotation.PropStop, "true")
		}
		out = append(out, tok)
		covered = s.End
	}
	if gap := runes[covered:]; !allSpace(gap) {
		return nil, fmt.Errorf("%w: %q at %d", ErrUnconsumed, string(gap), from+covered)
	}
	return out, nil
}

func allSpace(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Parse turns a view back into its records.
func Parse(view string) ([]annotation.Annotation, error) {
	anns, err := annotation.ParseAll(view)
	if err != nil {
		return nil, fmt.Errorf("parsing view: %w", err)
	}
	return anns, nil
}

// WithoutTokens drops Token records.
func WithoutTokens(anns []annotation.Annotation) []annotation.Annotation {
	var out []annotation.Annotation
	for _, a := range anns {
		if !annotation.IsToken(a) {
			out = append(out, a)
		}
	}
	return out
}
