// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/orsinium-labs/stopwords"

	"github.com/pdiddy/minmax/internal/annotation"
)

// Span is a piece of text with rune offsets.
type Span struct {
	Text  string
	Start int
	End   int
}

// Pipeline tokenizes text and splits it into sentences. It is safe for
// concurrent use.
type Pipeline struct {
	stop *stopwords.Stopwords
}

var (
	defaultOnce     sync.Once
	defaultPipeline *Pipeline
)

// Default returns the process-wide pipeline, creating it on first use.
func Default() *Pipeline {
	defaultOnce.Do(func() {
		defaultPipeline = &Pipeline{stop: stopwords.MustGet("en")}
	})
	return defaultPipeline
}

// IsStopword reports whether word is an English stopword. Case is ignored.
func (p *Pipeline) IsStopword(word string) bool {
	return p.stop.Contains(strings.ToLower(word))
}

// Tokenize splits text into token spans. Every non-space rune of text lies
// in exactly one span; text the tokenizer drops or rewrites is emitted as
// whitespace-separated fallback spans.
func (p *Pipeline) Tokenize(text string) ([]Span, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tokenizing: %w", err)
	}

	pieces := make([]string, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		pieces = append(pieces, tok.Text)
	}
	return align(text, pieces, true), nil
}

// Sentences splits text into Sentence annotations. A segmenter may emit a
// stray rune as its own sentence.
func (p *Pipeline) Sentences(text string) ([]annotation.Annotation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("segmenting: %w", err)
	}

	pieces := make([]string, 0, len(doc.Sentences()))
	for _, s := range doc.Sentences() {
		pieces = append(pieces, strings.TrimSpace(s.Text))
	}

	var out []annotation.Annotation
	for _, span := range align(text, pieces, false) {
		ann, err := annotation.NewSentence(span.Text, span.Start, span.End)
		if err != nil {
			return nil, err
		}
		out = append(out, ann)
	}
	return out, nil
}

// align locates pieces in text left to right and converts their byte
// positions to rune offsets. With fill set, non-space text between located
// pieces becomes extra spans split on whitespace.
func align(text string, pieces []string, fill bool) []Span {
	offsets := annotation.NewOffsets(text)
	var out []Span
	emit := func(from, to int) {
		out = append(out, Span{
			Text:  text[from:to],
			Start: offsets.Rune(from),
			End:   offsets.Rune(to),
		})
	}
	gap := func(from, to int) {
		if !fill {
			return
		}
		for from < to {
			seg := text[from:to]
			lead := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
			from += lead
			if from >= to {
				return
			}
			n := strings.IndexFunc(text[from:to], unicode.IsSpace)
			if n < 0 {
				n = to - from
			}
			emit(from, from+n)
			from += n
		}
	}

	pos := 0
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		idx := strings.Index(text[pos:], piece)
		if idx < 0 {
			continue
		}
		gap(pos, pos+idx)
		emit(pos+idx, pos+idx+len(piece))
		pos += idx + len(piece)
	}
	gap(pos, len(text))
	return out
}
