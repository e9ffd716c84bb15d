// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package minmax extracts numeric range relations ("between 170 and 220
// pounds", "a minimum of 15 minutes and a maximum of 20 minutes") from a
// document and its Number and Unit_of_Measure entities.
//
// Extraction runs a fixed sequence of phases. After each phase the
// entities enclosed by the relations it found are consumed, so later
// phases never re-explain the same text.
package minmax

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/minmax/internal/annotation"
	"github.com/pdiddy/minmax/internal/gazetteer"
	"github.com/pdiddy/minmax/internal/nlp"
	"github.com/pdiddy/minmax/internal/view"
	"github.com/pdiddy/minmax/pkg/types"
)

// Extraction errors.
var (
	ErrEmptyDocument = errors.New("document has no text")
	ErrInvalidEntity = errors.New("invalid entity")
)

// relationNamespace seeds the name-based relation IDs.
var relationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pdiddy/minmax/relation"))

// Segmenter splits text into Sentence annotations.
type Segmenter interface {
	Sentences(text string) ([]annotation.Annotation, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

// WithTokenizer replaces the default prose tokenizer.
func WithTokenizer(tok view.Tokenizer) Option {
	return func(e *Extractor) { e.tok = tok }
}

// WithSegmenter replaces the default prose sentence segmenter.
func WithSegmenter(seg Segmenter) Option {
	return func(e *Extractor) { e.seg = seg }
}

// WithPhases replaces DefaultPhases.
func WithPhases(phases ...Phase) Option {
	return func(e *Extractor) { e.phaseDefs = phases }
}

// Extractor runs the extraction phases. It holds no per-document state and
// is safe for concurrent use.
type Extractor struct {
	cfg       types.ExtractionConfig
	log       *zap.Logger
	tok       view.Tokenizer
	seg       Segmenter
	phaseDefs []Phase
	phases    []*compiledPhase
	proj      *view.Projector
}

// New compiles the phases for cfg.
func New(cfg types.ExtractionConfig, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		cfg:       cfg,
		log:       zap.NewNop(),
		phaseDefs: DefaultPhases,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tok == nil {
		e.tok = nlp.Default()
	}
	if e.seg == nil {
		e.seg = nlp.Default()
	}

	relationType := cfg.RelationType
	if relationType == "" {
		relationType = types.DefaultRelationType
	}
	e.cfg.RelationType = relationType

	for _, def := range e.phaseDefs {
		p, err := compilePhase(def, gazetteer.Backend(cfg.GazetteerBackend), relationType, e.log)
		if err != nil {
			return nil, err
		}
		e.phases = append(e.phases, p)
	}

	var projOpts []view.Option
	if cfg.MarkStopwords {
		projOpts = append(projOpts, view.WithStopwords(nlp.Default().IsStopword))
	}
	e.proj = view.NewProjector(e.tok, projOpts...)
	return e, nil
}

// Extract returns the relations found in doc, sorted by start offset.
func (e *Extractor) Extract(ctx context.Context, doc types.Document) ([]types.Relation, error) {
	found, err := e.Annotate(ctx, doc)
	if err != nil {
		return nil, err
	}
	relations := make([]types.Relation, 0, len(found))
	for _, a := range found {
		relations = append(relations, toRelation(doc.ID, a))
	}
	return relations, nil
}

// Annotate returns the relation annotations found in doc, sorted by start
// offset.
func (e *Extractor) Annotate(ctx context.Context, doc types.Document) ([]annotation.Annotation, error) {
	if doc.Text == "" {
		return nil, fmt.Errorf("document %q: %w", doc.ID, ErrEmptyDocument)
	}
	pool, err := EntityAnnotations(doc)
	if err != nil {
		return nil, err
	}
	log := e.log.With(zap.String("document", doc.ID))

	if !e.cfg.SentenceScoped {
		found, err := e.runPhases(ctx, doc.Text, pool)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", doc.ID, err)
		}
		log.Debug("extracted", zap.Int("relations", len(found)))
		return found, nil
	}

	sentences, err := e.seg.Sentences(doc.Text)
	if err != nil {
		return nil, fmt.Errorf("document %q: segmenting: %w", doc.ID, err)
	}
	offsets := annotation.NewOffsets(doc.Text)
	var found []annotation.Annotation
	for _, s := range sentences {
		text, err := offsets.Slice(s.Start, s.End)
		if err != nil {
			return nil, fmt.Errorf("document %q: sentence: %w", doc.ID, err)
		}
		local, dropped := shiftInto(pool, s)
		if dropped > 0 {
			log.Debug("entities cross a sentence boundary", zap.Int("sentence_start", s.Start), zap.Int("dropped", dropped))
		}
		rels, err := e.runPhases(ctx, text, local)
		if err != nil {
			return nil, fmt.Errorf("document %q: sentence at %d: %w", doc.ID, s.Start, err)
		}
		for _, r := range rels {
			r.Start += s.Start
			r.End += s.Start
			found = append(found, r)
		}
	}
	log.Debug("extracted", zap.Int("sentences", len(sentences)), zap.Int("relations", len(found)))
	return annotation.Sort(found), nil
}

// View returns the view the first phase matches over for doc.
func (e *Extractor) View(doc types.Document) (string, error) {
	pool, err := EntityAnnotations(doc)
	if err != nil {
		return "", err
	}
	if len(e.phases) == 0 {
		return e.proj.Build(doc.Text, annotation.Types(pool, inputTypes...))
	}
	return e.proj.Build(doc.Text, e.phases[0].annotations(doc.Text, pool))
}

func (e *Extractor) runPhases(ctx context.Context, text string, pool []annotation.Annotation) ([]annotation.Annotation, error) {
	var found []annotation.Annotation
	for _, p := range e.phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rels, err := p.run(text, pool, e.proj)
		if err != nil {
			return nil, err
		}
		e.log.Debug("phase done", zap.String("phase", p.name), zap.Int("relations", len(rels)))
		pool = annotation.RemoveEnclosed(pool, rels)
		found = append(found, rels...)
	}
	return annotation.Sort(found), nil
}

// shiftInto returns the pool annotations lying inside sentence, with
// offsets relative to it, and the number of annotations that straddle its
// edges.
func shiftInto(pool []annotation.Annotation, sentence annotation.Annotation) ([]annotation.Annotation, int) {
	var out []annotation.Annotation
	dropped := 0
	for _, a := range pool {
		switch {
		case a.Start >= sentence.Start && a.End <= sentence.End:
			a.Start -= sentence.Start
			a.End -= sentence.Start
			out = append(out, a)
		case annotation.Overlaps(a, sentence):
			dropped++
		}
	}
	return out, dropped
}

// EntityAnnotations converts the entities of doc into annotations. An
// entity with empty text takes its text from the document.
func EntityAnnotations(doc types.Document) ([]annotation.Annotation, error) {
	offsets := annotation.NewOffsets(doc.Text)
	anns := make([]annotation.Annotation, 0, len(doc.Entities))
	for i, ent := range doc.Entities {
		raw, err := offsets.Slice(ent.Start, ent.End)
		if err != nil {
			return nil, fmt.Errorf("%w: entity %d (%s %q): %v", ErrInvalidEntity, i, ent.Type, ent.Text, err)
		}
		text := ent.Text
		if text == "" {
			text = raw
		}
		a, err := annotation.New(ent.Type, text, ent.Start, ent.End)
		if err != nil {
			return nil, fmt.Errorf("%w: entity %d (%s %q): %v", ErrInvalidEntity, i, ent.Type, ent.Text, err)
		}
		anns = append(anns, a)
	}
	return anns, nil
}

// RelationID returns the stable ID of the relation at [start, end) of
// document docID.
func RelationID(docID string, start, end int) string {
	name := docID + ":" + strconv.Itoa(start) + ":" + strconv.Itoa(end)
	return uuid.NewSHA1(relationNamespace, []byte(name)).String()
}

func toRelation(docID string, a annotation.Annotation) types.Relation {
	return types.Relation{
		ID:             RelationID(docID, a.Start, a.End),
		Type:           a.Type,
		DocumentID:     docID,
		Start:          a.Start,
		End:            a.End,
		Text:           a.NormalizedContents,
		NormalizedText: nlp.CollapseSpaces(a.NormalizedContents),
		Properties:     a.Props.Map(),
	}
}
