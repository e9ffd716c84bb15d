// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package loop

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/minmax/internal/annotation"
	"github.com/pdiddy/minmax/internal/nlp"
	"github.com/pdiddy/minmax/internal/regexstring"
	"github.com/pdiddy/minmax/internal/view"
)

type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(text string) ([]nlp.Span, error) {
	var out []nlp.Span
	pos := 0
	for _, f := range strings.Fields(text) {
		i := strings.Index(text[pos:], f) + pos
		out = append(out, nlp.Span{Text: f, Start: i, End: i + len(f)})
		pos = i + len(f)
	}
	return out, nil
}

// digitsView annotates 1, 2 and 3 as One, Two and Three and projects text.
func digitsView(t *testing.T, text string) string {
	t.Helper()
	var anns []annotation.Annotation
	for typ, digit := range map[string]string{"One": "1", "Two": "2", "Three": "3"} {
		rs := regexstring.MustNew([]string{digit}, regexstring.WholeWord())
		for _, m := range rs.MatchTriples(text) {
			a, err := annotation.New(typ, m.Text, m.Start, m.End)
			require.NoError(t, err)
			anns = append(anns, a)
		}
	}
	v, err := view.NewProjector(fieldsTokenizer{}).Build(text, anns)
	require.NoError(t, err)
	return v
}

func edgeCharacters(_ Chain, doc string) (annotation.Props, error) {
	runes := []rune(doc)
	return annotation.Props{
		{Key: "first_character", Value: string(runes[0])},
		{Key: "last_character", Value: string(runes[len(runes)-1])},
	}, nil
}

func oneTwoThree(t *testing.T) *Loop {
	t.Helper()
	l, err := New([]Step{
		Hop{Pattern: view.MustDistanceRegex("One", 0, 2, "", "Two"), Terminal: "Two"},
		Final{Pattern: view.MustDistanceRegex("Two", 0, 2, "", "Three"), Synthesize: edgeCharacters},
	}, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return l
}

type span struct {
	contents   string
	start, end int
}

func TestRun(t *testing.T) {
	tests := []struct {
		text string
		want []span
	}{
		{"1 a 2 b 3", []span{{"1 a 2 b 3", 0, 9}}},
		{"1 a 1 b 2 c d 3", []span{{"1 b 2 c d 3", 4, 15}}},
		{"1 a 1 b 2 c 2 d 3", []span{{"1 b 2 c 2 d 3", 4, 17}}},
		{"z 1 a 1 b 2 c 2 d 3 y", []span{{"1 b 2 c 2 d 3", 6, 19}}},
		{"z 1 a 1 b 2 c 2 d 3 y 1 2 3 x", []span{{"1 b 2 c 2 d 3", 6, 19}, {"1 2 3", 22, 27}}},
		{"1 a 2 b c d e f g h i 3", nil},
		{"no digits here", nil},
	}
	l := oneTwoThree(t)
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := l.Run(digitsView(t, tt.text), tt.text)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, DefaultRelationType, got[i].Type)
				assert.Equal(t, w.contents, got[i].NormalizedContents)
				assert.Equal(t, w.start, got[i].Start)
				assert.Equal(t, w.end, got[i].End)

				first, _ := got[i].Props.Get("first_character")
				last, _ := got[i].Props.Get("last_character")
				assert.Equal(t, tt.text[:1], first)
				assert.Equal(t, tt.text[len(tt.text)-1:], last)
			}
		})
	}
}

func TestRunSkipsCandidatesInsideComposite(t *testing.T) {
	text := "1 2 1 2 x x 3"
	got, err := oneTwoThree(t).Run(digitsView(t, text), text)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, 13, got[0].End)
}

func TestRunChainContents(t *testing.T) {
	text := "1 a 2 b 3"
	var seen Chain
	l, err := New([]Step{
		Hop{Pattern: view.MustDistanceRegex("One", 0, 2, "", "Two"), Terminal: "Two"},
		Final{
			Pattern:      view.MustDistanceRegex("Two", 0, 2, "", "Three"),
			RelationType: "Triple",
			Synthesize: func(c Chain, _ string) (annotation.Props, error) {
				seen = c
				return annotation.Props{{Key: "middle", Value: c[1].First().NormalizedContents}}, nil
			},
		},
	})
	require.NoError(t, err)

	got, err := l.Run(digitsView(t, text), text)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Triple", got[0].Type)

	require.Len(t, seen, 2)
	assert.Equal(t, "One", seen[0].First().Type)
	assert.Equal(t, "Two", seen[0].Last().Type)
	assert.Equal(t, "Two", seen[1].First().Type)
	assert.Equal(t, "Three", seen[1].Last().Type)
	assert.Len(t, seen[1].Annotations, 3)
	middle, _ := got[0].Props.Get("middle")
	assert.Equal(t, "2", middle)
}

func TestRunSingleFinalStep(t *testing.T) {
	text := "1 x 2 1 2"
	l, err := New([]Step{
		Final{Pattern: view.MustDistanceRegex("One", 0, 1, "", "Two"), Synthesize: edgeCharacters},
	})
	require.NoError(t, err)

	got, err := l.Run(digitsView(t, text), text)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1 x 2", got[0].NormalizedContents)
	assert.Equal(t, "1 2", got[1].NormalizedContents)
}

func TestRunSynthesizeError(t *testing.T) {
	text := "1 2 3"
	boom := errors.New("boom")
	l, err := New([]Step{
		Hop{Pattern: view.MustDistanceRegex("One", 0, 0, "", "Two"), Terminal: "Two"},
		Final{
			Pattern:    view.MustDistanceRegex("Two", 0, 0, "", "Three"),
			Synthesize: func(Chain, string) (annotation.Props, error) { return nil, boom },
		},
	})
	require.NoError(t, err)

	_, err = l.Run(digitsView(t, text), text)
	assert.ErrorIs(t, err, boom)
}

func TestRunTerminalMissingFromMatch(t *testing.T) {
	text := "1 2 3"
	l, err := New([]Step{
		Hop{Pattern: view.MustDistanceRegex("One", 0, 0, "", "Two"), Terminal: "Three"},
		Final{Pattern: view.MustDistanceRegex("Two", 0, 0, "", "Three"), Synthesize: edgeCharacters},
	})
	require.NoError(t, err)

	_, err = l.Run(digitsView(t, text), text)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNewRejectsMisplacedFinal(t *testing.T) {
	re := view.MustDistanceRegex("One", 0, 2, "", "Two")
	hop := Hop{Pattern: re, Terminal: "Two"}
	final := Final{Pattern: re, Synthesize: edgeCharacters}

	tests := []struct {
		name  string
		steps []Step
	}{
		{"no steps", nil},
		{"final first", []Step{final, final}},
		{"final in the middle", []Step{hop, final, final}},
		{"hop last", []Step{final, hop}},
		{"only hops", []Step{hop, hop}},
		{"final without synthesize", []Step{hop, Final{Pattern: re}}},
		{"hop without terminal", []Step{Hop{Pattern: re}, final}},
		{"hop without pattern", []Step{Hop{Terminal: "Two"}, final}},
		{"final without pattern", []Step{hop, Final{Synthesize: edgeCharacters}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.steps)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}
