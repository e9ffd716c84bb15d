// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package regexstring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monkeys = "i saw a monkey. the monkey was sad. it made me sad to see a sad monkey."

func mustNew(t *testing.T, alts []string, opts ...Option) *RegexString {
	t.Helper()
	rs, err := New(alts, opts...)
	require.NoError(t, err)
	return rs
}

func texts(ms []Match) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Text)
	}
	return out
}

func TestNewRendering(t *testing.T) {
	tests := []struct {
		name string
		alts []string
		opts []Option
		want string
	}{
		{"single", []string{"a monkey"}, nil, "a monkey"},
		{"single with append", []string{"a monkey"}, []Option{Append(`\.`)}, `a monkey\.`},
		{"single optional with append", []string{"a monkey"}, []Option{Optional(), Append(`\.`)}, `(?:a monkey)?\.`},
		{"longest first", []string{"a monkey", "the monkey", "a sad monkey"}, nil, "(?:a sad monkey|the monkey|a monkey)"},
		{"ties keep order", []string{"good", "work", "job"}, nil, "(?:good|work|job)"},
		{"optional", []string{" sad", " weeping"}, []Option{Optional()}, "(?: weeping| sad)?"},
		{"capturing", []string{" sad", " weeping"}, []Option{Capturing()}, "( weeping| sad)"},
		{"prepend", []string{"see", "saw"}, []Option{Prepend(`\w+ `)}, `\w+ (?:see|saw)`},
		{"prepend and append", []string{"see", "saw"}, []Option{Prepend(`(?:\w+ )?`), Append(" a")}, `(?:\w+ )?(?:see|saw) a`},
		{"whole word", []string{"IV"}, []Option{WholeWord()}, `\bIV\b`},
		{"backspace boundaries", []string{"IV"}, []Option{Prepend("\b"), Append("\b")}, `\bIV\b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustNew(t, tt.alts, tt.opts...).String())
		})
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		alts []string
		opts []Option
	}{
		{"no alternatives", nil, nil},
		{"whole word with boundary prepend", []string{"IV"}, []Option{WholeWord(), Prepend(`\b`)}},
		{"whole word with boundary append", []string{"IV"}, []Option{WholeWord(), Append(`\b`)}},
		{"whole word with backspace prepend", []string{"IV"}, []Option{WholeWord(), Prepend("\b")}},
		{"whole word with backspace append", []string{"IV"}, []Option{WholeWord(), Append("\b")}},
		{"bad regex", []string{"(unclosed"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.alts, tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestMatchTriples(t *testing.T) {
	rs := mustNew(t, []string{"a monkey", "the monkey", "a sad monkey"})
	got := rs.MatchTriples("I saw a monkey. The monkey was sad. It made me sad to see a sad monkey.")
	assert.Equal(t, []Match{{"a monkey", 6, 14}, {"a sad monkey", 58, 70}}, got)

	got = mustNew(t, []string{"a sad monkey", "a monkey"}).MatchTriples("Ünïcode a monkey")
	assert.Equal(t, []Match{{"a monkey", 8, 16}}, got, "rune offsets")
}

func TestWholeWord(t *testing.T) {
	assert.Len(t, mustNew(t, []string{"IV"}).MatchTriples("IVY IV YIV"), 3)
	assert.Len(t, mustNew(t, []string{"IV"}, WholeWord()).MatchTriples("IVY IV YIV"), 1)
}

func TestNestedAlternatives(t *testing.T) {
	input := "i saw a monkey. the monkey was sad.it made me sad to see a sad monkey. it made me weep to see a weeping monkey."
	unhappy := mustNew(t, []string{" sad", " weeping"}, Optional())
	whole := mustNew(t, []string{"a" + unhappy.String() + " monkey"})

	assert.Equal(t, "a(?: weeping| sad)? monkey", whole.String())
	assert.Equal(t, []string{"a monkey", "a sad monkey", "a weeping monkey"}, texts(whole.MatchTriples(input)))
}

func TestFromRegex(t *testing.T) {
	rs, err := FromRegex(`\d+`)
	require.NoError(t, err)
	assert.Equal(t, []Match{{"170", 4, 7}, {"220", 12, 15}}, rs.MatchTriples("was 170 and 220"))

	_, err = FromRegex("")
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = FromRegex("[")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestConcat(t *testing.T) {
	period := mustNew(t, []string{`\.`})

	rs, err := Concat(mustNew(t, []string{"a monkey"}, Optional()), period, false)
	require.NoError(t, err)
	assert.Equal(t, `(?:a monkey)?\.`, rs.String())
	assert.Equal(t, []string{"a monkey.", ".", "."}, texts(rs.MatchTriples(monkeys)))

	optMonkeys := mustNew(t, []string{"a monkey", "the monkey", "a sad monkey"}, Optional())
	spaced := "i saw a monkey . the monkey was sad. it made me sad to see a sad monkey."

	rs, err = Concat(optMonkeys, period, false)
	require.NoError(t, err)
	assert.Equal(t, `(?:a sad monkey|the monkey|a monkey)?\.`, rs.String())
	assert.Equal(t, []string{".", ".", "a sad monkey."}, texts(rs.MatchTriples(spaced)))

	rs, err = Concat(optMonkeys, period, true)
	require.NoError(t, err)
	assert.Equal(t, `(?:a sad monkey|the monkey|a monkey)?(?:\s)?\.`, rs.String())
	assert.Equal(t, []string{"a monkey .", ".", "a sad monkey."}, texts(rs.MatchTriples(spaced)))

	_, err = Concat(nil, period, false)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = Concat(period, nil, false)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestConcatGroupsAlternation(t *testing.T) {
	plural, err := FromRegex("s")
	require.NoError(t, err)

	animals, err := FromRegex("cat|dog")
	require.NoError(t, err)
	rs, err := Concat(animals, plural, false)
	require.NoError(t, err)
	assert.Equal(t, "(?:cat|dog)s", rs.String())
	assert.Empty(t, rs.MatchTriples("a cat"))
	assert.Equal(t, []string{"cats", "dogs"}, texts(rs.MatchTriples("cats and dogs")))

	single := mustNew(t, []string{"cat|dog"})
	rs, err = Concat(single, plural, false)
	require.NoError(t, err)
	assert.Equal(t, "(?:cat|dog)s", rs.String())

	grouped, err := FromRegex(`(?:a|b)[|]\|c`)
	require.NoError(t, err)
	assert.Equal(t, `(?:(?:a|b)[|]\|c)`, grouped.String())

	inner, err := FromRegex(`(?:a|b)[|\]]x`)
	require.NoError(t, err)
	assert.Equal(t, `(?:a|b)[|\]]x`, inner.String())
}

func TestConcatWithWordDistancesChain(t *testing.T) {
	input := strings.ToLower("I saw a sad monkey. It made me sad to see a morose monkey. " +
		"The monkey was the saddest monkey ever seen. Such a sad, sad monkey.")

	saw := mustNew(t, []string{"saw", "see"}, Optional())
	article := mustNew(t, []string{"a", "the"}, Optional())
	rs3, err := ConcatWithWordDistances(saw, article, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, `(?:(?:saw|see)(?:\b\S+)?\s)?(?:the|a)?`, rs3.String())
	assert.Equal(t, []string{"saw a"}, texts(rs3.MatchTriples("saw a monkey")))

	rs5, err := ConcatWithWordDistances(rs3, mustNew(t, []string{"saddest", "sad", "morose"}), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, `(?:(?:saw|see)(?:\b\S+)?\s)?(?:(?:the|a)(?:\b\S+)?\s)?(?:saddest|morose|sad)`, rs5.String())
	assert.Equal(t, []string{"saw a sad", "sad", "see a morose", "the saddest", "a sad", "sad"}, texts(rs5.MatchTriples(input)))

	final, err := ConcatWithWordDistances(rs5, mustNew(t, []string{"monkey"}), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, `(?:(?:saw|see)(?:\b\S+)?\s)?(?:(?:the|a)(?:\b\S+)?\s)?(?:saddest|morose|sad)(?:\b\S+)?\smonkey`, final.String())
	assert.Equal(t, []string{"saw a sad monkey", "see a morose monkey", "the saddest monkey", "sad monkey"}, texts(final.MatchTriples(input)))
}

func TestConcatWithWordDistancesRequiredHead(t *testing.T) {
	input := strings.ToLower("I saw a sad monkey. It made me sad to see a morose monkey. " +
		"The monkey was the saddest monkey ever seen. Such a sad, sad monkey.")

	rs3, err := ConcatWithWordDistances(mustNew(t, []string{"saw"}), mustNew(t, []string{"a", "the"}, Optional()), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, `saw(?:\b\S+)?\s(?:the|a)?`, rs3.String())

	rs5, err := ConcatWithWordDistances(rs3, mustNew(t, []string{"saddest", "sad", "morose"}), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, `saw(?:\b\S+)?\s(?:(?:the|a)(?:\b\S+)?\s)?(?:saddest|morose|sad)`, rs5.String())
	assert.Equal(t, []string{"saw a sad"}, texts(rs5.MatchTriples(input)))
}

func TestConcatWithWordDistancesMinMax(t *testing.T) {
	input := strings.ToLower("I saw a sad monkey. It made me sad to see a morose monkey. " +
		"The monkey was the saddest, loneliest monkey ever seen. Such a sad, sorrowful monkey.")
	adj := mustNew(t, []string{"sad", "saddest", "morose"})
	monkey := mustNew(t, []string{"monkey"})

	tests := []struct {
		min, max int
		regex    string
		want     []string
	}{
		{0, 0, `(?:saddest|morose|sad)(?:\b\S+)?\smonkey`, []string{"sad monkey", "morose monkey"}},
		{0, 1, `(?:saddest|morose|sad)(?:\b\S+)?(?:\s\S+){0,1}\smonkey`,
			[]string{"sad monkey", "morose monkey", "saddest, loneliest monkey", "sad, sorrowful monkey"}},
		{1, 2, `(?:saddest|morose|sad)(?:\b\S+)?(?:\s\S+){1,2}\smonkey`,
			[]string{"morose monkey. the monkey", "saddest, loneliest monkey", "sad, sorrowful monkey"}},
		{2, 3, `(?:saddest|morose|sad)(?:\b\S+)?(?:\s\S+){2,3}\smonkey`,
			[]string{"morose monkey. the monkey"}},
	}
	for _, tt := range tests {
		rs, err := ConcatWithWordDistances(adj, monkey, tt.min, tt.max)
		require.NoError(t, err)
		assert.Equal(t, tt.regex, rs.String())
		assert.Equal(t, tt.want, texts(rs.MatchTriples(input)))
	}
}

func TestConcatWithWordDistancesMonotonic(t *testing.T) {
	input := `up!!!" yelled the wounded sheriff, then the deputy`
	up := mustNew(t, []string{"up"})

	for _, tail := range []string{"yelled", "the", "wounded", "sheriff", "deputy"} {
		matched := false
		for max := 0; max <= 6; max++ {
			rs, err := ConcatWithWordDistances(up, mustNew(t, []string{tail}), 0, max)
			require.NoError(t, err)
			now := rs.Regexp().MatchString(input)
			if matched {
				assert.True(t, now, "%s lost its match at max %d", tail, max)
			}
			matched = now
		}
		assert.True(t, matched, tail)
	}
}

func TestConcatWithWordDistancesPunctuation(t *testing.T) {
	up := mustNew(t, []string{"up"})
	optUp := mustNew(t, []string{"up"}, Optional())
	input := `"stick 'em up!!!" yelled the wounded sheriff.`

	tests := []struct {
		name     string
		head     *RegexString
		tail     string
		min, max int
		regex    string
		want     []string
	}{
		{"adjacent", up, "yelled", 0, 0, `up(?:\b\S+)?\syelled`, []string{`up!!!" yelled`}},
		{"too close", up, "yelled", 1, 2, `up(?:\b\S+)?(?:\s\S+){1,2}\syelled`, nil},
		{"in range", up, "the", 1, 2, `up(?:\b\S+)?(?:\s\S+){1,2}\sthe`, []string{`up!!!" yelled the`}},
		{"too far", up, "sheriff", 1, 2, `up(?:\b\S+)?(?:\s\S+){1,2}\ssheriff`, nil},
		{"optional adjacent", optUp, "yelled", 0, 0, `(?:(?:up)(?:\b\S+)?\s)?yelled`, []string{`up!!!" yelled`}},
		{"optional too close", optUp, "yelled", 1, 2, `(?:(?:up)(?:\b\S+)?)?(?:\s\S+){1,2}\syelled`, []string{` 'em up!!!" yelled`}},
		{"optional in range", optUp, "wounded", 1, 2, `(?:(?:up)(?:\b\S+)?)?(?:\s\S+){1,2}\swounded`, []string{`up!!!" yelled the wounded`}},
		{"optional too far", optUp, "sheriff", 1, 2, `(?:(?:up)(?:\b\S+)?)?(?:\s\S+){1,2}\ssheriff`, []string{` the wounded sheriff`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ConcatWithWordDistances(tt.head, mustNew(t, []string{tt.tail}), tt.min, tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.regex, rs.String())
			got := texts(rs.MatchTriples(input))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConcatWithWordDistancesOptionalWholeWord(t *testing.T) {
	dull := mustNew(t, []string{"dull"}, WholeWord(), Optional())
	red := mustNew(t, []string{"red"}, WholeWord())

	rs, err := ConcatWithWordDistances(dull, red, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Match{{"dull red", 0, 8}}, rs.MatchTriples("dull red"))
	assert.Equal(t, []Match{{"red", 6, 9}}, rs.MatchTriples("udull red"))

	rs, err = ConcatWithWordDistances(mustNew(t, []string{"dull"}, Optional()), red, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Match{{"dull red", 1, 9}}, rs.MatchTriples("udull red"))
}

func TestConcatWithWordDistancesErrors(t *testing.T) {
	a := mustNew(t, []string{"saw", "see"}, Optional())
	b := mustNew(t, []string{"a", "the"}, Optional())

	_, err := ConcatWithWordDistances(a, b, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = ConcatWithWordDistances(a, b, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = ConcatWithWordDistances(nil, b, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = ConcatWithWordDistances(a, nil, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestBuild(t *testing.T) {
	rs, err := Build(Alts("good", "terrific"), Distance(2), Alts("work", "job"))
	require.NoError(t, err)
	assert.Equal(t, `(?:terrific|good)(?:\b\S+)?(?:\s\S+){0,2}\s(?:work|job)`, rs.String())

	rs, err = Build(Alts("incredibly"), Distance(0), Alts("good", "terrific"), Distance(2), Alts("work", "job"))
	require.NoError(t, err)
	assert.Equal(t, `incredibly(?:\b\S+)?\s(?:terrific|good)(?:\b\S+)?(?:\s\S+){0,2}\s(?:work|job)`, rs.String())
	assert.Equal(t, []string{"incredibly good, honest work"}, texts(rs.MatchTriples("incredibly good, honest work")))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
	}{
		{"too short", []Segment{Alts("holy", "smoke"), Distance(2)}},
		{"single", []Segment{Alts("holy", "smoke")}},
		{"even", []Segment{Alts("a"), Distance(1), Alts("b"), Distance(1)}},
		{"wrong kind", []Segment{Alts("a"), Alts("b"), Alts("c")}},
		{"gap first", []Segment{Distance(1), Alts("b"), Distance(1)}},
		{"empty alternatives", []Segment{Alts(), Distance(1), Alts("b")}},
		{"negative distance", []Segment{Alts("a"), Distance(-1), Alts("b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.segments...)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestIgnoreCase(t *testing.T) {
	rs, err := New([]string{"between", "from"}, IgnoreCase(), WholeWord())
	require.NoError(t, err)
	assert.Equal(t, `\b(?i:(?:between|from))\b`, rs.String())
	assert.Equal(t, []string{"Between", "FROM"}, texts(rs.MatchTriples("Between 1 and 2, FROM 3, fromage")))
}
