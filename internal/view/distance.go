// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/minmax/internal/annotation"
)

// ErrInvalidDistance is returned for an unusable distance pattern request.
var ErrInvalidDistance = errors.New("invalid distance pattern")

var tokenKinds = []string{annotation.KindWord, annotation.KindPunc, annotation.KindOther}

// recordOpen matches the opening of a record of the given type, with the
// type quoted exactly as the record writer emits it.
func recordOpen(typ string) string {
	return "<'" + regexp.QuoteMeta(annotation.Escape(typ)) + "'"
}

func record(typ string) string {
	return recordOpen(typ) + `[^>]*>`
}

// DistanceRegex returns a pattern over views matching a first record, then
// between minTokens and maxTokens Token records, then a second record.
//
// With a non-empty kind only tokens of that kind count toward the distance;
// tokens of the other kinds may appear anywhere in the gap without using up
// the budget.
func DistanceRegex(first string, minTokens, maxTokens int, kind, second string) (*regexp.Regexp, error) {
	return distanceRegex("", first, minTokens, maxTokens, kind, second)
}

// AnchoredDistanceRegex is DistanceRegex matching only at the start of the
// view. A hop that must follow the previous hop's terminal record directly
// uses it.
func AnchoredDistanceRegex(first string, minTokens, maxTokens int, kind, second string) (*regexp.Regexp, error) {
	return distanceRegex("^", first, minTokens, maxTokens, kind, second)
}

func distanceRegex(anchor, first string, minTokens, maxTokens int, kind, second string) (*regexp.Regexp, error) {
	if first == "" || second == "" {
		return nil, fmt.Errorf("%w: empty annotation type", ErrInvalidDistance)
	}
	if minTokens < 0 || minTokens > maxTokens {
		return nil, fmt.Errorf("%w: token distance {%d,%d}", ErrInvalidDistance, minTokens, maxTokens)
	}

	var gap string
	if kind == "" {
		gap = fmt.Sprintf(`(?:%s){%d,%d}`, record(annotation.TypeToken), minTokens, maxTokens)
	} else {
		var others []string
		found := false
		for _, k := range tokenKinds {
			if k == kind {
				found = true
				continue
			}
			others = append(others, k)
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown token kind %q", ErrInvalidDistance, kind)
		}
		skip := fmt.Sprintf(`(?:%s[^>]*%s='(?:%s)'[^>]*>)*`,
			recordOpen(annotation.TypeToken), annotation.PropKind, strings.Join(others, "|"))
		counted := fmt.Sprintf(`%s[^>]*%s='%s'[^>]*>`, recordOpen(annotation.TypeToken), annotation.PropKind, kind)
		gap = fmt.Sprintf(`%s(?:%s%s){%d,%d}`, skip, counted, skip, minTokens, maxTokens)
	}

	re, err := regexp.Compile(anchor + record(first) + gap + record(second))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDistance, err)
	}
	return re, nil
}

// MustDistanceRegex is DistanceRegex for pattern tables. It panics on error.
func MustDistanceRegex(first string, minTokens, maxTokens int, kind, second string) *regexp.Regexp {
	re, err := DistanceRegex(first, minTokens, maxTokens, kind, second)
	if err != nil {
		panic(err)
	}
	return re
}

// MustAnchoredDistanceRegex is AnchoredDistanceRegex for pattern tables. It
// panics on error.
func MustAnchoredDistanceRegex(first string, minTokens, maxTokens int, kind, second string) *regexp.Regexp {
	re, err := AnchoredDistanceRegex(first, minTokens, maxTokens, kind, second)
	if err != nil {
		panic(err)
	}
	return re
}
