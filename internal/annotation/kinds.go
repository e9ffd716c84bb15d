// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

// Annotation types produced by this module.
const (
	TypeToken    = "Token"
	TypeSentence = "Sentence"
)

// Property keys and values carried by Token annotations.
const (
	PropKind = "kind"
	PropStop = "stop"

	KindWord  = "word"
	KindPunc  = "punc"
	KindOther = "other"
)

// NewToken creates a Token annotation of the given kind.
func NewToken(text string, start, end int, kind string) (Annotation, error) {
	return New(TypeToken, text, start, end, Prop{Key: PropKind, Value: kind})
}

// NewSentence creates a Sentence annotation. Segmenters may produce
// one-rune sentences for stray characters; those are valid.
func NewSentence(text string, start, end int) (Annotation, error) {
	return New(TypeSentence, text, start, end)
}

// IsToken reports whether a is a Token annotation.
func IsToken(a Annotation) bool {
	return a.Type == TypeToken
}
