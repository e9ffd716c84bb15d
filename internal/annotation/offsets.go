// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

import (
	"fmt"
	"unicode/utf8"
)

// Offsets converts between byte offsets and rune offsets of one text.
// Regular expressions report byte offsets; annotations carry rune offsets.
type Offsets struct {
	text string
	// runeAt[i] is the rune offset of byte i; runeAt[len(text)] is the
	// rune count.
	runeAt []int
	// byteAt[r] is the byte offset of rune r; byteAt[runeCount] is len(text).
	byteAt []int
}

// NewOffsets indexes text.
func NewOffsets(text string) *Offsets {
	o := &Offsets{
		text:   text,
		runeAt: make([]int, len(text)+1),
		byteAt: make([]int, 0, utf8.RuneCountInString(text)+1),
	}
	r := 0
	for i := range text {
		o.byteAt = append(o.byteAt, i)
		_, size := utf8.DecodeRuneInString(text[i:])
		for j := i; j < i+size; j++ {
			o.runeAt[j] = r
		}
		r++
	}
	o.runeAt[len(text)] = r
	o.byteAt = append(o.byteAt, len(text))
	return o
}

// RuneCount returns the number of runes in the text.
func (o *Offsets) RuneCount() int {
	return len(o.byteAt) - 1
}

// Rune returns the rune offset of byte offset b.
func (o *Offsets) Rune(b int) int {
	return o.runeAt[b]
}

// Byte returns the byte offset of rune offset r.
func (o *Offsets) Byte(r int) int {
	return o.byteAt[r]
}

// Slice returns the text between rune offsets start and end.
func (o *Offsets) Slice(start, end int) (string, error) {
	if start < 0 || end < start || end > o.RuneCount() {
		return "", fmt.Errorf("%w: [%d, %d) outside text of %d runes", ErrInvalidSpan, start, end, o.RuneCount())
	}
	return o.text[o.byteAt[start]:o.byteAt[end]], nil
}

// Text returns the indexed text.
func (o *Offsets) Text() string {
	return o.text
}
