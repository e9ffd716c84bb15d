// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Record grammar:
//
//	record = "<" quoted "(" field { [", "] field } ")>"
//	field  = key "=" quoted
//	quoted = "'" { char | escape } "'"
//	escape = "\" hex hex
//	char   = any rune except \ ' < >
//
// The fields normalizedContents, start and end are required; every other
// field becomes a property in the order written. Inside quoted text and keys
// the runes \ ' < > are always escaped, so a record holds no bare '>' before
// its terminating ")>". Keys also escape space = , ( and ). A property whose
// key equals a field name has its first rune escaped, and fields are told
// apart from properties before unescaping, so any key round-trips.

// ErrMalformedRecord is returned when a serialized record cannot be parsed.
var ErrMalformedRecord = errors.New("malformed annotation record")

const (
	fieldContents = "normalizedContents"
	fieldStart    = "start"
	fieldEnd      = "end"
)

// Escape rewrites the reserved runes of the record format as \hh.
func Escape(s string) string {
	if !strings.ContainsAny(s, `\'<>`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\', '\'', '<', '>':
			fmt.Fprintf(&b, `\%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeKey escapes a property key so the parser reads it back as the same
// property.
func escapeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 8)
	for i, r := range key {
		switch {
		case strings.ContainsRune(`\'<>=,() `, r):
			fmt.Fprintf(&b, `\%02x`, r)
		case i == 0 && isFieldName(key):
			fmt.Fprintf(&b, `\%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isFieldName(key string) bool {
	return key == fieldContents || key == fieldStart || key == fieldEnd
}

// Unescape reverses Escape.
func Unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+3 > len(s) {
			return "", fmt.Errorf("%w: truncated escape in %q", ErrMalformedRecord, s)
		}
		v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: bad escape in %q", ErrMalformedRecord, s)
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}

// String returns the canonical record of a.
func (a Annotation) String() string {
	var b strings.Builder
	b.WriteString("<'")
	b.WriteString(Escape(a.Type))
	b.WriteString("'(")
	writeField(&b, fieldContents, a.NormalizedContents)
	b.WriteString(", ")
	writeField(&b, fieldStart, strconv.Itoa(a.Start))
	b.WriteString(", ")
	writeField(&b, fieldEnd, strconv.Itoa(a.End))
	for _, p := range a.Props {
		b.WriteString(", ")
		writeProp(&b, p.Key, p.Value)
	}
	b.WriteString(")>")
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString("='")
	b.WriteString(Escape(value))
	b.WriteByte('\'')
}

func writeProp(b *strings.Builder, key, value string) {
	b.WriteString(escapeKey(key))
	b.WriteString("='")
	b.WriteString(Escape(value))
	b.WriteByte('\'')
}

// Parse parses exactly one record.
func Parse(record string) (Annotation, error) {
	a, n, err := parseRecord(record)
	if err != nil {
		return Annotation{}, err
	}
	if n != len(record) {
		return Annotation{}, fmt.Errorf("%w: trailing text after record: %q", ErrMalformedRecord, record[n:])
	}
	return a, nil
}

// ParseAll parses a concatenation of records.
func ParseAll(s string) ([]Annotation, error) {
	var out []Annotation
	for pos := 0; pos < len(s); {
		a, n, err := parseRecord(s[pos:])
		if err != nil {
			return nil, fmt.Errorf("record at byte %d: %w", pos, err)
		}
		out = append(out, a)
		pos += n
	}
	return out, nil
}

// parseRecord parses the record at the head of s and returns the number of
// bytes consumed.
func parseRecord(s string) (Annotation, int, error) {
	p := &recordParser{s: s}
	if !p.consume("<") {
		return Annotation{}, 0, p.fail("expected '<'")
	}
	typ, err := p.quoted()
	if err != nil {
		return Annotation{}, 0, err
	}
	if !p.consume("(") {
		return Annotation{}, 0, p.fail("expected '('")
	}

	var (
		contents           string
		start, end         int
		haveContents       bool
		haveStart, haveEnd bool
		props              Props
	)
	for first := true; ; first = false {
		if p.consume(")>") {
			break
		}
		if !first {
			if !p.consume(", ") {
				p.consume(",")
			}
		}
		rawKey, err := p.key()
		if err != nil {
			return Annotation{}, 0, err
		}
		if !p.consume("=") {
			return Annotation{}, 0, p.fail("expected '=' after " + rawKey)
		}
		value, err := p.quoted()
		if err != nil {
			return Annotation{}, 0, err
		}
		switch rawKey {
		case fieldContents:
			contents, haveContents = value, true
		case fieldStart:
			if start, err = strconv.Atoi(value); err != nil {
				return Annotation{}, 0, p.fail("bad start " + strconv.Quote(value))
			}
			haveStart = true
		case fieldEnd:
			if end, err = strconv.Atoi(value); err != nil {
				return Annotation{}, 0, p.fail("bad end " + strconv.Quote(value))
			}
			haveEnd = true
		default:
			key, err := Unescape(rawKey)
			if err != nil {
				return Annotation{}, 0, err
			}
			props = append(props, Prop{Key: key, Value: value})
		}
	}

	if !haveContents || !haveStart || !haveEnd {
		return Annotation{}, 0, p.fail("missing normalizedContents, start or end")
	}
	a, err := New(typ, contents, start, end, props...)
	if err != nil {
		return Annotation{}, 0, err
	}
	return a, p.pos, nil
}

type recordParser struct {
	s   string
	pos int
}

func (p *recordParser) consume(tok string) bool {
	if strings.HasPrefix(p.s[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *recordParser) fail(msg string) error {
	rest := p.s[p.pos:]
	if len(rest) > 40 {
		rest = rest[:40] + "..."
	}
	return fmt.Errorf("%w: %s at %q", ErrMalformedRecord, msg, rest)
}

func (p *recordParser) quoted() (string, error) {
	if !p.consume("'") {
		return "", p.fail("expected quote")
	}
	end := strings.IndexByte(p.s[p.pos:], '\'')
	if end < 0 {
		return "", p.fail("unterminated quote")
	}
	raw := p.s[p.pos : p.pos+end]
	p.pos += end + 1
	return Unescape(raw)
}

// key returns the field name as written, still escaped. An empty name is a
// property with the empty key.
func (p *recordParser) key() (string, error) {
	end := strings.IndexByte(p.s[p.pos:], '=')
	if end < 0 {
		return "", p.fail("expected field name")
	}
	raw := p.s[p.pos : p.pos+end]
	if strings.ContainsAny(raw, "'()<>, ") {
		return "", p.fail("bad field name")
	}
	p.pos += end
	return raw, nil
}
