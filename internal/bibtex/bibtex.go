// Package bibtex parses single BibTeX citation records of the form
// @kind{key, field=value, ...}.
package bibtex

import (
	"fmt"
	"strings"
)

// Kind is the entry type of a citation record.
type Kind int

// Supported entry kinds.
const (
	Article Kind = iota + 1
	Book
	Booklet
	Conference
	InBook
	InCollection
	InProceedings
	Manual
	PhDThesis
	Misc
	Proceedings
	TechReport
	Unpublished
)

var kindNames = map[Kind]string{
	Article:       "article",
	Book:          "book",
	Booklet:       "booklet",
	Conference:    "conference",
	InBook:        "inbook",
	InCollection:  "incollection",
	InProceedings: "inproceedings",
	Manual:        "manual",
	PhDThesis:     "phdthesis",
	Misc:          "misc",
	Proceedings:   "proceedings",
	TechReport:    "techreport",
	Unpublished:   "unpublished",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by its BibTeX name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a BibTeX entry type to a Kind. Matching is case-sensitive.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Record is a parsed citation. Fields other than author, year and title are
// consumed during parsing and dropped.
type Record struct {
	Kind   Kind   `json:"kind"`
	Key    string `json:"key"`
	Author string `json:"author"`
	Year   string `json:"year"`
	Title  string `json:"title"`
}

// Parse parses one citation record. On failure it returns a *ParseError and
// no record.
func Parse(text string) (*Record, error) {
	c := newCursor([]byte(text))
	c.skipWhitespace()

	kind, err := parseKind(c)
	if err != nil {
		return nil, err
	}
	key, err := parseName(c)
	if err != nil {
		return nil, err
	}

	var author, year, title *string
	for {
		c.skipWhitespace()
		// A trailing comma before the closing brace ends the record.
		if b, ok := c.peek(); ok && b == '}' {
			break
		}

		field, err := parseKey(c)
		if err != nil {
			return nil, err
		}
		c.skipWhitespace()
		value, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		switch field {
		case "author":
			author = &value
		case "year":
			year = &value
		case "title":
			title = &value
		}

		c.skipWhitespace()
		b, ok := c.peek()
		if !ok {
			return nil, parseErr(c, ErrPrematureEnd, "")
		}
		if b == '}' {
			break
		}
	}

	switch {
	case title == nil:
		return nil, parseErr(c, ErrMissingField, "title")
	case author == nil:
		return nil, parseErr(c, ErrMissingField, "author")
	case year == nil:
		return nil, parseErr(c, ErrMissingField, "year")
	}

	return &Record{
		Kind:   kind,
		Key:    key,
		Author: *author,
		Year:   *year,
		Title:  *title,
	}, nil
}

// parseKind reads "@kind{" and validates the kind.
func parseKind(c *cursor) (Kind, error) {
	if b, ok := c.next(); !ok || b != '@' {
		return 0, parseErr(c, ErrInvalidStart, "")
	}
	start := c.mark()
	for {
		b, ok := c.next()
		if !ok {
			return 0, parseErr(c, ErrUnterminated, "entry kind")
		}
		if b == '{' {
			break
		}
	}
	name := c.slice(start, c.mark()-1)
	kind, ok := ParseKind(name)
	if !ok {
		return 0, parseErr(c, ErrInvalidKind, fmt.Sprintf("%q", name))
	}
	return kind, nil
}

// parseName reads the citation key up to the first comma not escaped by a
// backslash.
func parseName(c *cursor) (string, error) {
	start := c.mark()
	var prev byte
	for {
		b, ok := c.next()
		if !ok {
			return "", parseErr(c, ErrUnterminated, "citation key, expected ','")
		}
		if b == ',' && prev != '\\' {
			break
		}
		prev = b
	}
	return strings.TrimSpace(c.slice(start, c.mark()-1)), nil
}

// parseKey reads a field name and the '=' that follows it.
func parseKey(c *cursor) (string, error) {
	start := c.mark()
	for {
		b, ok := c.peek()
		if !ok || b == '=' || isSpace(b) {
			break
		}
		c.advance()
	}
	end := c.mark()

	c.skipWhitespace()
	if b, ok := c.next(); !ok || b != '=' {
		return "", parseErr(c, ErrUnterminated, fmt.Sprintf("field %q, expected '='", c.slice(start, end)))
	}
	return c.slice(start, end), nil
}

// parseValue reads either a brace-delimited or a bare value. A depth-0
// closing brace ends a braced value only when the next non-space byte is ','
// or '}'; otherwise it is part of the value. Input ending right after that
// brace is a premature end of the record. The comma after a value is
// consumed, the record's closing brace is not.
func parseValue(c *cursor) (string, error) {
	depth := 0
	braced := false
	if b, ok := c.peek(); ok && b == '{' {
		c.advance()
		depth = 1
		braced = true
	}

	start := c.mark()
	for {
		b, ok := c.next()
		if !ok {
			return "", parseErr(c, ErrUnterminated, fmt.Sprintf("value %q", c.slice(start, c.mark())))
		}
		switch b {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return "", parseErr(c, ErrUnmatchedBrace, fmt.Sprintf("value so far %q", c.slice(start, c.mark())))
			}
		}
		if depth != 0 {
			continue
		}

		if b == ',' {
			return valueText(c.slice(start, c.mark()-1), braced), nil
		}
		if b == '}' {
			end := c.mark() - 1
			resume := c.mark()
			c.skipWhitespace()
			next, ok := c.peek()
			switch {
			case !ok:
				return "", parseErr(c, ErrPrematureEnd, "")
			case next == ',':
				c.advance()
				return valueText(c.slice(start, end), braced), nil
			case next == '}':
				return valueText(c.slice(start, end), braced), nil
			}
			c.reset(resume)
		}
	}
}

func valueText(s string, braced bool) string {
	if braced {
		return s
	}
	return strings.TrimSpace(s)
}
