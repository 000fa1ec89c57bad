package bibtex

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStart   = errors.New("entry must start with '@'")
	ErrInvalidKind    = errors.New("invalid entry kind")
	ErrUnterminated   = errors.New("unterminated token")
	ErrUnmatchedBrace = errors.New("unmatched closing brace")
	ErrMissingField   = errors.New("missing required field")
	ErrPrematureEnd   = errors.New("premature end of entry")
)

// ParseError reports why and where a citation record could not be parsed.
type ParseError struct {
	Reason error
	Offset int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("bibtex: %v at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("bibtex: %v at offset %d: %s", e.Reason, e.Offset, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Reason }

func parseErr(c *cursor, reason error, detail string) error {
	return &ParseError{Reason: reason, Offset: c.pos, Detail: detail}
}
