// Package parser splits a note into its optional YAML header and Markdown body
// and decodes the header into note metadata.
package parser

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/envy/internal/apperr"
	"github.com/starford/envy/internal/bibtex"
	"github.com/starford/envy/internal/models"
)

const delim = "---"

// Result holds the output of parsing a note.
type Result struct {
	Meta *models.Metadata
	Body string
}

// header is the on-disk shape of a note header.
type header struct {
	Tags   []string `yaml:"tags"`
	BibTeX *string  `yaml:"bibtex"`
	PDF    *string  `yaml:"pdf"`
}

// Parse extracts the header and body from raw note bytes. A note without a
// header yields nil metadata and the whole text as body. A header that is
// present but malformed fails with an error wrapping apperr.ErrMetadata.
func Parse(data []byte) (*Result, error) {
	block, body, ok, err := splitHeader(data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Result{Body: string(data)}, nil
	}

	meta, err := decodeHeader(block)
	if err != nil {
		return nil, err
	}
	return &Result{Meta: meta, Body: string(body)}, nil
}

// splitHeader finds a header that opens with a line exactly "---" at the very
// start of data and closes at the next line exactly "---".
func splitHeader(data []byte) (block, body []byte, ok bool, err error) {
	line, rest, more := nextLine(data)
	if !bytes.Equal(line, []byte(delim)) {
		return nil, data, false, nil
	}
	if !more {
		return nil, nil, false, fmt.Errorf("%w: unterminated header", apperr.ErrMetadata)
	}

	start := len(data) - len(rest)
	offset := start
	for len(rest) > 0 {
		line, next, _ := nextLine(rest)
		if bytes.Equal(line, []byte(delim)) {
			return data[start:offset], next, true, nil
		}
		offset += len(rest) - len(next)
		rest = next
	}
	return nil, nil, false, fmt.Errorf("%w: unterminated header", apperr.ErrMetadata)
}

// nextLine returns the first line of data without its terminator, the
// remainder after the terminator, and whether a terminator was found.
func nextLine(data []byte) (line, rest []byte, terminated bool) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return bytes.TrimSuffix(data, []byte("\r")), nil, false
	}
	return bytes.TrimSuffix(data[:i], []byte("\r")), data[i+1:], true
}

func decodeHeader(block []byte) (*models.Metadata, error) {
	var h header
	if err := yaml.Unmarshal(block, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrMetadata, err)
	}
	if h.BibTeX == nil {
		return nil, fmt.Errorf("%w: missing field %q", apperr.ErrMetadata, "bibtex")
	}
	if h.PDF == nil {
		return nil, fmt.Errorf("%w: missing field %q", apperr.ErrMetadata, "pdf")
	}

	rec, err := bibtex.Parse(*h.BibTeX)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrMetadata, err)
	}

	return &models.Metadata{
		Tags:   h.Tags,
		BibTeX: *h.BibTeX,
		Record: rec,
		PDF:    *h.PDF,
	}, nil
}

// IsMetadataError reports whether err came from a malformed header.
func IsMetadataError(err error) bool {
	return errors.Is(err, apperr.ErrMetadata)
}
