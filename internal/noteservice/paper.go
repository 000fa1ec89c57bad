package noteservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/envy/internal/apperr"
	"github.com/starford/envy/internal/bibtex"
)

type paperHeader struct {
	BibTeX string   `yaml:"bibtex"`
	PDF    string   `yaml:"pdf"`
	Tags   []string `yaml:"tags,flow"`
}

// PaperNote renders a new paper note for rec. raw is stored verbatim as the
// header citation.
func PaperNote(rec *bibtex.Record, raw string) ([]byte, error) {
	hdr, err := yaml.Marshal(paperHeader{
		BibTeX: strings.TrimSpace(raw),
		PDF:    "./doc/" + rec.Key + ".pdf",
		Tags:   []string{"unread"},
	})
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(hdr)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "# %s\n", rec.Title)
	return b.Bytes(), nil
}

// CreatePaperNote parses one citation and writes it as a new note in the
// papers group. It returns the vault-relative path of the note, which is
// also set when the error is apperr.ErrAlreadyExists.
func (s *Service) CreatePaperNote(_ context.Context, raw string) (string, error) {
	rec, err := bibtex.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrMetadata, err)
	}
	if rec.Key == "" || strings.ContainsAny(rec.Key, `/\`) || strings.HasPrefix(rec.Key, ".") {
		return "", fmt.Errorf("%w: unusable citation key %q", apperr.ErrMetadata, rec.Key)
	}

	rel := path.Join(s.opts.Kinds.Papers, rec.Key+".md")
	if _, err := s.store.Stat(rel); err == nil {
		return rel, fmt.Errorf("%w: %s", apperr.ErrAlreadyExists, rel)
	} else if !isNotExist(err) {
		return "", err
	}

	content, err := PaperNote(rec, raw)
	if err != nil {
		return "", err
	}
	if err := s.store.Create(rel, content); err != nil {
		if errors.Is(err, os.ErrExist) {
			return rel, fmt.Errorf("%w: %s", apperr.ErrAlreadyExists, rel)
		}
		return "", err
	}
	if _, err := s.Refresh(rel); err != nil {
		return "", err
	}
	return rel, nil
}
