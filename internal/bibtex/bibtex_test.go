package bibtex

import (
	"errors"
	"testing"
)

const zhaiAuthor = "Zhai, Junhai and Zhang, Sufang and Chen, Junfen and He, Qiang"

func mustParse(t *testing.T, input string) *Record {
	t.Helper()
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func TestParse_EndSameLine(t *testing.T) {
	input := `@inproceedings{zhai2018autoencoder,
title={Autoencoder and its various variants},
author={Zhai, Junhai and Zhang, Sufang and Chen, Junfen and He, Qiang},
booktitle={2018 IEEE international conference on systems, man, and cybernetics (SMC)},
pages={415--419},
year={2018},
organization={IEEE} }`
	r := mustParse(t, input)
	if r.Kind != InProceedings {
		t.Errorf("kind = %v, want inproceedings", r.Kind)
	}
	if r.Key != "zhai2018autoencoder" {
		t.Errorf("key = %q", r.Key)
	}
	if r.Author != zhaiAuthor {
		t.Errorf("author = %q", r.Author)
	}
	if r.Year != "2018" {
		t.Errorf("year = %q, want 2018", r.Year)
	}
}

func TestParse_EndNewLine(t *testing.T) {
	input := `@inproceedings{zhai2018autoencoder,
title={Autoencoder and its various variants},
author={Zhai, Junhai and Zhang, Sufang and Chen, Junfen and He, Qiang},
pages={415--419},
year={2018},
organization={IEEE}
}`
	r := mustParse(t, input)
	if r.Title != "Autoencoder and its various variants" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Author != zhaiAuthor {
		t.Errorf("author = %q", r.Author)
	}
}

func TestParse_UnbracedValue(t *testing.T) {
	input := `@inproceedings{zhai2018autoencoder,
title=Autoencoder and its various variants,
author={Zhai, Junhai and Zhang, Sufang and Chen, Junfen and He, Qiang},
year={2018},
organization={IEEE} }`
	r := mustParse(t, input)
	if r.Title != "Autoencoder and its various variants" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestParse_BracesInsideUnbracedValue(t *testing.T) {
	input := `@inproceedings{zhai2018autoencoder,
title=Autoencoder and its {various} variants,
author={Zhai, Junhai and Zhang, Sufang and Chen, Junfen and He, Qiang},
year={2018},
organization={IEEE} }`
	r := mustParse(t, input)
	if r.Title != "Autoencoder and its {various} variants" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestParse_SpacesAroundDelimiters(t *testing.T) {
	input := `@inproceedings{zhai2018autoencoder,
title=Autoencoder and its {various} variants,
author = {Zhai, Junhai and Zhang, Sufang and Chen, Junfen and He, Qiang}   ,
year  =  {2018},
organization={IEEE} }`
	r := mustParse(t, input)
	if r.Author != zhaiAuthor {
		t.Errorf("author = %q", r.Author)
	}
	if r.Year != "2018" {
		t.Errorf("year = %q", r.Year)
	}
}

func TestParse_NestedBraces(t *testing.T) {
	r := mustParse(t, `@misc{k, title={a{b}c}, author={x}, year={2000}}`)
	if r.Title != "a{b}c" {
		t.Errorf("title = %q, want a{b}c", r.Title)
	}
}

func TestParse_LiteralClosingBraceInsideValue(t *testing.T) {
	r := mustParse(t, `@misc{k, title={left} right, author={x}, year={2000}}`)
	if r.Title != "left} right" {
		t.Errorf("title = %q, want %q", r.Title, "left} right")
	}
}

func TestParse_FieldOrderIndependent(t *testing.T) {
	r := mustParse(t, `@article{k2, year={1999}, author={Doe, J.}, title={On Things}}`)
	if r.Kind != Article || r.Year != "1999" || r.Author != "Doe, J." || r.Title != "On Things" {
		t.Errorf("record = %+v", r)
	}
}

func TestParse_TrailingComma(t *testing.T) {
	r := mustParse(t, "@book{k,\n  title={T},\n  author={A},\n  year={2001},\n}")
	if r.Year != "2001" {
		t.Errorf("year = %q", r.Year)
	}
}

func TestParse_NonASCIIPreserved(t *testing.T) {
	r := mustParse(t, `@article{müller2020, title={Über {Ä}hnlichkeit}, author={Müller, Jörg}, year={2020}}`)
	if r.Title != "Über {Ä}hnlichkeit" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Author != "Müller, Jörg" {
		t.Errorf("author = %q", r.Author)
	}
	if r.Key != "müller2020" {
		t.Errorf("key = %q", r.Key)
	}
}

func TestParse_AllKinds(t *testing.T) {
	for k, name := range kindNames {
		r, err := Parse("@" + name + "{key, title={T}, author={A}, year={2020}}")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if r.Kind != k {
			t.Errorf("%s: kind = %v", name, r.Kind)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"no at sign", `inproceedings{k, title={T}, author={A}, year={1}}`, ErrInvalidStart},
		{"unknown kind", `@journal{k, title={T}, author={A}, year={1}}`, ErrInvalidKind},
		{"kind is case sensitive", `@Article{k, title={T}, author={A}, year={1}}`, ErrInvalidKind},
		{"unterminated kind", `@article`, ErrUnterminated},
		{"unterminated key", `@article{k`, ErrUnterminated},
		{"missing equals", `@article{k, title {T}}`, ErrUnterminated},
		{"unmatched brace", `@article{k, title=T}}, author={A}, year={1}}`, ErrUnmatchedBrace},
		{"unterminated value", `@article{k, title={T`, ErrUnterminated},
		{"premature end", `@article{k, title={T}, author={A}, year={1},`, ErrPrematureEnd},
		{"premature end after braced value", `@article{k, title={T}, author={A}, year={1}`, ErrPrematureEnd},
		{"premature end after trailing space", "@article{k, title={T}, author={A}, year={1}  \n", ErrPrematureEnd},
		{"literal brace then end", `@article{k, title={a} b`, ErrUnterminated},
		{"field names are case sensitive", `@article{k, Title={T}, AUTHOR={A}, year={1}}`, ErrMissingField},
		{"missing title", `@article{k, author={A}, year={1}}`, ErrMissingField},
		{"missing author", `@article{k, title={T}, year={1}}`, ErrMissingField},
		{"missing year", `@article{k, title={T}, author={A}}`, ErrMissingField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Parse(tc.input)
			if err == nil {
				t.Fatalf("expected error, got record %+v", r)
			}
			if r != nil {
				t.Errorf("expected no partial record, got %+v", r)
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("err is %T, want *ParseError", err)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if InProceedings.String() != "inproceedings" {
		t.Errorf("String = %q", InProceedings.String())
	}
	if _, ok := ParseKind("phdthesis"); !ok {
		t.Error("phdthesis should be a valid kind")
	}
}
