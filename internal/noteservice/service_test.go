package noteservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/envy/internal/apperr"
	"github.com/starford/envy/internal/bibtex"
	"github.com/starford/envy/internal/index"
	"github.com/starford/envy/internal/models"
	"github.com/starford/envy/internal/parser"
	"github.com/starford/envy/internal/storage"
	"github.com/starford/envy/internal/testutil"
)

var (
	ctx   = context.Background()
	t0    = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	kinds = models.GroupKinds{Papers: "papers", Daily: "daily"}
)

func setup(t *testing.T, opts Options) (string, *storage.FS, *Service) {
	t.Helper()
	root, store := testutil.TestVault(t)
	testutil.WriteNote(t, root, "papers/zhai2018.md", testutil.PaperNote("zhai2018", "Autoencoder variants", "Zhai, Junhai", "2018"), t0)
	testutil.WriteNote(t, root, "papers/lee2020.md", testutil.PaperNote("lee2020", "Graph things", "Lee, Ann", "2020"), t0)
	testutil.WriteNote(t, root, "papers/doc/zhai2018.pdf", "%PDF-1.4", t0)
	testutil.WriteNote(t, root, "daily/2024-03-01.md", "# Friday\n\nread *zhai*\n", t0)
	testutil.WriteNote(t, root, "zhai-inbox.md", "loose note\n", t0)

	ix, err := index.Build(ctx, store, slog.New(slog.NewJSONHandler(io.Discard, nil)), 2)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Kinds == (models.GroupKinds{}) {
		opts.Kinds = kinds
	}
	return root, store, NewService(ix, store, opts)
}

func TestGroups_OrderedWithKinds(t *testing.T) {
	_, _, svc := setup(t, Options{})

	groups := svc.Groups(ctx)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	want := []struct {
		name string
		kind models.GroupKind
	}{
		{models.RootGroup, models.KindRoot},
		{"daily", models.KindDaily},
		{"papers", models.KindPapers},
	}
	for i, w := range want {
		if groups[i].Name != w.name || groups[i].Kind != w.kind {
			t.Errorf("group %d = %s/%v, want %s/%v", i, groups[i].Name, groups[i].Kind, w.name, w.kind)
		}
	}
	papers := groups[2].Entries
	if len(papers) != 2 || papers[0].Key != "lee2020" || papers[1].Key != "zhai2018" {
		t.Errorf("papers entries = %+v", papers)
	}
}

func TestList_FilterByGroup(t *testing.T) {
	_, _, svc := setup(t, Options{})

	if got := len(svc.List(ctx, "")); got != 4 {
		t.Errorf("all = %d, want 4", got)
	}
	daily := svc.List(ctx, "daily")
	if len(daily) != 1 || daily[0].RelPath != "daily/2024-03-01.md" {
		t.Errorf("daily = %+v", daily)
	}
	if got := svc.List(ctx, "nope"); got == nil || len(got) != 0 {
		t.Errorf("unknown group = %#v, want empty slice", got)
	}
}

func TestSearch_Orders(t *testing.T) {
	_, _, svc := setup(t, Options{})

	res := svc.Search(ctx, "zhai")
	if res.EmptyQuery || len(res.Results) != 2 {
		t.Fatalf("result = %+v", res)
	}
	// zhai-inbox.md matches by path only; the paper also matches key and author.
	if res.Results[0].Score > res.Results[1].Score {
		t.Errorf("ascending order violated: %+v", res.Results)
	}

	_, _, desc := setup(t, Options{Descending: true})
	res = desc.Search(ctx, "zhai")
	if res.Results[0].Entry.Key != "zhai2018" {
		t.Errorf("descending should list the paper first: %+v", res.Results)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, _, svc := setup(t, Options{})
	res := svc.Search(ctx, "")
	if !res.EmptyQuery || res.Results != nil {
		t.Errorf("result = %+v", res)
	}

	res = svc.Search(ctx, "no-such-thing")
	if res.EmptyQuery || res.Results == nil || len(res.Results) != 0 {
		t.Errorf("miss result = %#v", res)
	}
}

func TestNote_Detail(t *testing.T) {
	_, _, svc := setup(t, Options{})

	d, err := svc.Note(ctx, "papers/zhai2018.md")
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if d.Kind != models.KindPapers || d.Key != "zhai2018" || d.Year != "2018" {
		t.Errorf("detail = %+v", d)
	}
	if !strings.Contains(d.HTML, "<h1>Autoencoder variants</h1>") {
		t.Errorf("html = %q", d.HTML)
	}
	if d.Checksum == "" || !d.UpdatedAt.Equal(t0) {
		t.Errorf("checksum=%q updated=%v", d.Checksum, d.UpdatedAt)
	}
	if !strings.HasPrefix(d.BibTeX, "@article{zhai2018") {
		t.Errorf("bibtex = %q", d.BibTeX)
	}

	d, err = svc.Note(ctx, "daily/2024-03-01.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(d.HTML, "<em>zhai</em>") {
		t.Errorf("html = %q", d.HTML)
	}
}

func TestNote_NotFound(t *testing.T) {
	_, _, svc := setup(t, Options{})
	for _, rel := range []string{"missing.md", "../outside.md"} {
		if _, err := svc.Note(ctx, rel); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", rel, err)
		}
	}
}

func TestAttachment(t *testing.T) {
	root, _, svc := setup(t, Options{})

	abs, err := svc.Attachment(ctx, "papers/zhai2018.md")
	if err != nil {
		t.Fatalf("Attachment: %v", err)
	}
	if abs != filepath.Join(root, "papers", "doc", "zhai2018.pdf") {
		t.Errorf("abs = %q", abs)
	}

	// lee2020.pdf was never written.
	if _, err := svc.Attachment(ctx, "papers/lee2020.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing pdf: err = %v", err)
	}
	if _, err := svc.Attachment(ctx, "zhai-inbox.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("no header: err = %v", err)
	}
}

func TestAttachment_TraversalRejected(t *testing.T) {
	root, _, svc := setup(t, Options{})
	testutil.WriteNote(t, root, "evil.md", "---\nbibtex: \"@misc{e, title={t}, author={a}, year={1}}\"\npdf: ../../etc/passwd\n---\n", t0)
	if _, err := svc.Refresh("evil.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Attachment(ctx, "evil.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCitations(t *testing.T) {
	_, _, svc := setup(t, Options{})

	got := svc.Citations(ctx)
	if len(got) != 2 {
		t.Fatalf("citations = %d, want 2", len(got))
	}
	if !strings.Contains(got[0], "lee2020") || !strings.Contains(got[1], "zhai2018") {
		t.Errorf("citations not ordered by path: %v", got)
	}

	c, err := svc.Citation(ctx, "papers/lee2020.md")
	if err != nil || !strings.Contains(c, "Graph things") {
		t.Errorf("citation = %q, %v", c, err)
	}
	if _, err := svc.Citation(ctx, "zhai-inbox.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCreatePaperNote(t *testing.T) {
	_, store, svc := setup(t, Options{})

	raw := "@inproceedings{kim2022,\n  title={Sparse {Attention}},\n  author={Kim, Bo},\n  year={2022}\n}\n"
	rel, err := svc.CreatePaperNote(ctx, raw)
	if err != nil {
		t.Fatalf("CreatePaperNote: %v", err)
	}
	if rel != "papers/kim2022.md" {
		t.Errorf("rel = %q", rel)
	}

	data, err := store.Read(rel)
	if err != nil {
		t.Fatal(err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("written note does not parse: %v\n%s", err, data)
	}
	if res.Meta.PDF != "./doc/kim2022.pdf" {
		t.Errorf("pdf = %q", res.Meta.PDF)
	}
	if len(res.Meta.Tags) != 1 || res.Meta.Tags[0] != "unread" {
		t.Errorf("tags = %v", res.Meta.Tags)
	}
	if res.Meta.Record.Kind != bibtex.InProceedings || res.Meta.Record.Title != "Sparse {Attention}" {
		t.Errorf("record = %+v", res.Meta.Record)
	}
	if !strings.Contains(res.Body, "# Sparse {Attention}") {
		t.Errorf("body = %q", res.Body)
	}

	// Indexed without waiting for the watcher.
	if got := svc.Search(ctx, "kim2022"); len(got.Results) != 1 {
		t.Errorf("new note not searchable: %+v", got)
	}

	if _, err := svc.CreatePaperNote(ctx, raw); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second create: err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreatePaperNote_BadCitation(t *testing.T) {
	_, _, svc := setup(t, Options{})

	_, err := svc.CreatePaperNote(ctx, "@journal{x, title={t}, author={a}, year={1}}")
	if !errors.Is(err, apperr.ErrMetadata) || !errors.Is(err, bibtex.ErrInvalidKind) {
		t.Errorf("err = %v", err)
	}
	_, err = svc.CreatePaperNote(ctx, "@misc{../x, title={t}, author={a}, year={1}}")
	if !errors.Is(err, apperr.ErrMetadata) {
		t.Errorf("traversal key: err = %v", err)
	}
}
