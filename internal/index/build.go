package index

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/starford/envy/internal/parser"
	"github.com/starford/envy/internal/storage"
)

// Build walks the vault and loads every .md file into a fresh index. Loads
// run in parallel on up to workers goroutines (GOMAXPROCS when workers <= 0);
// insertion is serialized through the index lock. A file that fails to load
// is logged and skipped.
func Build(ctx context.Context, store storage.Provider, logger *slog.Logger, workers int) (*Index, error) {
	files, err := store.List("")
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ix := New(store.Root())
	loader := NewLoader(store)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			n, err := loader.Load(f.Path)
			if err != nil {
				logger.Warn("build: load failed",
					slog.String("path", f.RelPath),
					slog.Bool("metadata", parser.IsMetadataError(err)),
					slog.String("error", err.Error()))
				return nil
			}
			ix.Upsert(n)
			logger.Debug("build: indexed", slog.String("path", f.RelPath), slog.String("group", n.Group))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("build: index ready",
		slog.String("root", store.Root()),
		slog.Int("files", len(files)),
		slog.Int("notes", ix.Len()))
	return ix, nil
}
