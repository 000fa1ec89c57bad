// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/envy/internal/api"
	"github.com/starford/envy/internal/index"
	"github.com/starford/envy/internal/mcpserver"
	"github.com/starford/envy/internal/models"
	"github.com/starford/envy/internal/noteservice"
	"github.com/starford/envy/internal/sse"
	"github.com/starford/envy/internal/storage"
)

// Version is reported by the MCP server.
var Version = "dev"

// vault is everything built from the config before a command runs.
type vault struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	ix     *index.Index
	svc    *noteservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// open initializes logging and storage and builds the index.
func (a *application) open(ctx context.Context) (*vault, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("papers_dir", cfg.Vault.PapersDir),
		slog.String("daily_dir", cfg.Vault.DailyDir),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	ix, err := index.Build(ctx, store, logger, cfg.Index.LoadWorkers)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	svc := noteservice.NewService(ix, store, noteservice.Options{
		Kinds: models.GroupKinds{
			Papers: cfg.Vault.PapersDir,
			Daily:  cfg.Vault.DailyDir,
		},
		Descending: cfg.Search.Descending(),
	})
	return &vault{cfg: cfg, logger: logger, store: store, ix: ix, svc: svc}, nil
}

// watch runs the change synchronizer until ctx is done. It returns at once
// when watching is disabled.
func (v *vault) watch(ctx context.Context, cb index.EventCallback) error {
	if !v.cfg.Watch.Enabled {
		v.logger.Info("watcher: disabled")
		return nil
	}
	syn := index.NewSynchronizer(v.ix, index.NewLoader(v.store), v.logger, cb)
	return index.Watch(ctx, syn, v.logger, index.WatchOptions{
		RenameWindow: v.cfg.Watch.RenameWindow,
		QueueSize:    v.cfg.Watch.QueueSize,
	})
}

// newHTTPHandler assembles the root router: health probes, the API under
// /api and the SSE stream at /api/events.
func newHTTPHandler(v *vault, broker *sse.Broker) http.Handler {
	apiRouter := api.NewRouter(v.svc, v.cfg.Auth.BearerToken(), broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","notes":%d}`, v.ix.Len())
	})

	r.Mount("/api", apiRouter)
	return r
}

// Run starts the HTTP server and the watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	v, err := app.open(ctx)
	if err != nil {
		return err
	}
	cfg, logger := v.cfg, v.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(v, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return v.watch(gCtx, broker.NoteChanged)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stops the watcher when the shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over in/out. The index is kept live by the
// watcher while the session lasts.
func RunMCP(ctx context.Context, in io.Reader, out io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	v, err := app.open(ctx)
	if err != nil {
		return err
	}

	srv := mcpserver.New(v.svc, Version)

	g, gCtx := errgroup.WithContext(ctx)
	sessionCtx, endSession := context.WithCancel(gCtx)
	g.Go(func() error {
		return v.watch(sessionCtx, nil)
	})
	g.Go(func() error {
		defer endSession()
		err := srv.Serve(sessionCtx, in, out)
		if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// Cite writes the raw citation of every paper note to w, ordered by path,
// each followed by a blank line.
func Cite(ctx context.Context, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	v, err := app.open(ctx)
	if err != nil {
		return err
	}
	for _, c := range v.svc.Citations(ctx) {
		if _, err := fmt.Fprintf(w, "%s\n\n", c); err != nil {
			return err
		}
	}
	return nil
}

// NewPaper creates a paper note from one citation record and writes the new
// note's path to w.
func NewPaper(ctx context.Context, raw string, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	v, err := app.open(ctx)
	if err != nil {
		return err
	}
	rel, err := v.svc.CreatePaperNote(ctx, raw)
	if err != nil {
		return fmt.Errorf("new paper: %w", err)
	}
	abs, err := v.store.Abs(rel)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, abs)
	return err
}
