package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/structtable/internal/books"
	"github.com/JonMunkholm/structtable/internal/config"
	"github.com/JonMunkholm/structtable/internal/logging"
	"github.com/JonMunkholm/structtable/internal/store"
	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/JonMunkholm/structtable/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, closeDB, err := bookLoader(ctx, cfg)
	if err != nil {
		slog.Error("failed to prepare book loader", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	src := table.NewSource[books.Book](nil)
	refresher := store.NewRefresher[books.Book](books.TableName, loader, src, cfg.Table.RefreshInterval)
	if err := refresher.RefreshOnce(ctx); err != nil {
		slog.Error("failed to load books", "error", err)
		os.Exit(1)
	}

	tbl := table.Mount(books.Schema(), src, table.Options{
		ID:            books.TableName,
		Selection:     cfg.Table.Selection(),
		SelectOnClick: cfg.Table.SelectOnClick,
		Actions:       web.Actions(books.TableName),
		Handlers: table.Handlers{
			OnRowClick: func(ev table.RowClickEvent) {
				slog.Info("row clicked",
					"table", ev.Table,
					"key", ev.Key,
					"index", ev.Index,
					"source", ev.Interaction.Source,
				)
			},
			OnSelectionChange: func(ev table.SelectionChangeEvent) {
				slog.Info("selection changed",
					"table", ev.Table,
					"selected", len(ev.Selected),
					"added", ev.Added,
					"removed", ev.Removed,
				)
			},
		},
	})
	defer tbl.Close()

	catalog, err := web.NewCatalog(web.View(tbl))
	if err != nil {
		slog.Error("failed to build table catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("tables mounted", "tables", catalog.Names(), "rows", src.Len())

	server := web.NewServer(cfg, catalog)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	if cfg.Table.RefreshInterval > 0 {
		g.Go(func() error {
			refresher.Run(gctx)
			return nil
		})
	}

	// Graceful shutdown on signal or when the server fails
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}

	loads, failures := refresher.Stats()
	slog.Info("server stopped", "refreshes", loads, "refresh_failures", failures)
}

// bookLoader picks where books come from: Postgres when configured, else
// the seed file, else the built-in seed data. The returned func releases
// any resources the loader holds.
func bookLoader(ctx context.Context, cfg *config.Config) (store.Loader[books.Book], func(), error) {
	if !cfg.Database.Enabled() {
		if cfg.Table.SeedFile != "" {
			slog.Info("serving books from file", "path", cfg.Table.SeedFile)
			return books.FileLoader{Path: cfg.Table.SeedFile}, func() {}, nil
		}
		slog.Info("serving built-in books")
		return books.SeedLoader{}, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	repo := store.NewBookRepository(pool)
	if cfg.Database.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	if cfg.Database.SeedIfEmpty {
		var seed store.Loader[books.Book] = books.SeedLoader{}
		if cfg.Table.SeedFile != "" {
			seed = books.FileLoader{Path: cfg.Table.SeedFile}
		}
		bs, err := seed.Load(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		n, err := repo.SeedIfEmpty(ctx, bs)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if n > 0 {
			slog.Info("seeded books table", "rows", n)
		}
	}

	return repo, pool.Close, nil
}
