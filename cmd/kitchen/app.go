package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PoFerry/atelierculinairepof/internal/config"
	"github.com/PoFerry/atelierculinairepof/internal/dialog"
	"github.com/PoFerry/atelierculinairepof/internal/domain/ingredients"
	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/domain/suppliers"
	"github.com/PoFerry/atelierculinairepof/internal/imports"
	"github.com/PoFerry/atelierculinairepof/internal/infra/db"
	"github.com/PoFerry/atelierculinairepof/internal/infra/sheets"
	"github.com/PoFerry/atelierculinairepof/internal/kitchen"
)

// app holds what every subcommand needs once the database is reachable.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	pool     *pgxpool.Pool
	kitchen  *kitchen.Service
	importer *imports.Importer
	states   *dialog.Repo
}

func openApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	log.Info("db connected")

	supRepo := suppliers.NewRepo(pool)
	ingRepo := ingredients.NewRepo(pool)
	recRepo := recipes.NewRepo(pool)

	svc := kitchen.New(log, kitchen.Stores{
		Suppliers:   supRepo,
		Ingredients: ingRepo,
		Recipes:     recRepo,
		Menus:       menus.NewRepo(pool),
		Stock:       inventory.NewRepo(pool),
		Production:  production.NewRepo(pool),
	}).InLocation(cfg.Location())

	hook, err := sheets.New(cfg.Sync.Mode, cfg.Sync.Path, svc, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		pool:     pool,
		kitchen:  svc,
		importer: imports.New(log, supRepo, ingRepo, recRepo, hook),
		states:   dialog.NewRepo(pool),
	}, nil
}

func (a *app) Close() { a.pool.Close() }

// withApp loads config, connects and runs fn; used by the one-shot commands.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
