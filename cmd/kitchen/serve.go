package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/PoFerry/atelierculinairepof/internal/bot"
	httpx "github.com/PoFerry/atelierculinairepof/internal/infra/http"
)

func runMigrations(dsn, dir string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, dir)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := runMigrations(cfg.Postgres.DSN, migrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations, then run the HTTP endpoints and the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := runMigrations(cfg.Postgres.DSN, migrationsDir); err != nil {
				log.Error("migrations failed", "err", err)
				return err
			}
			log.Info("migrations applied")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			g, gctx := errgroup.WithContext(ctx)

			srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, a.pool)
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

			if cfg.Telegram.Enabled {
				api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
				if err != nil {
					stop()
					_ = g.Wait()
					return fmt.Errorf("telegram: %w", err)
				}
				log.Info("telegram bot authorized", "username", api.Self.UserName)
				b := bot.New(api, log, a.kitchen, a.importer, a.states)
				g.Go(func() error {
					if err := b.Run(gctx, cfg.Telegram.Timeout); !errors.Is(err, context.Canceled) {
						return err
					}
					return nil
				})
			} else {
				log.Info("telegram bot disabled")
			}

			err = g.Wait()
			log.Info("graceful shutdown complete")
			return err
		},
	}
}
