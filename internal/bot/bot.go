// Package bot is the Telegram front-end: cost and needs reports, stock
// entries, lot follow-up and table imports, with xlsx exports sent as
// documents.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoFerry/atelierculinairepof/internal/costing"
	"github.com/PoFerry/atelierculinairepof/internal/dialog"
	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/domain/menus"
	"github.com/PoFerry/atelierculinairepof/internal/domain/production"
	"github.com/PoFerry/atelierculinairepof/internal/domain/recipes"
	"github.com/PoFerry/atelierculinairepof/internal/imports"
	"github.com/PoFerry/atelierculinairepof/internal/kitchen"
)

type Kitchen interface {
	RecipeCost(ctx context.Context, name string) (*recipes.Recipe, costing.Cost, error)
	MenuCost(ctx context.Context, name string) (*menus.Menu, costing.MenuCost, error)
	ShoppingList(ctx context.Context, menu string) ([]costing.Shortage, error)
	StockReport(ctx context.Context) ([]kitchen.StockLine, error)
	RecordMovement(ctx context.Context, in kitchen.MovementInput) (*inventory.Movement, error)
	CountStock(ctx context.Context, ingredient string, counted float64, unit, note string) (*inventory.Movement, error)
	ProduceBatch(ctx context.Context, in kitchen.ProduceInput) (*production.Batch, error)
	RecordPH(ctx context.Context, lot string, day int, value float64, notes string) (*production.Test, production.Status, error)
	LotsDueForCheck(ctx context.Context, now time.Time) ([]production.Batch, error)
	ConsumeFinished(ctx context.Context, lot string, qty float64, reason production.Reason) (*production.FinishedMove, error)
	Lot(ctx context.Context, lot string) (*kitchen.LotReport, error)

	RecipeCostWorkbook(ctx context.Context, recipe string) ([]byte, error)
	NeedsWorkbook(ctx context.Context, menu string) ([]byte, error)
	StockWorkbook(ctx context.Context) ([]byte, error)
}

type Importer interface {
	Ingredients(ctx context.Context, table [][]string) (imports.Result, error)
	Recipes(ctx context.Context, table [][]string) (imports.Result, error)
}

type States interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type Bot struct {
	api      *tgbotapi.BotAPI
	log      *slog.Logger
	kitchen  Kitchen
	importer Importer
	states   States
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, k Kitchen, im Importer, states States) *Bot {
	return &Bot{api: api, log: log, kitchen: k, importer: im, states: states}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd.CallbackQuery)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}
	b.reply(msg.Chat.ID, "Commande inconnue. Tapez /help")
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendDocument(chatID int64, name, caption string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	b.send(doc)
}

// downloadTelegramFile fetches an uploaded file by its FileID.
func (b *Bot) downloadTelegramFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
