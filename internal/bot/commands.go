package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoFerry/atelierculinairepof/internal/dialog"
	"github.com/PoFerry/atelierculinairepof/internal/domain/inventory"
	"github.com/PoFerry/atelierculinairepof/internal/kitchen"
)

const helpText = `Commandes :
/cost <recette> : coût de revient
/menu <menu> : coût d'un menu
/needs <menu> : besoins et liste d'achat
/stock : état des stocks
/receive <qté> [unité] <ingrédient> : entrée en stock
/use <qté> [unité] <ingrédient> : sortie de stock
/count <qté> [unité] <ingrédient> : inventaire physique
/produce <lots> <recette> : enregistrer une production
/ph <lot> <jour> <valeur> : relevé de pH (jour 0 ou 14)
/due : lots à contrôler (J14)
/lot <lot> : fiche d'un lot
/sell <qté> <lot> [vente|rebut|don|ajustement] : sortie de produits finis
/import_ingredients, /import_recipes : puis envoyer un fichier CSV ou XLSX
/cancel : annuler`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		m := tgbotapi.NewMessage(chatID, helpText)
		m.ReplyMarkup = mainKeyboard()
		b.send(m)

	case "cancel":
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "Annulé.")

	case "cost":
		if args == "" {
			b.reply(chatID, "Usage : /cost <recette>")
			return
		}
		rec, c, err := b.kitchen.RecipeCost(ctx, args)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.show(ctx, chatID, dialog.StateViewCost, rec.Name, formatRecipeCost(*rec, c))

	case "menu":
		if args == "" {
			b.reply(chatID, "Usage : /menu <menu>")
			return
		}
		m, mc, err := b.kitchen.MenuCost(ctx, args)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.reply(chatID, formatMenuCost(*m, mc))

	case "needs":
		if args == "" {
			b.reply(chatID, "Usage : /needs <menu>")
			return
		}
		list, err := b.kitchen.ShoppingList(ctx, args)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.show(ctx, chatID, dialog.StateViewNeeds, args, formatShopping(args, list))

	case "stock":
		lines, err := b.kitchen.StockReport(ctx)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.show(ctx, chatID, dialog.StateViewStock, "", formatStock(lines))

	case "receive":
		b.movement(ctx, chatID, args, inventory.MoveIn)
	case "use":
		b.movement(ctx, chatID, args, inventory.MoveOut)

	case "count":
		qty, unit, name, err := parseQtyArgs(args)
		if err != nil {
			b.reply(chatID, "Usage : /count <qté> [unité] <ingrédient>")
			return
		}
		m, err := b.kitchen.CountStock(ctx, name, qty, unit, "inventaire (telegram)")
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		if m == nil {
			b.reply(chatID, "Stock déjà à jour, aucun ajustement.")
			return
		}
		b.reply(chatID, fmt.Sprintf("Ajustement enregistré : %s", formatQty(m.Qty, m.Unit)))

	case "produce":
		qty, unit, name, err := parseQtyArgs(args)
		if err != nil || unit != "" {
			b.reply(chatID, "Usage : /produce <lots> <recette>")
			return
		}
		batch, err := b.kitchen.ProduceBatch(ctx, kitchen.ProduceInput{Recipe: name, Batches: qty})
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.reply(chatID, fmt.Sprintf("Lot %s : %s × %s, %s %s, %d ingrédient(s) sorti(s) du stock.",
			batch.LotCode, batch.Recipe, formatNumber(batch.Batches), formatNumber(batch.Quantity), batch.Unit, len(batch.Inputs)))

	case "ph":
		lot, day, value, err := parsePHArgs(args)
		if err != nil {
			b.reply(chatID, "Usage : /ph <lot> <jour> <valeur>")
			return
		}
		t, status, err := b.kitchen.RecordPH(ctx, lot, day, value, "telegram")
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.reply(chatID, fmt.Sprintf("pH J%d = %s : %s. Statut du lot : %s.", t.Day, formatNumber(t.Value), t.Result, status))

	case "due":
		list, err := b.kitchen.LotsDueForCheck(ctx, time.Now())
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.reply(chatID, formatDue(list))

	case "lot":
		if args == "" {
			b.reply(chatID, "Usage : /lot <lot>")
			return
		}
		rep, err := b.kitchen.Lot(ctx, args)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.reply(chatID, formatLot(*rep))

	case "sell":
		qty, lot, reason, err := parseSellArgs(args)
		if err != nil {
			b.reply(chatID, "Usage : /sell <qté> <lot> [vente|rebut|don|ajustement]")
			return
		}
		m, err := b.kitchen.ConsumeFinished(ctx, lot, qty, reason)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.reply(chatID, fmt.Sprintf("Sortie %s enregistrée : %s %s", m.Reason, formatNumber(-m.Delta), m.Unit))

	case "import_ingredients":
		_ = b.states.Set(ctx, chatID, dialog.StateImportIngredients, nil)
		b.reply(chatID, "Envoyez le fichier des ingrédients (CSV ou XLSX).")
	case "import_recipes":
		_ = b.states.Set(ctx, chatID, dialog.StateImportRecipes, nil)
		b.reply(chatID, "Envoyez le fichier des recettes (CSV ou XLSX). Les ingrédients doivent déjà exister.")

	default:
		b.reply(chatID, "Commande inconnue. Tapez /help")
	}
}

func (b *Bot) movement(ctx context.Context, chatID int64, args string, t inventory.MoveType) {
	qty, unit, name, err := parseQtyArgs(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Usage : /%s <qté> [unité] <ingrédient>", map[inventory.MoveType]string{
			inventory.MoveIn: "receive", inventory.MoveOut: "use",
		}[t]))
		return
	}
	m, err := b.kitchen.RecordMovement(ctx, kitchen.MovementInput{
		Ingredient: name, Qty: qty, Unit: unit, Type: t, Note: "telegram",
	})
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("Mouvement %s enregistré : %s", m.Type, formatQty(m.Qty, m.Unit)))
}

// show sends a report with an xlsx button and remembers its subject.
func (b *Bot) show(ctx context.Context, chatID int64, state dialog.State, subject, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = xlsxKeyboard()
	b.send(m)
	_ = b.states.Set(ctx, chatID, state, dialog.Payload{"subject": subject})
}

func (b *Bot) replyErr(chatID int64, err error) {
	switch {
	case errors.Is(err, kitchen.ErrNotFound):
		b.reply(chatID, "Introuvable : "+err.Error())
	case errors.Is(err, kitchen.ErrInvalidInput):
		b.reply(chatID, "Saisie invalide : "+err.Error())
	default:
		b.log.Error("command failed", "chat_id", chatID, "err", err)
		b.reply(chatID, "Erreur interne, réessayez plus tard.")
	}
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	_, _ = b.api.Request(tgbotapi.NewCallback(cb.ID, ""))

	switch cb.Data {
	case cbCancel:
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
		}))

	case cbXLSX:
		st, err := b.states.Get(ctx, chatID)
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		subject, _ := dialog.GetString(st.Payload, "subject")

		var data []byte
		var name string
		switch st.State {
		case dialog.StateViewCost:
			data, err = b.kitchen.RecipeCostWorkbook(ctx, subject)
			name = "cout_" + fileSafe(subject) + ".xlsx"
		case dialog.StateViewNeeds:
			data, err = b.kitchen.NeedsWorkbook(ctx, subject)
			name = "besoins_" + fileSafe(subject) + ".xlsx"
		case dialog.StateViewStock:
			data, err = b.kitchen.StockWorkbook(ctx)
			name = "stock.xlsx"
		default:
			b.reply(chatID, "Rien à exporter : relancez la commande.")
			return
		}
		if err != nil {
			b.replyErr(chatID, err)
			return
		}
		b.sendDocument(chatID, name, subject, data)
	}
}
