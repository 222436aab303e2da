package bot

import (
	"bytes"
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoFerry/atelierculinairepof/internal/dialog"
	"github.com/PoFerry/atelierculinairepof/internal/imports"
)

const maxUpload = 10 << 20

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.replyErr(chatID, err)
		return
	}
	if !st.State.AwaitsFile() {
		b.reply(chatID, "Lancez /import_ingredients ou /import_recipes avant d'envoyer un fichier.")
		return
	}
	if msg.Document.FileSize > maxUpload {
		b.reply(chatID, "Fichier trop volumineux (10 Mo maximum).")
		return
	}

	data, err := b.downloadTelegramFile(ctx, msg.Document.FileID)
	if err != nil {
		b.log.Error("download failed", "chat_id", chatID, "err", err)
		b.reply(chatID, "Impossible de télécharger le fichier.")
		return
	}
	table, err := imports.ReadTable(msg.Document.FileName, bytes.NewReader(data))
	if err != nil {
		b.reply(chatID, "Fichier illisible : "+err.Error())
		return
	}

	var res imports.Result
	if st.State == dialog.StateImportIngredients {
		res, err = b.importer.Ingredients(ctx, table)
	} else {
		res, err = b.importer.Recipes(ctx, table)
	}
	switch {
	case errors.Is(err, imports.ErrEmptyTable), errors.Is(err, imports.ErrMissingColumns):
		b.reply(chatID, "Import impossible : "+err.Error())
		return
	case err != nil:
		b.replyErr(chatID, err)
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.reply(chatID, formatImport(res))
}
