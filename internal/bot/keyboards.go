package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cbXLSX   = "export:xlsx"
	cbCancel = "nav:cancel"
)

func xlsxKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Excel", cbXLSX),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Fermer", cbCancel),
		),
	)
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton("/stock")},
			{tgbotapi.NewKeyboardButton("/import_ingredients"), tgbotapi.NewKeyboardButton("/import_recipes")},
			{tgbotapi.NewKeyboardButton("/help")},
		},
	}
}
