package bot

import (
	"fmt"

	"rewiki-bot/internal/locale"
	"rewiki-bot/internal/model"
	"rewiki-bot/internal/pager"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes.
const (
	pagePrefix    = "pg:"
	articlePrefix = "art:"
	savePrefix    = "sv:"
	removePrefix  = "rm:"
	langPrefix    = "lang:"
	noopData      = "noop"
)

// pageKeyboard renders one button per article and, for multi-page sets,
// a back / position / forward control row.
func pageKeyboard(lang model.Lang, names []string, tok pager.Token, pages int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(names)+1)
	for _, name := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, articlePrefix+name),
		))
	}

	if pages > 1 {
		var controls []tgbotapi.InlineKeyboardButton
		if tok.Page > 0 {
			prev := tok
			prev.Page--
			controls = append(controls,
				tgbotapi.NewInlineKeyboardButtonData(locale.T(lang, locale.ButtonBack), prev.Encode()))
		}
		controls = append(controls,
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", tok.Page+1, pages), noopData))
		if tok.Page < pages-1 {
			next := tok
			next.Page++
			controls = append(controls,
				tgbotapi.NewInlineKeyboardButtonData(locale.T(lang, locale.ButtonForward), next.Encode()))
		}
		rows = append(rows, controls)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// articleKeyboard offers to save the article, or to remove it when already saved.
func articleKeyboard(lang model.Lang, name string, saved bool) tgbotapi.InlineKeyboardMarkup {
	button := tgbotapi.NewInlineKeyboardButtonData(locale.T(lang, locale.ButtonSave), savePrefix+name)
	if saved {
		button = tgbotapi.NewInlineKeyboardButtonData(locale.T(lang, locale.ButtonRemove), removePrefix+name)
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(button))
}

func langKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", langPrefix+string(model.LangEN)),
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", langPrefix+string(model.LangRU)),
		),
	)
}
