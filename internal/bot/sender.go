package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Sender abstracts the Telegram methods used by the bot.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
