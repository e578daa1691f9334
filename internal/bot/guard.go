package bot

import (
	"context"
	"errors"

	"rewiki-bot/internal/locale"
	"rewiki-bot/internal/model"
	"rewiki-bot/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// UserCommandFunc is a command handler that runs for a registered user.
type UserCommandFunc func(ctx context.Context, msg *tgbotapi.Message, user *model.User)

// UserCallbackFunc is a callback handler that runs for a registered user.
type UserCallbackFunc func(ctx context.Context, q *tgbotapi.CallbackQuery, user *model.User) Answer

// registered lets h run only for users who have sent /start.
func (b *Bot) registered(h UserCommandFunc) CommandFunc {
	return func(ctx context.Context, msg *tgbotapi.Message) {
		user, err := b.store.GetUser(ctx, msg.From.ID)
		if errors.Is(err, store.ErrNotFound) {
			b.reply(msg, locale.Both(locale.StartFirst))
			return
		}
		if err != nil {
			b.logger.Error("Failed to load user", zap.Int64("uid", msg.From.ID), zap.Error(err))
			b.reply(msg, locale.Both(locale.InternalError))
			return
		}
		h(ctx, msg, user)
	}
}

// moderator lets h run only for registered moderators.
func (b *Bot) moderator(h UserCommandFunc) CommandFunc {
	return b.registered(func(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
		if !user.Moderator {
			b.logger.Warn("Moderator command denied",
				zap.Int64("uid", user.UID),
				zap.String("command", msg.Command()))
			b.reply(msg, locale.T(user.Lang(), locale.ModeratorOnly))
			return
		}
		h(ctx, msg, user)
	})
}

func (b *Bot) registeredCallback(h UserCallbackFunc) CallbackFunc {
	return func(ctx context.Context, q *tgbotapi.CallbackQuery) Answer {
		user, err := b.store.GetUser(ctx, q.From.ID)
		if errors.Is(err, store.ErrNotFound) {
			return Answer{Text: locale.Both(locale.StartFirst), Alert: true}
		}
		if err != nil {
			b.logger.Error("Failed to load user", zap.Int64("uid", q.From.ID), zap.Error(err))
			return Answer{Text: locale.Both(locale.InternalError), Alert: true}
		}
		if q.Message == nil {
			return Answer{}
		}
		return h(ctx, q, user)
	}
}
