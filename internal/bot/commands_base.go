package bot

import (
	"context"
	"errors"
	"strings"

	"rewiki-bot/internal/locale"
	"rewiki-bot/internal/model"
	"rewiki-bot/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleStart registers the sender on first contact.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	uid := msg.From.ID
	logger := b.logger.With(zap.Int64("uid", uid))

	user, err := b.store.GetUser(ctx, uid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		u := model.NewUser(uid, model.ParseLang(msg.From.LanguageCode))
		u.Moderator = b.admins[uid]
		if err := b.store.CreateUser(ctx, &u); err != nil && !errors.Is(err, store.ErrDuplicate) {
			logger.Error("Failed to register user", zap.Error(err))
			b.reply(msg, locale.Both(locale.InternalError))
			return
		}
		logger.Info("User registered", zap.String("lang", string(u.Language)), zap.Bool("moderator", u.Moderator))
		user = &u

	case err != nil:
		logger.Error("Failed to load user", zap.Error(err))
		b.reply(msg, locale.Both(locale.InternalError))
		return

	case b.admins[uid] && !user.Moderator:
		if err := b.store.SetModerator(ctx, uid, true); err != nil {
			logger.Error("Failed to promote admin", zap.Error(err))
		} else {
			user.Moderator = true
		}
	}

	b.reply(msg, locale.T(user.Lang(), locale.Welcome))
}

func (b *Bot) handleHelp(_ context.Context, msg *tgbotapi.Message, user *model.User) {
	text := locale.T(user.Lang(), locale.Help)
	if user.Moderator {
		text += locale.T(user.Lang(), locale.HelpModerator)
	}
	b.reply(msg, text)
}

func (b *Bot) handleLang(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	arg, _ := splitArgs(msg.CommandArguments())
	switch strings.ToLower(arg) {
	case string(model.LangEN), string(model.LangRU):
		lang := model.Lang(strings.ToLower(arg))
		if err := b.store.SetLanguage(ctx, user.UID, lang); err != nil {
			b.logger.Error("Failed to set language", zap.Int64("uid", user.UID), zap.Error(err))
			b.reply(msg, locale.T(user.Lang(), locale.InternalError))
			return
		}
		b.reply(msg, locale.T(lang, locale.LangSet))
	default:
		kb := langKeyboard()
		b.replyWithMarkup(msg, locale.T(user.Lang(), locale.LangChoose), &kb)
	}
}

func (b *Bot) handleLangCallback(ctx context.Context, q *tgbotapi.CallbackQuery, user *model.User) Answer {
	code := strings.TrimPrefix(q.Data, langPrefix)
	if code != string(model.LangEN) && code != string(model.LangRU) {
		return Answer{}
	}
	lang := model.Lang(code)
	if err := b.store.SetLanguage(ctx, user.UID, lang); err != nil {
		b.logger.Error("Failed to set language", zap.Int64("uid", user.UID), zap.Error(err))
		return Answer{Text: locale.T(user.Lang(), locale.InternalError), Alert: true}
	}
	b.edit(q.Message, locale.T(lang, locale.LangSet), nil)
	return Answer{Text: locale.T(lang, locale.LangSet)}
}

func (b *Bot) handleUnknown(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.store.GetUser(ctx, msg.From.ID)
	if err != nil {
		b.reply(msg, locale.Both(locale.UnknownCommand))
		return
	}
	b.reply(msg, locale.T(user.Lang(), locale.UnknownCommand))
}
