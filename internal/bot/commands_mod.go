package bot

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"rewiki-bot/internal/locale"
	"rewiki-bot/internal/model"
	"rewiki-bot/internal/queue"
	"rewiki-bot/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// parseArticleArgs validates "<name> <content>" and replies with the
// relevant usage or limit message when it is not acceptable.
func (b *Bot) parseArticleArgs(msg *tgbotapi.Message, lang model.Lang, usage locale.Key) (string, string, bool) {
	name, content := splitArgs(msg.CommandArguments())
	if name == "" || content == "" {
		b.reply(msg, locale.T(lang, usage))
		return "", "", false
	}
	if !model.ValidName(name) {
		b.reply(msg, locale.T(lang, locale.InvalidName, model.MaxNameLen))
		return "", "", false
	}
	if !model.ValidContent(content) {
		b.reply(msg, locale.T(lang, locale.InvalidContent, model.MaxContentLen))
		return "", "", false
	}
	return name, content, true
}

func (b *Bot) handleCreate(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	lang := user.Lang()
	name, content, ok := b.parseArticleArgs(msg, lang, locale.UsageCreate)
	if !ok {
		return
	}

	article := model.NewArticle(name, content, user.UID)
	err := b.store.CreateArticle(ctx, &article)
	if errors.Is(err, store.ErrDuplicate) {
		b.reply(msg, locale.T(lang, locale.ArticleExists, esc(name)))
		return
	} else if err != nil {
		b.logger.Error("Failed to create article", zap.String("article", name), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	b.logger.Info("Article created", zap.String("article", name), zap.Int64("author", user.UID))
	b.reply(msg, locale.T(lang, locale.ArticleCreated, esc(name)))
}

func (b *Bot) handleEdit(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	lang := user.Lang()
	name, content, ok := b.parseArticleArgs(msg, lang, locale.UsageEdit)
	if !ok {
		return
	}

	err := b.store.UpdateArticle(ctx, name, content)
	if errors.Is(err, store.ErrNotFound) {
		b.reply(msg, locale.T(lang, locale.ArticleNotFound, esc(name)))
		return
	} else if err != nil {
		b.logger.Error("Failed to update article", zap.String("article", name), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	b.logger.Info("Article updated", zap.String("article", name), zap.Int64("editor", user.UID))
	b.reply(msg, locale.T(lang, locale.ArticleUpdated, esc(name)))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	lang := user.Lang()
	name, _ := splitArgs(msg.CommandArguments())
	if name == "" {
		b.reply(msg, locale.T(lang, locale.UsageDelete))
		return
	}

	err := b.store.DeleteArticle(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		b.reply(msg, locale.T(lang, locale.ArticleNotFound, esc(name)))
		return
	} else if err != nil {
		b.logger.Error("Failed to delete article", zap.String("article", name), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	if err := b.store.ForgetArticle(ctx, name); err != nil {
		b.logger.Error("Failed to drop deleted article from saved lists", zap.String("article", name), zap.Error(err))
	}

	b.logger.Info("Article deleted", zap.String("article", name), zap.Int64("moderator", user.UID))
	b.reply(msg, locale.T(lang, locale.ArticleDeleted, esc(name)))
}

func (b *Bot) handleImport(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	lang := user.Lang()
	name, rest := splitArgs(msg.CommandArguments())
	rawURL, _ := splitArgs(rest)
	if name == "" || rawURL == "" {
		b.reply(msg, locale.T(lang, locale.UsageImport))
		return
	}
	if !model.ValidName(name) {
		b.reply(msg, locale.T(lang, locale.InvalidName, model.MaxNameLen))
		return
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		b.reply(msg, locale.T(lang, locale.InvalidURL))
		return
	}

	if _, err := b.store.GetArticle(ctx, name); err == nil {
		b.reply(msg, locale.T(lang, locale.ArticleExists, esc(name)))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		b.logger.Error("Failed to load article", zap.String("article", name), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	if b.imports == nil {
		b.logger.Warn("Import requested but no queue is configured")
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	job := queue.NewJob(name, u.String(), user.UID, msg.Chat.ID, lang)
	if err := b.imports.Push(ctx, job); err != nil {
		b.logger.Error("Failed to queue import", zap.String("url", job.URL), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	b.logger.Info("Import queued",
		zap.String("job_id", job.ID.String()),
		zap.String("article", name),
		zap.String("url", job.URL))
	b.reply(msg, locale.T(lang, locale.ImportQueued, esc(name)))
}

func (b *Bot) handleMod(grant bool) UserCommandFunc {
	return func(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
		lang := user.Lang()
		arg, _ := splitArgs(msg.CommandArguments())
		target, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			b.reply(msg, locale.T(lang, locale.UsageMod, msg.Command()))
			return
		}

		err = b.store.SetModerator(ctx, target, grant)
		if errors.Is(err, store.ErrNotFound) {
			b.reply(msg, locale.T(lang, locale.UserNotFound, target))
			return
		} else if err != nil {
			b.logger.Error("Failed to change moderator status", zap.Int64("target", target), zap.Error(err))
			b.reply(msg, locale.T(lang, locale.InternalError))
			return
		}

		b.logger.Info("Moderator status changed",
			zap.Int64("target", target),
			zap.Bool("moderator", grant),
			zap.Int64("by", user.UID))
		if grant {
			b.reply(msg, locale.T(lang, locale.ModGranted, target))
		} else {
			b.reply(msg, locale.T(lang, locale.ModRevoked, target))
		}
	}
}
