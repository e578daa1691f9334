package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"rewiki-bot/internal/cursor"
	"rewiki-bot/internal/locale"
	"rewiki-bot/internal/model"
	"rewiki-bot/internal/pager"
	"rewiki-bot/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxQueryLen = 200

// pageView is a rendered page, ready to be sent or edited in place.
type pageView struct {
	text   string
	markup *tgbotapi.InlineKeyboardMarkup
}

func (b *Bot) handleSave(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	b.handleToggle(ctx, msg, user, true)
}

func (b *Bot) handleRemove(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	b.handleToggle(ctx, msg, user, false)
}

func (b *Bot) handleToggle(ctx context.Context, msg *tgbotapi.Message, user *model.User, save bool) {
	lang := user.Lang()
	name, _ := splitArgs(msg.CommandArguments())
	if name == "" {
		usage := locale.UsageRemove
		if save {
			usage = locale.UsageSave
		}
		b.reply(msg, locale.T(lang, usage))
		return
	}

	key, err := b.toggleSaved(ctx, user, name, save)
	if err != nil {
		b.logger.Error("Failed to update saved list",
			zap.Int64("uid", user.UID), zap.String("article", name), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}
	b.reply(msg, locale.T(lang, key, esc(name)))
}

// toggleSaved adds or removes name from the user's saved list and
// returns the message describing the outcome.
func (b *Bot) toggleSaved(ctx context.Context, user *model.User, name string, save bool) (locale.Key, error) {
	if _, err := b.store.GetArticle(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return locale.ArticleNotFound, nil
		}
		return locale.InternalError, err
	}

	if save {
		if user.HasSaved(name) {
			return locale.ArticleAlreadySaved, nil
		}
		if err := b.store.AddSavedArticle(ctx, user.UID, name); err != nil {
			return locale.InternalError, err
		}
		return locale.ArticleSaved, nil
	}

	if !user.HasSaved(name) {
		return locale.ArticleNotSaved, nil
	}
	if err := b.store.RemoveSavedArticle(ctx, user.UID, name); err != nil {
		return locale.InternalError, err
	}
	return locale.ArticleRemoved, nil
}

func (b *Bot) handleList(_ context.Context, msg *tgbotapi.Message, user *model.User) {
	view := b.savedPage(user, 0)
	b.replyWithMarkup(msg, view.text, view.markup)
}

func (b *Bot) handleArticles(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	view, err := b.allPage(ctx, user, 0)
	if err != nil {
		b.logger.Error("Failed to list articles", zap.Error(err))
		b.reply(msg, locale.T(user.Lang(), locale.InternalError))
		return
	}
	b.replyWithMarkup(msg, view.text, view.markup)
}

func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	lang := user.Lang()
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		b.reply(msg, locale.T(lang, locale.UsageSearch))
		return
	}
	if utf8.RuneCountInString(query) > maxQueryLen {
		query = string([]rune(query)[:maxQueryLen])
	}

	token, err := b.cursors.Put(ctx, query)
	if err != nil {
		b.logger.Error("Failed to store search cursor", zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	view, err := b.searchPage(ctx, user, token, query, 0)
	if err != nil {
		b.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}
	b.replyWithMarkup(msg, view.text, view.markup)
}

func (b *Bot) handleView(ctx context.Context, msg *tgbotapi.Message, user *model.User) {
	lang := user.Lang()
	name, _ := splitArgs(msg.CommandArguments())
	if name == "" {
		b.reply(msg, locale.T(lang, locale.UsageView))
		return
	}

	article, err := b.store.GetArticle(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		b.reply(msg, locale.T(lang, locale.ArticleNotFound, esc(name)))
		return
	} else if err != nil {
		b.logger.Error("Failed to load article", zap.String("article", name), zap.Error(err))
		b.reply(msg, locale.T(lang, locale.InternalError))
		return
	}

	text, kb := articleView(article, user)
	b.replyWithMarkup(msg, text, &kb)
}

func articleView(article *model.Article, user *model.User) (string, tgbotapi.InlineKeyboardMarkup) {
	text := fmt.Sprintf("<b>%s</b>\n\n%s", esc(article.Name), esc(article.Content))
	return text, articleKeyboard(user.Lang(), article.Name, user.HasSaved(article.Name))
}

func (b *Bot) savedPage(user *model.User, page int) pageView {
	lang := user.Lang()
	total := len(user.SavedArticles)
	if total == 0 {
		return pageView{text: locale.T(lang, locale.SavedEmpty)}
	}

	names, page := pager.Slice(user.SavedArticles, page, pager.PageSize)
	tok := pager.Token{Kind: pager.KindSaved, Page: page}
	kb := pageKeyboard(lang, names, tok, pager.Pages(total, pager.PageSize))
	return pageView{text: locale.T(lang, locale.SavedTitle, total), markup: &kb}
}

func (b *Bot) allPage(ctx context.Context, user *model.User, page int) (pageView, error) {
	lang := user.Lang()
	names, total, page, err := fetchPage(page, func(offset, limit int) ([]model.Article, int, error) {
		return b.store.ListArticles(ctx, offset, limit)
	})
	if err != nil {
		return pageView{}, err
	}
	if total == 0 {
		return pageView{text: locale.T(lang, locale.AllEmpty)}, nil
	}

	tok := pager.Token{Kind: pager.KindAll, Page: page}
	kb := pageKeyboard(lang, names, tok, pager.Pages(total, pager.PageSize))
	return pageView{text: locale.T(lang, locale.AllTitle, total), markup: &kb}, nil
}

func (b *Bot) searchPage(ctx context.Context, user *model.User, token, query string, page int) (pageView, error) {
	lang := user.Lang()
	names, total, page, err := fetchPage(page, func(offset, limit int) ([]model.Article, int, error) {
		return b.store.SearchArticles(ctx, query, offset, limit)
	})
	if err != nil {
		return pageView{}, err
	}
	if total == 0 {
		return pageView{text: locale.T(lang, locale.SearchEmpty, esc(query))}, nil
	}

	tok := pager.Token{Kind: pager.KindSearch, Ref: token, Page: page}
	kb := pageKeyboard(lang, names, tok, pager.Pages(total, pager.PageSize))
	return pageView{text: locale.T(lang, locale.SearchTitle, esc(query), total), markup: &kb}, nil
}

// fetchPage loads one page through fetch, re-fetching the last page when
// the requested one is past the end (the set may have shrunk since the
// keyboard was rendered).
func fetchPage(page int, fetch func(offset, limit int) ([]model.Article, int, error)) ([]string, int, int, error) {
	articles, total, err := fetch(pager.Offset(page, pager.PageSize), pager.PageSize)
	if err != nil {
		return nil, 0, 0, err
	}
	if clamped := pager.Clamp(page, pager.Pages(total, pager.PageSize)); clamped != page {
		page = clamped
		articles, total, err = fetch(pager.Offset(page, pager.PageSize), pager.PageSize)
		if err != nil {
			return nil, 0, 0, err
		}
	}

	names := make([]string, len(articles))
	for i, a := range articles {
		names[i] = a.Name
	}
	return names, total, page, nil
}

func (b *Bot) handlePageCallback(ctx context.Context, q *tgbotapi.CallbackQuery, user *model.User) Answer {
	lang := user.Lang()
	tok, err := pager.Decode(q.Data)
	if err != nil {
		b.logger.Debug("Ignoring malformed page token", zap.String("data", q.Data))
		return Answer{}
	}

	var view pageView
	switch tok.Kind {
	case pager.KindSaved:
		view = b.savedPage(user, tok.Page)
	case pager.KindAll:
		view, err = b.allPage(ctx, user, tok.Page)
	case pager.KindSearch:
		var query string
		query, err = b.cursors.Get(ctx, tok.Ref)
		if errors.Is(err, cursor.ErrExpired) {
			return Answer{Text: locale.T(lang, locale.CursorExpired), Alert: true}
		}
		if err == nil {
			view, err = b.searchPage(ctx, user, tok.Ref, query, tok.Page)
		}
	}
	if err != nil {
		b.logger.Error("Failed to render page",
			zap.String("kind", string(tok.Kind)), zap.Int("page", tok.Page), zap.Error(err))
		return Answer{Text: locale.T(lang, locale.InternalError), Alert: true}
	}

	b.edit(q.Message, view.text, view.markup)
	return Answer{}
}

func (b *Bot) handleArticleCallback(ctx context.Context, q *tgbotapi.CallbackQuery, user *model.User) Answer {
	lang := user.Lang()
	name := strings.TrimPrefix(q.Data, articlePrefix)

	article, err := b.store.GetArticle(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return Answer{Text: locale.T(lang, locale.ArticleNotFound, esc(name)), Alert: true}
	} else if err != nil {
		b.logger.Error("Failed to load article", zap.String("article", name), zap.Error(err))
		return Answer{Text: locale.T(lang, locale.InternalError), Alert: true}
	}

	text, kb := articleView(article, user)
	b.sendWithMarkup(q.Message.Chat.ID, text, &kb)
	return Answer{}
}

func (b *Bot) handleToggleCallback(save bool) UserCallbackFunc {
	prefix := removePrefix
	if save {
		prefix = savePrefix
	}

	return func(ctx context.Context, q *tgbotapi.CallbackQuery, user *model.User) Answer {
		lang := user.Lang()
		name := strings.TrimPrefix(q.Data, prefix)

		key, err := b.toggleSaved(ctx, user, name, save)
		if err != nil {
			b.logger.Error("Failed to update saved list",
				zap.Int64("uid", user.UID), zap.String("article", name), zap.Error(err))
			return Answer{Text: locale.T(lang, locale.InternalError), Alert: true}
		}

		switch key {
		case locale.ArticleSaved, locale.ArticleAlreadySaved:
			b.editMarkup(q.Message, articleKeyboard(lang, name, true))
		case locale.ArticleRemoved, locale.ArticleNotSaved:
			b.editMarkup(q.Message, articleKeyboard(lang, name, false))
		}
		return Answer{Text: locale.T(lang, key, esc(name))}
	}
}
