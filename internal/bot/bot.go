package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	"rewiki-bot/internal/queue"
	"rewiki-bot/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Storage is everything the bot needs from persistence.
type Storage interface {
	store.ArticleStore
	store.UserStore
}

// Cursors remembers search queries behind short tokens.
type Cursors interface {
	Put(ctx context.Context, query string) (string, error)
	Get(ctx context.Context, token string) (string, error)
}

// Enqueuer accepts background import jobs.
type Enqueuer interface {
	Push(ctx context.Context, job queue.Job) error
}

// Bot turns Telegram updates into store operations and replies.
type Bot struct {
	api     Sender
	store   Storage
	cursors Cursors
	imports Enqueuer
	admins  map[int64]bool
	logger  *zap.Logger
	router  *Router
}

// New wires the bot. imports may be nil, in which case /import is unavailable.
// Users listed in admins become moderators when they /start.
func New(api Sender, st Storage, cursors Cursors, imports Enqueuer, admins []int64, logger *zap.Logger) *Bot {
	b := &Bot{
		api:     api,
		store:   st,
		cursors: cursors,
		imports: imports,
		admins:  make(map[int64]bool, len(admins)),
		logger:  logger,
		router:  NewRouter(),
	}
	for _, id := range admins {
		b.admins[id] = true
	}
	b.routes()
	return b
}

func (b *Bot) routes() {
	r := b.router

	r.Command(b.handleStart, "start")
	r.Command(b.registered(b.handleHelp), "help")
	r.Command(b.registered(b.handleLang), "lang", "language")

	r.Command(b.registered(b.handleSave), "save")
	r.Command(b.registered(b.handleRemove), "remove")
	r.Command(b.registered(b.handleList), "list")
	r.Command(b.registered(b.handleArticles), "articles")
	r.Command(b.registered(b.handleSearch), "search")
	r.Command(b.registered(b.handleView), "view")

	r.Command(b.moderator(b.handleCreate), "create")
	r.Command(b.moderator(b.handleEdit), "edit", "update")
	r.Command(b.moderator(b.handleDelete), "delete")
	r.Command(b.moderator(b.handleImport), "import")
	r.Command(b.moderator(b.handleMod(true)), "mod")
	r.Command(b.moderator(b.handleMod(false)), "unmod")

	r.Fallback(b.handleUnknown)

	r.Callback(Equals(noopData), func(context.Context, *tgbotapi.CallbackQuery) Answer { return Answer{} })
	r.Callback(HasPrefix(pagePrefix), b.registeredCallback(b.handlePageCallback))
	r.Callback(HasPrefix(articlePrefix), b.registeredCallback(b.handleArticleCallback))
	r.Callback(HasPrefix(savePrefix), b.registeredCallback(b.handleToggleCallback(true)))
	r.Callback(HasPrefix(removePrefix), b.registeredCallback(b.handleToggleCallback(false)))
	r.Callback(HasPrefix(langPrefix), b.registeredCallback(b.handleLangCallback))
}

// Start consumes updates until ctx is cancelled or the channel closes.
func (b *Bot) Start(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	b.logger.Info("Bot started. Waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("Update channel closed")
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single update. It never panics.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Handler panic", zap.Int("update_id", update.UpdateID), zap.Any("panic", r))
		}
	}()

	switch {
	case update.Message != nil:
		if update.Message.From == nil {
			return
		}
		b.logger.Debug("Message received",
			zap.Int64("uid", update.Message.From.ID),
			zap.String("text", update.Message.Text))
		b.router.HandleCommand(ctx, update.Message)

	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// handleCallback routes q and acknowledges it exactly once, even if the handler panics.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	var ans Answer
	defer func() { b.answer(q, ans) }()

	if q.From == nil {
		return
	}
	b.logger.Debug("Callback received",
		zap.Int64("uid", q.From.ID),
		zap.String("data", q.Data))
	ans, _ = b.router.HandleCallback(ctx, q)
}

// Notify sends a standalone HTML message to chatID.
func (b *Bot) Notify(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("notify chat %d: %w", chatID, err)
	}
	return nil
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	b.replyWithMarkup(msg, text, nil)
}

func (b *Bot) replyWithMarkup(msg *tgbotapi.Message, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyToMessageID = msg.MessageID
	if markup != nil {
		out.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("Failed to send reply", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		out.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// edit replaces the text and keyboard of a message the bot sent earlier.
func (b *Bot) edit(msg *tgbotapi.Message, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	out := tgbotapi.NewEditMessageText(msg.Chat.ID, msg.MessageID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = markup
	if _, err := b.api.Send(out); err != nil {
		// Telegram refuses edits that change nothing; that is not worth an error.
		b.logger.Debug("Failed to edit message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) editMarkup(msg *tgbotapi.Message, markup tgbotapi.InlineKeyboardMarkup) {
	out := tgbotapi.NewEditMessageReplyMarkup(msg.Chat.ID, msg.MessageID, markup)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Debug("Failed to edit keyboard", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) answer(q *tgbotapi.CallbackQuery, ans Answer) {
	cb := tgbotapi.NewCallback(q.ID, plain(ans.Text))
	cb.ShowAlert = ans.Alert
	if _, err := b.api.Request(cb); err != nil {
		b.logger.Warn("Failed to answer callback", zap.String("callback_id", q.ID), zap.Error(err))
	}
}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

var tagStripper = strings.NewReplacer("<b>", "", "</b>", "")

// plain converts one of our HTML texts into the plain text callback answers require.
func plain(s string) string {
	return html.UnescapeString(tagStripper.Replace(s))
}
