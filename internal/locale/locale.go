// Package locale holds the bot's English and Russian reply texts.
// Texts are HTML; callers escape user-supplied arguments.
package locale

import (
	"fmt"

	"rewiki-bot/internal/model"
)

type Key string

const (
	Welcome        Key = "welcome"
	StartFirst     Key = "start_first"
	ModeratorOnly  Key = "moderator_only"
	UnknownCommand Key = "unknown_command"
	InternalError  Key = "internal_error"

	Help          Key = "help"
	HelpModerator Key = "help_moderator"

	LangChoose Key = "lang_choose"
	LangSet    Key = "lang_set"

	UsageSave   Key = "usage_save"
	UsageRemove Key = "usage_remove"
	UsageView   Key = "usage_view"
	UsageSearch Key = "usage_search"
	UsageCreate Key = "usage_create"
	UsageEdit   Key = "usage_edit"
	UsageDelete Key = "usage_delete"
	UsageImport Key = "usage_import"
	UsageMod    Key = "usage_mod"

	InvalidName    Key = "invalid_name"
	InvalidContent Key = "invalid_content"
	InvalidURL     Key = "invalid_url"

	ArticleNotFound     Key = "article_not_found"
	ArticleSaved        Key = "article_saved"
	ArticleAlreadySaved Key = "article_already_saved"
	ArticleRemoved      Key = "article_removed"
	ArticleNotSaved     Key = "article_not_saved"
	ArticleCreated      Key = "article_created"
	ArticleExists       Key = "article_exists"
	ArticleUpdated      Key = "article_updated"
	ArticleDeleted      Key = "article_deleted"

	SavedTitle    Key = "saved_title"
	SavedEmpty    Key = "saved_empty"
	AllTitle      Key = "all_title"
	AllEmpty      Key = "all_empty"
	SearchTitle   Key = "search_title"
	SearchEmpty   Key = "search_empty"
	CursorExpired Key = "cursor_expired"

	ImportQueued Key = "import_queued"
	ImportDone   Key = "import_done"
	ImportFailed Key = "import_failed"

	ModGranted   Key = "mod_granted"
	ModRevoked   Key = "mod_revoked"
	UserNotFound Key = "user_not_found"

	ButtonBack    Key = "button_back"
	ButtonForward Key = "button_forward"
	ButtonSave    Key = "button_save"
	ButtonRemove  Key = "button_remove"
)

var messages = map[Key]map[model.Lang]string{
	Welcome: {
		model.LangEN: "Welcome to the ReWiki Bot! Use /help to see available commands.",
		model.LangRU: "Добро пожаловать в ReWiki Bot! Используйте /help, чтобы увидеть список команд.",
	},
	StartFirst: {
		model.LangEN: "You need to start the bot first using /start.",
		model.LangRU: "Для начала воспользуйтесь командой /start.",
	},
	ModeratorOnly: {
		model.LangEN: "You should be moderator to use this command!",
		model.LangRU: "Вы должны быть модератором, чтобы использовать эту команду!",
	},
	UnknownCommand: {
		model.LangEN: "Unknown command. Use /help to see available commands.",
		model.LangRU: "Неизвестная команда. Используйте /help для списка команд.",
	},
	InternalError: {
		model.LangEN: "Something went wrong, please try again later.",
		model.LangRU: "Что-то пошло не так, попробуйте позже.",
	},
	Help: {
		model.LangEN: "<b>Available commands:</b>\n" +
			"/start - Start the bot and register yourself\n" +
			"/help - Show this help message\n" +
			"/lang - Change the language\n" +
			"/save &lt;name&gt; - Save an article to your list\n" +
			"/remove &lt;name&gt; - Remove an article from your saved list\n" +
			"/list - List your saved articles\n" +
			"/articles - Browse all articles\n" +
			"/search &lt;query&gt; - Search articles\n" +
			"/view &lt;name&gt; - Read an article",
		model.LangRU: "<b>Доступные команды:</b>\n" +
			"/start - Запустить бота и зарегистрироваться\n" +
			"/help - Показать эту справку\n" +
			"/lang - Сменить язык\n" +
			"/save &lt;название&gt; - Сохранить статью в свой список\n" +
			"/remove &lt;название&gt; - Убрать статью из списка\n" +
			"/list - Показать сохранённые статьи\n" +
			"/articles - Все статьи\n" +
			"/search &lt;запрос&gt; - Поиск статей\n" +
			"/view &lt;название&gt; - Прочитать статью",
	},
	HelpModerator: {
		model.LangEN: "\n\n<b>Moderator commands:</b>\n" +
			"/create &lt;name&gt; &lt;content&gt; - Create a new article\n" +
			"/edit &lt;name&gt; &lt;content&gt; - Edit an existing article\n" +
			"/delete &lt;name&gt; - Delete an article\n" +
			"/import &lt;name&gt; &lt;url&gt; - Import an article from a web page\n" +
			"/mod &lt;user id&gt; - Grant moderator status\n" +
			"/unmod &lt;user id&gt; - Revoke moderator status",
		model.LangRU: "\n\n<b>Команды модератора:</b>\n" +
			"/create &lt;название&gt; &lt;текст&gt; - Создать статью\n" +
			"/edit &lt;название&gt; &lt;текст&gt; - Изменить статью\n" +
			"/delete &lt;название&gt; - Удалить статью\n" +
			"/import &lt;название&gt; &lt;url&gt; - Импортировать статью с веб-страницы\n" +
			"/mod &lt;id пользователя&gt; - Выдать права модератора\n" +
			"/unmod &lt;id пользователя&gt; - Снять права модератора",
	},
	LangChoose: {
		model.LangEN: "Choose your language:",
		model.LangRU: "Выберите язык:",
	},
	LangSet: {
		model.LangEN: "Language set to English.",
		model.LangRU: "Язык изменён на русский.",
	},
	UsageSave: {
		model.LangEN: "Usage: /save &lt;name&gt;",
		model.LangRU: "Использование: /save &lt;название&gt;",
	},
	UsageRemove: {
		model.LangEN: "Usage: /remove &lt;name&gt;",
		model.LangRU: "Использование: /remove &lt;название&gt;",
	},
	UsageView: {
		model.LangEN: "Usage: /view &lt;name&gt;",
		model.LangRU: "Использование: /view &lt;название&gt;",
	},
	UsageSearch: {
		model.LangEN: "Usage: /search &lt;query&gt;",
		model.LangRU: "Использование: /search &lt;запрос&gt;",
	},
	UsageCreate: {
		model.LangEN: "Usage: /create &lt;name&gt; &lt;content&gt;",
		model.LangRU: "Использование: /create &lt;название&gt; &lt;текст&gt;",
	},
	UsageEdit: {
		model.LangEN: "Usage: /edit &lt;name&gt; &lt;content&gt;",
		model.LangRU: "Использование: /edit &lt;название&gt; &lt;текст&gt;",
	},
	UsageDelete: {
		model.LangEN: "Usage: /delete &lt;name&gt;",
		model.LangRU: "Использование: /delete &lt;название&gt;",
	},
	UsageImport: {
		model.LangEN: "Usage: /import &lt;name&gt; &lt;url&gt;",
		model.LangRU: "Использование: /import &lt;название&gt; &lt;url&gt;",
	},
	UsageMod: {
		model.LangEN: "Usage: /%s &lt;user id&gt;",
		model.LangRU: "Использование: /%s &lt;id пользователя&gt;",
	},
	InvalidName: {
		model.LangEN: "Article name must be at most %d bytes long.",
		model.LangRU: "Название статьи должно быть не длиннее %d байт.",
	},
	InvalidContent: {
		model.LangEN: "Article content must be at most %d characters long.",
		model.LangRU: "Текст статьи должен быть не длиннее %d символов.",
	},
	InvalidURL: {
		model.LangEN: "Please provide an http(s) URL.",
		model.LangRU: "Укажите ссылку http(s).",
	},
	ArticleNotFound: {
		model.LangEN: "Article <b>%s</b> not found.",
		model.LangRU: "Статья <b>%s</b> не найдена.",
	},
	ArticleSaved: {
		model.LangEN: "Article <b>%s</b> has been saved to your list.",
		model.LangRU: "Статья <b>%s</b> сохранена в ваш список.",
	},
	ArticleAlreadySaved: {
		model.LangEN: "Article <b>%s</b> is already in your saved list.",
		model.LangRU: "Статья <b>%s</b> уже есть в вашем списке.",
	},
	ArticleRemoved: {
		model.LangEN: "Article <b>%s</b> has been removed from your list.",
		model.LangRU: "Статья <b>%s</b> удалена из вашего списка.",
	},
	ArticleNotSaved: {
		model.LangEN: "Article <b>%s</b> is not in your list.",
		model.LangRU: "Статьи <b>%s</b> нет в вашем списке.",
	},
	ArticleCreated: {
		model.LangEN: "Article <b>%s</b> has been created.",
		model.LangRU: "Статья <b>%s</b> создана.",
	},
	ArticleExists: {
		model.LangEN: "Article <b>%s</b> already exists.",
		model.LangRU: "Статья <b>%s</b> уже существует.",
	},
	ArticleUpdated: {
		model.LangEN: "Article <b>%s</b> has been updated.",
		model.LangRU: "Статья <b>%s</b> обновлена.",
	},
	ArticleDeleted: {
		model.LangEN: "Article <b>%s</b> has been deleted.",
		model.LangRU: "Статья <b>%s</b> удалена.",
	},
	SavedTitle: {
		model.LangEN: "<b>Your saved articles</b> (%d):",
		model.LangRU: "<b>Сохранённые статьи</b> (%d):",
	},
	SavedEmpty: {
		model.LangEN: "Your saved list is empty. Use /save &lt;name&gt; to add articles.",
		model.LangRU: "Ваш список пуст. Используйте /save &lt;название&gt;, чтобы добавить статьи.",
	},
	AllTitle: {
		model.LangEN: "<b>All articles</b> (%d):",
		model.LangRU: "<b>Все статьи</b> (%d):",
	},
	AllEmpty: {
		model.LangEN: "There are no articles yet.",
		model.LangRU: "Статей пока нет.",
	},
	SearchTitle: {
		model.LangEN: "<b>Search results for</b> «%s» (%d):",
		model.LangRU: "<b>Результаты поиска</b> «%s» (%d):",
	},
	SearchEmpty: {
		model.LangEN: "Nothing found for «%s».",
		model.LangRU: "По запросу «%s» ничего не найдено.",
	},
	CursorExpired: {
		model.LangEN: "This search has expired, please run /search again.",
		model.LangRU: "Поиск устарел, повторите /search.",
	},
	ImportQueued: {
		model.LangEN: "Import of <b>%s</b> has been queued.",
		model.LangRU: "Импорт статьи <b>%s</b> поставлен в очередь.",
	},
	ImportDone: {
		model.LangEN: "Article <b>%s</b> has been imported.",
		model.LangRU: "Статья <b>%s</b> импортирована.",
	},
	ImportFailed: {
		model.LangEN: "Import of <b>%s</b> failed: %s",
		model.LangRU: "Не удалось импортировать <b>%s</b>: %s",
	},
	ModGranted: {
		model.LangEN: "Successfully added moderator status to user %d.",
		model.LangRU: "Пользователь %d теперь модератор.",
	},
	ModRevoked: {
		model.LangEN: "Successfully removed moderator status from user %d.",
		model.LangRU: "Пользователь %d больше не модератор.",
	},
	UserNotFound: {
		model.LangEN: "User %d has not started the bot.",
		model.LangRU: "Пользователь %d ещё не запускал бота.",
	},
	ButtonBack: {
		model.LangEN: "« Back",
		model.LangRU: "« Назад",
	},
	ButtonForward: {
		model.LangEN: "Forward »",
		model.LangRU: "Вперёд »",
	},
	ButtonSave: {
		model.LangEN: "Save",
		model.LangRU: "Сохранить",
	},
	ButtonRemove: {
		model.LangEN: "Remove",
		model.LangRU: "Убрать",
	},
}

// T returns the text for key in lang, formatted with args.
// Unknown languages fall back to English; unknown keys return the key itself.
func T(lang model.Lang, key Key, args ...any) string {
	texts, ok := messages[key]
	if !ok {
		return string(key)
	}
	text, ok := texts[lang]
	if !ok {
		text = texts[model.LangEN]
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Both joins the English and Russian texts, for users whose language is not known yet.
func Both(key Key, args ...any) string {
	return T(model.LangEN, key, args...) + " / " + T(model.LangRU, key, args...)
}
