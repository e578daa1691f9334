package locale

import (
	"strings"
	"testing"

	"rewiki-bot/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCatalogComplete(t *testing.T) {
	for key, texts := range messages {
		for _, lang := range []model.Lang{model.LangEN, model.LangRU} {
			assert.NotEmpty(t, texts[lang], "%s has no %s text", key, lang)
		}
		assert.Equal(t,
			strings.Count(texts[model.LangEN], "%"),
			strings.Count(texts[model.LangRU], "%"),
			"%s verbs differ between languages", key)
	}
}

func TestT(t *testing.T) {
	assert.Equal(t, "Article <b>go</b> not found.", T(model.LangEN, ArticleNotFound, "go"))
	assert.Equal(t, "Статья <b>go</b> не найдена.", T(model.LangRU, ArticleNotFound, "go"))
	assert.Equal(t, T(model.LangEN, Welcome), T(model.Lang("de"), Welcome))
	assert.Equal(t, "missing", T(model.LangEN, Key("missing")))
}

func TestBoth(t *testing.T) {
	assert.Equal(t,
		"You need to start the bot first using /start. / Для начала воспользуйтесь командой /start.",
		Both(StartFirst))
}
