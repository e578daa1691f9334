package model

import (
	"slices"
	"strings"
	"time"
)

type Lang string

const (
	LangEN Lang = "en"
	LangRU Lang = "ru"
)

// ParseLang maps a Telegram language_code (or a user argument) to a supported Lang.
// Anything that is not Russian falls back to English.
func ParseLang(code string) Lang {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(code)), "ru") {
		return LangRU
	}
	return LangEN
}

// User represents a registered chat participant.
type User struct {
	UID           int64     `json:"uid" bson:"uid"`
	Language      Lang      `json:"language" bson:"language"`
	Moderator     bool      `json:"moderator" bson:"moderator"`
	SavedArticles []string  `json:"saved_articles" bson:"saved_articles"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// NewUser creates a regular (non-moderator) user with an empty saved list.
func NewUser(uid int64, lang Lang) User {
	return User{
		UID:           uid,
		Language:      lang,
		SavedArticles: []string{},
		CreatedAt:     time.Now().UTC(),
	}
}

func (u *User) HasSaved(name string) bool {
	return slices.Contains(u.SavedArticles, name)
}

// Lang returns the user's language, defaulting to English for legacy documents.
func (u *User) Lang() Lang {
	if u.Language == "" {
		return LangEN
	}
	return u.Language
}
