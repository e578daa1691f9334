package model

import (
	"time"
	"unicode/utf8"
)

const (
	// MaxNameLen keeps "art:<name>" inside Telegram's 64-byte callback data.
	MaxNameLen = 56
	// MaxContentLen fits an article into a single message.
	MaxContentLen = 3500
)

// Article is a named text document authored by a moderator.
type Article struct {
	Name      string    `json:"name" bson:"name"`
	Content   string    `json:"content" bson:"content"`
	Author    int64     `json:"author" bson:"author"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewArticle creates an Article with both timestamps set to now.
func NewArticle(name, content string, author int64) Article {
	now := time.Now().UTC()
	return Article{
		Name:      name,
		Content:   content,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidName reports whether name can be used as an article key.
func ValidName(name string) bool {
	return name != "" && len(name) <= MaxNameLen && utf8.ValidString(name)
}

// ValidContent reports whether content is non-empty and short enough to send.
func ValidContent(content string) bool {
	n := utf8.RuneCountInString(content)
	return n > 0 && n <= MaxContentLen
}
