// Package pager slices result sets into pages and encodes page tokens
// carried in inline-button callback data.
package pager

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	PageSize = 10

	// Telegram rejects callback data longer than this.
	MaxCallbackData = 64

	tokenPrefix = "pg"
)

type Kind string

const (
	KindSaved  Kind = "saved"
	KindAll    Kind = "all"
	KindSearch Kind = "search"
)

var ErrBadToken = errors.New("malformed page token")

// Token identifies one page of a result set. Ref carries extra state such as a search cursor.
type Token struct {
	Kind Kind
	Ref  string
	Page int
}

func (t Token) Encode() string {
	return fmt.Sprintf("%s:%s:%s:%d", tokenPrefix, t.Kind, t.Ref, t.Page)
}

func IsToken(data string) bool {
	return strings.HasPrefix(data, tokenPrefix+":")
}

func Decode(data string) (Token, error) {
	if len(data) > MaxCallbackData {
		return Token{}, ErrBadToken
	}
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != tokenPrefix {
		return Token{}, ErrBadToken
	}

	kind := Kind(parts[1])
	switch kind {
	case KindSaved, KindAll:
	case KindSearch:
		if parts[2] == "" {
			return Token{}, ErrBadToken
		}
	default:
		return Token{}, ErrBadToken
	}

	page, err := strconv.Atoi(parts[3])
	if err != nil || page < 0 {
		return Token{}, ErrBadToken
	}
	return Token{Kind: kind, Ref: parts[2], Page: page}, nil
}

// Pages returns the number of pages needed for total items; an empty set still has one page.
func Pages(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Clamp keeps page within [0, pages).
func Clamp(page, pages int) int {
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}

func Offset(page, size int) int {
	return page * size
}

// Slice returns the items on page and the page index actually used after clamping.
func Slice[T any](items []T, page, size int) ([]T, int) {
	page = Clamp(page, Pages(len(items), size))
	start := Offset(page, size)
	if start >= len(items) {
		return nil, page
	}
	end := min(start+size, len(items))
	return items[start:end], page
}
