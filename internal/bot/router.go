package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type CommandFunc func(ctx context.Context, msg *tgbotapi.Message)

// Answer is shown to the user when a callback query is acknowledged.
type Answer struct {
	Text  string
	Alert bool
}

type CallbackFunc func(ctx context.Context, q *tgbotapi.CallbackQuery) Answer

type callbackRoute struct {
	match  func(data string) bool
	handle CallbackFunc
}

// Router maps command names and callback data to handlers.
type Router struct {
	commands  map[string]CommandFunc
	callbacks []callbackRoute
	fallback  CommandFunc
}

func NewRouter() *Router {
	return &Router{commands: make(map[string]CommandFunc)}
}

// Command binds h to every name (without the leading slash).
func (r *Router) Command(h CommandFunc, names ...string) {
	for _, name := range names {
		r.commands[strings.ToLower(name)] = h
	}
}

// Callback binds h to callback data accepted by match. Routes are tried in registration order.
func (r *Router) Callback(match func(data string) bool, h CallbackFunc) {
	r.callbacks = append(r.callbacks, callbackRoute{match: match, handle: h})
}

// Fallback handles commands nobody registered.
func (r *Router) Fallback(h CommandFunc) {
	r.fallback = h
}

// HandleCommand runs the handler bound to msg's command.
// It reports false for plain text and unknown commands without a fallback.
func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) bool {
	if !msg.IsCommand() {
		return false
	}
	if h, ok := r.commands[strings.ToLower(msg.Command())]; ok {
		h(ctx, msg)
		return true
	}
	if r.fallback != nil {
		r.fallback(ctx, msg)
		return true
	}
	return false
}

// HandleCallback runs the first matching callback handler.
func (r *Router) HandleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) (Answer, bool) {
	for _, route := range r.callbacks {
		if route.match(q.Data) {
			return route.handle(ctx, q), true
		}
	}
	return Answer{}, false
}

func HasPrefix(prefix string) func(string) bool {
	return func(data string) bool {
		return strings.HasPrefix(data, prefix)
	}
}

func Equals(value string) func(string) bool {
	return func(data string) bool {
		return data == value
	}
}
