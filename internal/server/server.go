package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rewiki-bot/internal/pager"
	"rewiki-bot/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Store is the read side the HTTP API needs.
type Store interface {
	store.ArticleStore
	Ping(ctx context.Context) error
}

// UpdateHandler consumes updates pushed by Telegram to the webhook.
type UpdateHandler func(ctx context.Context, update tgbotapi.Update)

type Server struct {
	store  Store
	logger *zap.Logger
	router *mux.Router
	server *http.Server
}

type articleSummary struct {
	Name      string    `json:"name"`
	Author    int64     `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type articlePage struct {
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int              `json:"total"`
	Articles []articleSummary `json:"articles"`
}

func NewServer(st Store, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/articles", s.handleList).Methods("GET")
	s.router.HandleFunc("/api/articles/{name}", s.handleGet).Methods("GET")
}

// HandleWebhook accepts Telegram updates POSTed to path. Keep the path
// unguessable (for example /webhook/<random>), it is the only credential.
func (s *Server) HandleWebhook(path string, h UpdateHandler) {
	s.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			s.logger.Warn("Bad webhook payload", zap.Error(err))
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		h(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	}).Methods("POST")
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("Health check failed", zap.Error(err))
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "Invalid page", http.StatusBadRequest)
			return
		}
		page = n
	}

	articles, total, err := s.store.ListArticles(r.Context(), pager.Offset(page, pager.PageSize), pager.PageSize)
	if err != nil {
		s.logger.Error("Failed to list articles", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	out := articlePage{
		Page:     page,
		Pages:    pager.Pages(total, pager.PageSize),
		Total:    total,
		Articles: make([]articleSummary, 0, len(articles)),
	}
	for _, a := range articles {
		out.Articles = append(out.Articles, articleSummary{
			Name:      a.Name,
			Author:    a.Author,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	article, err := s.store.GetArticle(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.logger.Error("Failed to load article", zap.String("article", name), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, article)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
