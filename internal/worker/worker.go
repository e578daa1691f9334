package worker

import (
	"context"
	"errors"
	"html"
	"regexp"
	"strings"
	"time"

	"rewiki-bot/internal/locale"
	"rewiki-bot/internal/model"
	"rewiki-bot/internal/queue"
	"rewiki-bot/internal/store"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

const scrapeTimeout = 30 * time.Second

var errNoContent = errors.New("page has no readable text")

// Scraper defines the interface for downloading web pages.
// This allows us to mock the "Download" step in tests.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper is the real implementation that uses the internet
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	return &art, err
}

// Queue hands out import jobs, blocking until one is available.
type Queue interface {
	Pop(ctx context.Context) (*queue.Job, error)
}

// Notifier reports job results back to the chat that requested them.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Worker turns queued web pages into articles.
type Worker struct {
	queue    Queue
	store    store.ArticleStore
	notifier Notifier
	logger   *zap.Logger
	scraper  Scraper
}

// NewWorker initializes the worker with the DefaultScraper
func NewWorker(q Queue, st store.ArticleStore, notifier Notifier, logger *zap.Logger) *Worker {
	return &Worker{
		queue:    q,
		store:    st,
		notifier: notifier,
		logger:   logger,
		scraper:  &DefaultScraper{},
	}
}

// Start runs the worker loop
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Import worker started. Waiting for jobs...")

	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Import worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *queue.Job) {
	logger := w.logger.With(zap.String("job_id", job.ID.String()), zap.String("article", job.Name))
	logger.Info("Import started", zap.String("url", job.URL))

	parsed, err := w.scraper.Scrape(job.URL, scrapeTimeout)
	if err != nil {
		logger.Error("Scraping failed", zap.Error(err))
		w.failJob(ctx, job, err.Error())
		return
	}

	content := clipContent(parsed.TextContent)
	if content == "" {
		logger.Warn("Scraped page is empty")
		w.failJob(ctx, job, errNoContent.Error())
		return
	}

	article := model.NewArticle(job.Name, content, job.AuthorID)
	err = w.store.CreateArticle(ctx, &article)
	if errors.Is(err, store.ErrDuplicate) {
		logger.Warn("Article appeared while importing")
		w.notify(ctx, job, locale.T(job.Lang, locale.ArticleExists, html.EscapeString(job.Name)))
		return
	} else if err != nil {
		logger.Error("Failed to save imported article", zap.Error(err))
		w.failJob(ctx, job, "storage error")
		return
	}

	logger.Info("Import complete", zap.String("title", parsed.Title), zap.Int("chars", len([]rune(content))))
	w.notify(ctx, job, locale.T(job.Lang, locale.ImportDone, html.EscapeString(job.Name)))
}

func (w *Worker) failJob(ctx context.Context, job *queue.Job, msg string) {
	w.notify(ctx, job, locale.T(job.Lang, locale.ImportFailed, html.EscapeString(job.Name), html.EscapeString(msg)))
}

func (w *Worker) notify(ctx context.Context, job *queue.Job, text string) {
	if err := w.notifier.Notify(ctx, job.ChatID, text); err != nil {
		w.logger.Error("Failed to notify chat", zap.Int64("chat_id", job.ChatID), zap.Error(err))
	}
}

var blankLines = regexp.MustCompile(`\n\s*\n+`)

// clipContent normalizes whitespace in scraped text and cuts it to the article limit.
func clipContent(text string) string {
	text = strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
	runes := []rune(text)
	if len(runes) > model.MaxContentLen {
		text = strings.TrimSpace(string(runes[:model.MaxContentLen-1])) + "…"
	}
	return text
}
