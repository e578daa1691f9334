package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"rewiki-bot/internal/bot"
	"rewiki-bot/internal/config"
	"rewiki-bot/internal/cursor"
	"rewiki-bot/internal/queue"
	"rewiki-bot/internal/server"
	"rewiki-bot/internal/store"
	"rewiki-bot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	cfg    config.Config
	debug  bool
)

var rootCmd = &cobra.Command{
	Use:   "rewiki",
	Short: "rewiki - A Telegram bot for a small shared wiki",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, the import worker and the web server",
	Run: func(cmd *cobra.Command, args []string) {
		defer logger.Sync()

		if err := cfg.Validate(); err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			cancel()
		}()

		st, err := openStore(ctx)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer st.Close()

		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()

		api, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			logger.Fatal("Failed to connect to Telegram", zap.Error(err))
		}
		api.Debug = debug
		logger.Info("Authorized", zap.String("account", api.Self.UserName))

		imports := queue.NewRedisQueue(rdb)
		b := bot.New(api, st, cursor.New(rdb, cursor.DefaultTTL), imports, cfg.AdminIDs, logger)

		// Background goroutines must finish before the store and redis close
		var wg sync.WaitGroup

		// Start Worker
		w := worker.NewWorker(imports, st, b, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Start(ctx)
		}()

		srv := server.NewServer(st, logger)

		if cfg.WebhookURL != "" {
			if err := useWebhook(api, srv, b.HandleUpdate, cfg.WebhookURL); err != nil {
				logger.Fatal("Failed to set webhook", zap.Error(err))
			}
		} else {
			if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
				logger.Warn("Failed to delete webhook", zap.Error(err))
			}
			u := tgbotapi.NewUpdate(0)
			u.Timeout = 60
			updates := api.GetUpdatesChan(u)
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.Start(ctx, updates)
			}()
			logger.Info("Receiving updates via long polling")
		}

		go func() {
			if err := srv.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Web server failed", zap.Error(err))
				cancel()
			}
		}()

		logger.Info("Bot running.")

		// Block until shutdown
		<-ctx.Done()

		if cfg.WebhookURL == "" {
			api.StopReceivingUpdates()
		}
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("Web server shutdown", zap.Error(err))
		}
		wg.Wait()
		logger.Info("Goodbye!")
	},
}

var modCmd = &cobra.Command{
	Use:   "mod [uid]",
	Short: "Grant moderator rights to a registered user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setModerator(args[0], true)
	},
}

var unmodCmd = &cobra.Command{
	Use:   "unmod [uid]",
	Short: "Revoke moderator rights from a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setModerator(args[0], false)
	},
}

func setModerator(raw string, grant bool) {
	defer logger.Sync()

	uid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Fatal("Invalid user id", zap.String("uid", raw))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := openStore(ctx)
	if err != nil {
		logger.Fatal("Failed to init store", zap.Error(err))
	}
	defer st.Close()

	if err := st.SetModerator(ctx, uid, grant); errors.Is(err, store.ErrNotFound) {
		logger.Fatal("User has not started the bot yet", zap.Int64("uid", uid))
	} else if err != nil {
		logger.Fatal("Failed to update user", zap.Error(err))
	}

	logger.Info("Moderator flag updated", zap.Int64("uid", uid), zap.Bool("moderator", grant))
}

// openStore opens the configured backend. The badger backend also gets its
// value log collected in the background for as long as ctx lives.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		st, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendBadger:
		st, err := store.NewBadgerStore(cfg.BadgerPath, logger)
		if err != nil {
			return nil, err
		}
		go st.RunGC(ctx, 5*time.Minute)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// useWebhook registers rawURL with Telegram and serves updates on its path.
// The path is the webhook's credential and is never logged.
func useWebhook(api bot.Sender, srv *server.Server, h server.UpdateHandler, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse webhook url: %w", err)
	}
	wh, err := tgbotapi.NewWebhook(rawURL)
	if err != nil {
		return err
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	srv.HandleWebhook(path, h)
	logger.Info("Receiving updates via webhook", zap.String("host", u.Host))
	return nil
}

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debug, "debug", false, "Enable development logging")
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "Store backend: mongo or badger")
	flags.StringVar(&cfg.MongoURI, "mongo", cfg.MongoURI, "MongoDB connection URI")
	flags.StringVar(&cfg.MongoDB, "mongo-db", cfg.MongoDB, "MongoDB database name")
	flags.StringVar(&cfg.BadgerPath, "badger", cfg.BadgerPath, "Path to BadgerDB data directory")
	flags.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Address of Redis server")
	serveCmd.Flags().StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "Address for the web server")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modCmd)
	rootCmd.AddCommand(unmodCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
