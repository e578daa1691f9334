// Package config resolves runtime settings from the environment, optionally
// seeded from a .env file. Command line flags override these values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendBadger = "badger"
)

type Config struct {
	BotToken   string
	MongoURI   string
	MongoDB    string
	Backend    string
	BadgerPath string
	RedisAddr  string
	HTTPAddr   string
	WebhookURL string
	AdminIDs   []int64
}

// Load reads files (".env" when none are given) into the process environment
// and builds a Config. Missing files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	admins, err := ParseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return Config{}, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	return Config{
		BotToken:   os.Getenv("BOT_TOKEN"),
		MongoURI:   getenv("MONGO_DB_URI", "mongodb://localhost:27017"),
		MongoDB:    getenv("MONGO_DB_NAME", "WikiDatabase"),
		Backend:    getenv("STORE_BACKEND", BackendMongo),
		BadgerPath: getenv("BADGER_PATH", "./badger-data"),
		RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),
		WebhookURL: os.Getenv("WEBHOOK_URL"),
		AdminIDs:   admins,
	}, nil
}

func (c Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN is not set")
	}
	switch c.Backend {
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_DB_URI is not set")
		}
	case BackendBadger:
		if c.BadgerPath == "" {
			return errors.New("BADGER_PATH is not set")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Backend)
	}
	return nil
}

// ParseIDs parses a comma separated list of Telegram user ids.
func ParseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
