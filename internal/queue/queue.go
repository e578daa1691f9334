package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rewiki-bot/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const importKey = "queue:import"

// popWait bounds each BRPOP so a cancelled context is noticed promptly.
const popWait = time.Second

// Job asks the worker to turn a web page into an article.
type Job struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	AuthorID  int64      `json:"author_id"`
	ChatID    int64      `json:"chat_id"`
	Lang      model.Lang `json:"lang"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewJob(name, rawURL string, authorID, chatID int64, lang model.Lang) Job {
	return Job{
		ID:        uuid.New(),
		Name:      name,
		URL:       rawURL,
		AuthorID:  authorID,
		ChatID:    chatID,
		Lang:      lang,
		CreatedAt: time.Now().UTC(),
	}
}

// RedisQueue is a FIFO of import jobs stored in a Redis list.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Push(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.rdb.LPush(ctx, importKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue import: %w", err)
	}
	return nil
}

// Pop waits for a job (Blocking) until one arrives or ctx is done.
func (q *RedisQueue) Pop(ctx context.Context) (*Job, error) {
	var result []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// go-redis honours context deadlines but not cancellation, so wait in short rounds
		var err error
		result, err = q.rdb.BRPop(ctx, popWait, importKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		break
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("decode import job: %w", err)
	}
	return &job, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, importKey).Result()
}
