package workload

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey   = "service_queue"
	entriesKey = "service_entries"
)

// RedisQueue keeps arrival order in a list and the entries themselves in a
// hash keyed by service id, so several server processes can share one queue.
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(ctx context.Context, redisAddr string) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{client: client}, nil
}

// Client exposes the connection so other stores can share it.
func (q *RedisQueue) Client() *redis.Client {
	return q.client
}

func (q *RedisQueue) Push(ctx context.Context, entry Entry) (int, error) {
	entryJSON, err := entry.ToJSON()
	if err != nil {
		return 0, err
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, entriesKey, entry.ServiceID, entryJSON)
	push := pipe.RPush(ctx, queueKey, entry.ServiceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return int(push.Val()), nil
}

func (q *RedisQueue) Remove(ctx context.Context, serviceID string) (Entry, bool, error) {
	entryJSON, err := q.client.HGet(ctx, entriesKey, serviceID).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	pipe := q.client.TxPipeline()
	removed := pipe.LRem(ctx, queueKey, 1, serviceID)
	pipe.HDel(ctx, entriesKey, serviceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return Entry{}, false, err
	}
	if removed.Val() == 0 {
		return Entry{}, false, nil
	}

	entry, err := EntryFromJSON(entryJSON)
	if err != nil {
		return Entry{}, false, err
	}

	return *entry, true, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, queueKey).Result()
	return int(n), err
}

func (q *RedisQueue) List(ctx context.Context) ([]Entry, error) {
	ids, err := q.client.LRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Entry{}, nil
	}

	values, err := q.client.HMGet(ctx, entriesKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			log.Printf("queue entry %s has no payload", ids[i])
			continue
		}
		entry, err := EntryFromJSON(s)
		if err != nil {
			log.Printf("failed to decode queue entry %s: %v", ids[i], err)
			continue
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
