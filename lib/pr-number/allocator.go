package prnumber

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	dbmodels "procurement-backend/models/db"
)

// Counter reports how many purchase requests exist, soft-deleted ones included.
type Counter interface {
	CountAll() (int64, error)
}

// Allocator hands out PR numbers. The unique index on pr_number is the final guard;
// callers retry on a duplicate key.
type Allocator interface {
	Next(ctx context.Context, counter Counter, now time.Time) (string, error)
}

var Instance Allocator = NewCountAllocator()

type countImpl struct{}

func NewCountAllocator() Allocator {
	return countImpl{}
}

func (countImpl) Next(ctx context.Context, counter Counter, now time.Time) (string, error) {
	count, err := counter.CountAll()
	if err != nil {
		return "", errors.Wrap(err, "error counting purchase requests")
	}
	return dbmodels.FormatPRNumber(now.Year(), count+1), nil
}

type redisImpl struct {
	client *redis.Client
}

func NewRedisAllocator(client *redis.Client) Allocator {
	return &redisImpl{
		client: client,
	}
}

func sequenceKey(year int) string {
	return fmt.Sprintf("procurement:pr_number:%d", year)
}

// Next seeds the yearly sequence with the current row count the first time it is used,
// then increments it atomically.
func (i redisImpl) Next(ctx context.Context, counter Counter, now time.Time) (string, error) {
	key := sequenceKey(now.Year())
	exists, err := i.client.Exists(ctx, key).Result()
	if err != nil {
		return "", errors.Wrap(err, "error reading pr number sequence")
	}
	if exists == 0 {
		count, err := counter.CountAll()
		if err != nil {
			return "", errors.Wrap(err, "error counting purchase requests")
		}
		if err = i.client.SetNX(ctx, key, count, 0).Err(); err != nil {
			return "", errors.Wrap(err, "error seeding pr number sequence")
		}
	}
	seq, err := i.client.Incr(ctx, key).Result()
	if err != nil {
		return "", errors.Wrap(err, "error incrementing pr number sequence")
	}
	return dbmodels.FormatPRNumber(now.Year(), seq), nil
}
