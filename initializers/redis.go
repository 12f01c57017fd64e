package initializers

import (
	"context"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"procurement-backend/config"
	prnumber "procurement-backend/lib/pr-number"
)

func InitNumberAllocator(ctx context.Context) {
	conf := config.Conf.Redis
	if config.Conf.Workflow.NumberAllocator != "redis" {
		prnumber.Instance = prnumber.NewCountAllocator()
		return
	}
	if conf.Enabled == nil || !*conf.Enabled {
		panic("redis number allocator selected but redis is disabled")
	}
	opts, err := redis.ParseURL(conf.URL)
	if err != nil {
		panic(err.Error())
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		panic(err.Error())
	}
	prnumber.Instance = prnumber.NewRedisAllocator(client)
	log.Info("redis pr number allocator initialized")
}
