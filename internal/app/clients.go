package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/dentest-backend/internal/clients/redis"
	"github.com/yungbote/dentest-backend/internal/data/sessionstore"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type Clients struct {
	Redis        *goredis.Client
	SessionStore sessionstore.Store
}

// wireClients falls back to the in-process session store when REDIS_ADDR is
// empty. That store is only correct for a single replica.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set, quiz sessions are kept in process memory")
		return Clients{SessionStore: sessionstore.NewMemoryStore(cfg.QuizSessionTTL)}, nil
	}

	rdb, err := redis.NewClient(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	return Clients{
		Redis:        rdb,
		SessionStore: sessionstore.NewRedisStore(rdb, cfg.QuizSessionTTL, log),
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
