package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jforshea/authhub/internal/domain/user"
)

// Redis caches redacted users across processes. Entries carry a short
// TTL; staleness only delays profile reads, never auth decisions.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Redis{rdb: rdb, ttl: ttl}
}

func userKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

func (c *Redis) Get(ctx context.Context, id int64) (user.User, bool) {
	raw, err := c.rdb.Get(ctx, userKey(id)).Bytes()

	if err != nil {
		// miss or redis unavailable: fall through to the store
		return user.User{}, false
	}

	var u user.User

	if err := json.Unmarshal(raw, &u); err != nil {
		return user.User{}, false
	}

	return u, true
}

func (c *Redis) Set(ctx context.Context, u user.User) {
	raw, err := json.Marshal(u)

	if err != nil {
		return
	}

	// best effort; a failed write just means a store hit next time
	_ = c.rdb.Set(ctx, userKey(u.ID), raw, c.ttl).Err()
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}
