package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache 读穿缓存；RDB 为 nil 时退化为仅 singleflight 合并回源
type Cache struct {
	RDB    *redis.Client
	Prefix string
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	c := &Cache{Prefix: "neontask:"}
	if addr != "" {
		c.RDB = redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	}
	return c
}

func (c *Cache) Enabled() bool { return c != nil && c.RDB != nil }

func (c *Cache) key(k string) string { return c.Prefix + k }

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.RDB.Close()
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return load(ctx)
	}
	k := c.key(key)
	if c.Enabled() {
		// redis.Nil 或 redis 不可用都照常回源
		if b, err := c.RDB.Get(ctx, k).Bytes(); err == nil {
			return b, nil
		}
	}
	// single flight 合并并发回源
	v, err, _ := c.sf.Do(k, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if c.Enabled() {
			_ = c.RDB.Set(ctx, k, b, ttl).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.RDB.Del(ctx, c.key(key)).Err()
}
