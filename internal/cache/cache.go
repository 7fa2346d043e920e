// Package cache хранит результаты поиска каналов в Redis (cache-aside).
// Без Redis все операции проходят напрямую к источнику.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ytAgent/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 15 * time.Minute

// Directory это источник каналов и видео.
type Directory interface {
	ResolveChannels(ctx context.Context, query string, limit int) ([]model.Channel, error)
	UploadedVideos(ctx context.Context, channelID string, count int) ([]string, error)
}

// Connect подключается к Redis по URL. Пустой URL или недоступный сервер
// дают nil клиента, кэш при этом отключен.
func Connect(ctx context.Context, redisURL string, log *zap.Logger) *redis.Client {
	if redisURL == "" {
		log.Debug("Redis не настроен, кэш отключен")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("Неверный адрес Redis, кэш отключен", zap.Error(err))
		return nil
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis недоступен, кэш отключен", zap.Error(err))
		rdb.Close()
		return nil
	}

	log.Info("Redis подключен, кэш включен")
	return rdb
}

// CachedDirectory кэширует ResolveChannels. UploadedVideos не кэшируется.
type CachedDirectory struct {
	next Directory
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedDirectory{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedDirectory) ResolveChannels(ctx context.Context, query string, limit int) ([]model.Channel, error) {
	if c.rdb == nil {
		return c.next.ResolveChannels(ctx, query, limit)
	}

	key := searchKey(query, limit)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var channels []model.Channel
		if err := json.Unmarshal(data, &channels); err == nil {
			c.log.Debug("Поиск каналов из кэша", zap.String("query", query))
			return channels, nil
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Ошибка чтения кэша", zap.Error(err))
	}

	channels, err := c.next.ResolveChannels(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(channels); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn("Ошибка записи кэша", zap.Error(err))
		}
	}
	return channels, nil
}

func (c *CachedDirectory) UploadedVideos(ctx context.Context, channelID string, count int) ([]string, error) {
	return c.next.UploadedVideos(ctx, channelID, count)
}

func searchKey(query string, limit int) string {
	return fmt.Sprintf("search:%s:%d", model.NormalizeTitle(query), limit)
}
