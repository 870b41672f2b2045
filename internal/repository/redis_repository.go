package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Leganyst/interview-slots/internal/model"
)

const defaultRedisKey = "slotbook:catalog"

// RedisCatalogRepository хранит документ каталога под одним ключом.
// SET заменяет значение атомарно, частично записанного снимка не бывает.
type RedisCatalogRepository struct {
	rdb *redis.Client
	key string
}

type RedisOption func(*RedisCatalogRepository)

func WithRedisKey(key string) RedisOption {
	return func(r *RedisCatalogRepository) {
		if k := strings.TrimSpace(key); k != "" {
			r.key = k
		}
	}
}

func NewRedisCatalogRepository(rdb *redis.Client, opts ...RedisOption) *RedisCatalogRepository {
	r := &RedisCatalogRepository{rdb: rdb, key: defaultRedisKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key возвращает ключ, под которым лежит снимок.
func (r *RedisCatalogRepository) Key() string { return r.key }

func (r *RedisCatalogRepository) Load(ctx context.Context) (*model.Catalog, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	c := model.NewCatalog()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	c.EnsureMaps()
	return c, nil
}

func (r *RedisCatalogRepository) Save(ctx context.Context, c *model.Catalog) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
