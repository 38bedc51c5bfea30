// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "intake:"

// Redis stores documents as JSON strings under intake:<collection>:<id>
type Redis struct {
	client *redis.Client
}

// OpenRedis connects to url and verifies the connection
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	if url == "" {
		return nil, errors.New("redis store requires store.redis.url")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Debug("Connected to redis", "addr", opts.Addr, "db", opts.DB)
	return &Redis{client: client}, nil
}

// NewRedis wraps an existing client
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(collection, id string) string {
	return redisKeyPrefix + collection + ":" + id
}

// Get implements Store
func (r *Redis) Get(ctx context.Context, collection, id string, dst any) error {
	data, err := r.client.Get(ctx, redisKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return notFound(collection, id)
	}
	if err != nil {
		return fmt.Errorf("redis get %s/%s: %w", collection, id, err)
	}
	return decode(collection, id, data, dst)
}

// Put implements Store
func (r *Redis) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := encode(collection, id, doc)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKey(collection, id), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Create implements Store using SETNX
func (r *Redis) Create(ctx context.Context, collection, id string, doc any) error {
	data, err := encode(collection, id, doc)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, redisKey(collection, id), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx %s/%s: %w", collection, id, err)
	}
	if !ok {
		return exists(collection, id)
	}
	return nil
}

// Exists implements Store
func (r *Redis) Exists(ctx context.Context, collection, id string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKey(collection, id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s/%s: %w", collection, id, err)
	}
	return n > 0, nil
}

// Delete implements Store
func (r *Redis) Delete(ctx context.Context, collection, id string) error {
	if err := r.client.Del(ctx, redisKey(collection, id)).Err(); err != nil {
		return fmt.Errorf("redis del %s/%s: %w", collection, id, err)
	}
	return nil
}

// Close implements Store
func (r *Redis) Close() error {
	return r.client.Close()
}
