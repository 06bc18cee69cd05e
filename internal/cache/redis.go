package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"energy-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when a result is not cached.
var ErrMiss = errors.New("result not cached")

type Options struct {
	Addr        string
	Password    string
	DB          int
	TTL         time.Duration
	RecentLimit int64
}

type RedisClient struct {
	client      *redis.Client
	ttl         time.Duration
	recentLimit int64
}

func NewRedisClient(ctx context.Context, opts Options) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 100
	}

	return &RedisClient{
		client:      client,
		ttl:         opts.TTL,
		recentLimit: opts.RecentLimit,
	}, nil
}

func resultKey(billID int64) string {
	return fmt.Sprintf("result:%d", billID)
}

func recentKey(ownerID string) string {
	return "results:recent:" + ownerID
}

// StoreResult caches a result under its bill id and pushes the key onto the
// owner's recent list.
func (r *RedisClient) StoreResult(ctx context.Context, result models.AnalyticsResult) error {
	key := resultKey(result.Bill.ID)

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result in Redis: %w", err)
	}

	listKey := recentKey(result.Bill.OwnerID)
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, listKey, key)
	pipe.LTrim(ctx, listKey, 0, r.recentLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update recent results list: %w", err)
	}

	return nil
}

func (r *RedisClient) GetResult(ctx context.Context, billID int64) (models.AnalyticsResult, error) {
	var result models.AnalyticsResult

	data, err := r.client.Get(ctx, resultKey(billID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return result, ErrMiss
	}
	if err != nil {
		return result, fmt.Errorf("failed to get result: %w", err)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to decode result: %w", err)
	}
	return result, nil
}

// RecentResults returns up to count cached results for an owner, newest
// first. Expired entries are skipped.
func (r *RedisClient) RecentResults(ctx context.Context, ownerID string, count int64) ([]models.AnalyticsResult, error) {
	keys, err := r.client.LRange(ctx, recentKey(ownerID), 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent result keys: %w", err)
	}

	results := make([]models.AnalyticsResult, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var result models.AnalyticsResult
		if err := json.Unmarshal(data, &result); err != nil {
			continue
		}

		results = append(results, result)
	}

	return results, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
