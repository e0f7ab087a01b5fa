package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"stocktrail/internal/models"
)

type CacheService interface {
	// Stock quantity caching
	GetStockQuantity(ctx context.Context, itemID, locationID uuid.UUID) (*int, error)
	SetStockQuantity(ctx context.Context, itemID, locationID uuid.UUID, quantity int, ttl time.Duration) error
	DeleteStockQuantity(ctx context.Context, itemID, locationID uuid.UUID) error

	// Item caching
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// Ping reports connectivity for health checks.
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func stockKey(itemID, locationID uuid.UUID) string {
	return fmt.Sprintf("stocktrail:stock:%s:%s", itemID.String(), locationID.String())
}

func itemKey(itemID uuid.UUID) string {
	return fmt.Sprintf("stocktrail:item:%s", itemID.String())
}

func (r *redisCacheService) GetStockQuantity(ctx context.Context, itemID, locationID uuid.UUID) (*int, error) {
	val, err := r.client.Get(ctx, stockKey(itemID, locationID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}
	quantity, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &quantity, nil
}

func (r *redisCacheService) SetStockQuantity(ctx context.Context, itemID, locationID uuid.UUID, quantity int, ttl time.Duration) error {
	return r.client.Set(ctx, stockKey(itemID, locationID), strconv.Itoa(quantity), ttl).Err()
}

func (r *redisCacheService) DeleteStockQuantity(ctx context.Context, itemID, locationID uuid.UUID) error {
	return r.client.Del(ctx, stockKey(itemID, locationID)).Err()
}

func (r *redisCacheService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	data, err := r.client.Get(ctx, itemKey(itemID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, itemKey(item.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.client.Del(ctx, itemKey(itemID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
