package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MikeMC777/caja-pos/internal/cart"
)

const keyPrefix = "pos:cart:"

type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, ttl: ttl}
}

func key(token string) string { return keyPrefix + token }

func (p *RedisPersister) Load(ctx context.Context, token string) (*cart.Cart, error) {
	data, err := p.client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := cart.New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *RedisPersister) Save(ctx context.Context, token string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, key(token), data, p.ttl).Err()
}

func (p *RedisPersister) Delete(ctx context.Context, token string) error {
	return p.client.Del(ctx, key(token)).Err()
}
