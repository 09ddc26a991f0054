package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"trip-planner/internal/domain"
	"trip-planner/internal/platform/obs"
)

const valkeyKeyPrefix = "trip-planner:result:"

// ValkeyResultCache shares results between planner instances through Valkey.
type ValkeyResultCache struct {
	client valkey.Client
	ttl    time.Duration
}

// NewValkeyResultCache connects to addr.
func NewValkeyResultCache(addr string, ttl time.Duration) (*ValkeyResultCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &ValkeyResultCache{client: client, ttl: ttl}, nil
}

func (c *ValkeyResultCache) Get(ctx context.Context, key string) (_ *domain.OptimizationResult, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.valkey.Get")(&err)

	cmd := c.client.Do(ctx, c.client.B().Get().Key(valkeyKeyPrefix+key).Build())
	b, err := cmd.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: %w", err)
	}

	r, err := decodeResult(b)
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: %w", err)
	}
	return r, true, nil
}

func (c *ValkeyResultCache) Put(ctx context.Context, key string, result *domain.OptimizationResult) error {
	if key == "" {
		return errors.New("insert result cache: key must not be empty")
	}

	raw, err := encodeResult(result)
	if err != nil {
		return fmt.Errorf("insert result cache: %w", err)
	}

	cmd := c.client.Do(ctx,
		c.client.B().Set().Key(valkeyKeyPrefix+key).Value(string(raw)).Ex(c.ttl).Build(),
	)
	if err := cmd.Error(); err != nil {
		return fmt.Errorf("insert result cache: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *ValkeyResultCache) Close() {
	c.client.Close()
}
