package kvstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const (
	// DriverRedis selects the Redis driver.
	DriverRedis = "redis"
	// DriverMemory selects the in-process driver.
	DriverMemory = "memory"
)

// RedisConfig configures the Redis driver.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection string.
	URL string
	// ConnectRetries bounds the startup ping attempts. Zero pings once.
	ConnectRetries uint64
	// PingTimeout bounds each startup ping. Defaults to 5s.
	PingTimeout time.Duration
}

// FactoryOptions holds driver-specific settings for NewFromDriver.
type FactoryOptions struct {
	Redis  RedisConfig
	Memory []MemoryOption
}

// NewFromDriver builds a Store for the named driver. The Redis driver is
// pinged until reachable or the retries run out.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverRedis:
		return dialRedis(ctx, opts.Redis)
	case DriverMemory, "":
		return NewMemory(opts.Memory...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func dialRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(opt)

	b := retry.WithMaxRetries(cfg.ConnectRetries, retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(200*time.Millisecond)))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			slog.WarnContext(ctx, "redis not reachable yet", "addr", opt.Addr, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedis(client), nil
}
